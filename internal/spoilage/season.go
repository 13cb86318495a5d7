package spoilage

import "time"

// Season of the calendar year (northern hemisphere month ranges).
type Season string

const (
	Winter Season = "winter"
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
)

// SeasonalFactors scale the category temperature and humidity sensitivities.
type SeasonalFactors struct {
	Temperature float64 `json:"temperature_multiplier"`
	Humidity    float64 `json:"humidity_multiplier"`
}

var seasonalMultipliers = map[Season]SeasonalFactors{
	Winter: {Temperature: 0.7, Humidity: 0.8},
	Spring: {Temperature: 0.8, Humidity: 0.9},
	Summer: {Temperature: 1.2, Humidity: 1.1},
	Autumn: {Temperature: 0.9, Humidity: 0.8},
}

// SeasonFor maps a date to its season: Dec-Feb winter, Mar-May spring,
// Jun-Aug summer, Sep-Nov autumn.
func SeasonFor(t time.Time) Season {
	switch t.Month() {
	case time.December, time.January, time.February:
		return Winter
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	default:
		return Autumn
	}
}

// SeasonalFactorsFor returns the fixed multiplier pair for the season of t.
func SeasonalFactorsFor(t time.Time) SeasonalFactors {
	return seasonalMultipliers[SeasonFor(t)]
}
