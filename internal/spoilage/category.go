package spoilage

import "fmt"

// Category identifiers as stored on inventory rows.
const (
	CategoryUnknown   = 0
	CategoryProduce   = 1
	CategoryDairy     = 2
	CategoryMeat      = 3
	CategoryPantry    = 4
	CategoryBeverages = 5
	CategoryFrozen    = 6
)

// Band is an inclusive [Min, Max] range.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Distance returns how far v lies outside the band; zero inside it.
func (b Band) Distance(v float64) float64 {
	switch {
	case v < b.Min:
		return b.Min - v
	case v > b.Max:
		return v - b.Max
	default:
		return 0
	}
}

// CategoryProfile is the sensitivity record for one product category.
type CategoryProfile struct {
	Name                   string  `json:"name"`
	TemperatureSensitivity float64 `json:"temperature_sensitivity"`
	HumiditySensitivity    float64 `json:"humidity_sensitivity"`
	IdealTemperature       Band    `json:"ideal_temperature"` // Celsius
	IdealHumidity          Band    `json:"ideal_humidity"`    // %RH
}

var unknownCategory = CategoryProfile{
	Name:                   "unknown",
	TemperatureSensitivity: 0.5,
	HumiditySensitivity:    0.5,
	IdealTemperature:       Band{Min: 2, Max: 8},
	IdealHumidity:          Band{Min: 50, Max: 80},
}

var categoryProfiles = map[int]CategoryProfile{
	CategoryProduce: {
		Name:                   "produce",
		TemperatureSensitivity: 0.9,
		HumiditySensitivity:    0.8,
		IdealTemperature:       Band{Min: 1, Max: 4},
		IdealHumidity:          Band{Min: 85, Max: 95},
	},
	CategoryDairy: {
		Name:                   "dairy",
		TemperatureSensitivity: 0.7,
		HumiditySensitivity:    0.6,
		IdealTemperature:       Band{Min: 1, Max: 4},
		IdealHumidity:          Band{Min: 75, Max: 85},
	},
	CategoryMeat: {
		Name:                   "meat",
		TemperatureSensitivity: 0.8,
		HumiditySensitivity:    0.7,
		IdealTemperature:       Band{Min: -1, Max: 2},
		IdealHumidity:          Band{Min: 85, Max: 90},
	},
	CategoryPantry: {
		Name:                   "pantry",
		TemperatureSensitivity: 0.3,
		HumiditySensitivity:    0.9,
		IdealTemperature:       Band{Min: 10, Max: 21},
		IdealHumidity:          Band{Min: 50, Max: 70},
	},
	CategoryBeverages: {
		Name:                   "beverages",
		TemperatureSensitivity: 0.4,
		HumiditySensitivity:    0.3,
		IdealTemperature:       Band{Min: 2, Max: 21},
		IdealHumidity:          Band{Min: 40, Max: 80},
	},
	CategoryFrozen: {
		Name:                   "frozen",
		TemperatureSensitivity: 0.6,
		HumiditySensitivity:    0.4,
		IdealTemperature:       Band{Min: -23, Max: -18},
		IdealHumidity:          Band{Min: 70, Max: 90},
	},
}

func init() {
	if err := validateProfile(unknownCategory); err != nil {
		panic(fmt.Sprintf("spoilage: invalid unknown-category profile: %v", err))
	}
	for id, p := range categoryProfiles {
		if err := validateProfile(p); err != nil {
			panic(fmt.Sprintf("spoilage: invalid profile for category %d: %v", id, err))
		}
	}
}

func validateProfile(p CategoryProfile) error {
	if p.TemperatureSensitivity < 0 || p.TemperatureSensitivity > 1 {
		return fmt.Errorf("temperature sensitivity %v out of [0,1]", p.TemperatureSensitivity)
	}
	if p.HumiditySensitivity < 0 || p.HumiditySensitivity > 1 {
		return fmt.Errorf("humidity sensitivity %v out of [0,1]", p.HumiditySensitivity)
	}
	if p.IdealTemperature.Min > p.IdealTemperature.Max {
		return fmt.Errorf("temperature band %v is inverted", p.IdealTemperature)
	}
	if p.IdealHumidity.Min > p.IdealHumidity.Max {
		return fmt.Errorf("humidity band %v is inverted", p.IdealHumidity)
	}
	return nil
}

// ProfileFor returns the sensitivity record for a category, falling back to
// the unknown-category record.
func ProfileFor(categoryID int) CategoryProfile {
	if p, ok := categoryProfiles[categoryID]; ok {
		return p
	}
	return unknownCategory
}
