package spoilage

import (
	"math"
	"time"
)

const (
	defaultShelfLifeDays = 7
	shelfLifeAdjustment  = 0.2
)

// PredictSpoilageDate pulls the nominal expiration earlier by a fraction of the
// shelf life that shrinks as the risk score grows:
// adjustment = floor((1 - score) × shelfLife × 0.2) days.
func PredictSpoilageDate(expiration time.Time, score float64, shelfLifeDays *int) time.Time {
	shelfLife := defaultShelfLifeDays
	if shelfLifeDays != nil && *shelfLifeDays > 0 {
		shelfLife = *shelfLifeDays
	}

	adjustment := int(math.Floor((1 - clamp01(score)) * float64(shelfLife) * shelfLifeAdjustment))
	return expiration.AddDate(0, 0, -adjustment)
}

// DaysUntilExpiry counts whole calendar days (UTC) from asOf to expiration.
// It is negative once the product has expired.
func DaysUntilExpiry(asOf, expiration time.Time) int {
	from := truncateDay(asOf)
	to := truncateDay(expiration)
	return int(math.Round(to.Sub(from).Hours() / 24))
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
