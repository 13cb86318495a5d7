package spoilage

import (
	"math"
	"testing"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSeasonFor(t *testing.T) {
	expected := map[time.Month]Season{
		time.December:  Winter,
		time.January:   Winter,
		time.February:  Winter,
		time.March:     Spring,
		time.April:     Spring,
		time.May:       Spring,
		time.June:      Summer,
		time.July:      Summer,
		time.August:    Summer,
		time.September: Autumn,
		time.October:   Autumn,
		time.November:  Autumn,
	}
	for month, season := range expected {
		day := time.Date(2024, month, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, season, SeasonFor(day), month.String())
	}
}

func TestSeasonalFactorsFor(t *testing.T) {
	assert.Equal(t, SeasonalFactors{Temperature: 0.7, Humidity: 0.8}, SeasonalFactorsFor(winterDay))
	assert.Equal(t, SeasonalFactors{Temperature: 1.2, Humidity: 1.1}, SeasonalFactorsFor(summerDay))
}

func TestProfileForUnknownCategoryFallsBack(t *testing.T) {
	p := ProfileFor(42)
	assert.Equal(t, "unknown", p.Name)
	assert.Equal(t, 0.5, p.TemperatureSensitivity)
	assert.Equal(t, 0.5, p.HumiditySensitivity)

	assert.Equal(t, 0.9, ProfileFor(CategoryProduce).TemperatureSensitivity)
	assert.Equal(t, 0.9, ProfileFor(CategoryPantry).HumiditySensitivity)
}

func TestComputeFactorsProduceInSummer(t *testing.T) {
	fc := NewFactorCalculator(DefaultNeutralStorageRisk)
	s := snapshot(1, CategoryProduce, summerDay.AddDate(0, 0, 5))

	f, known := fc.Compute(s, 0.8, SeasonalFactorsFor(summerDay), nil)

	assert.False(t, known)
	assert.Equal(t, 1.0, f.Temperature)
	assert.InDelta(t, 0.88, f.Humidity, 1e-9)
	assert.InDelta(t, 1.32, f.Seasonality, 1e-9)
	assert.Equal(t, 0.8, f.HistoricalWaste)
	assert.Equal(t, 0.5, f.StorageConditions)
}

func TestComputeFactorsCoercesNaNWaste(t *testing.T) {
	fc := NewFactorCalculator(DefaultNeutralStorageRisk)
	f, _ := fc.Compute(snapshot(1, CategoryDairy, winterDay), math.NaN(), SeasonalFactorsFor(winterDay), nil)
	assert.Equal(t, 0.0, f.HistoricalWaste)
}

func TestComputeFactorsUsesStorageSample(t *testing.T) {
	fc := NewFactorCalculator(DefaultNeutralStorageRisk)
	sample := &domain.StorageConditionSample{
		Temperature:   2,
		Humidity:      90,
		LightExposure: domain.LightLow,
		Airflow:       domain.AirflowExcellent,
	}

	f, known := fc.Compute(snapshot(1, CategoryProduce, winterDay), 0.1, SeasonalFactorsFor(winterDay), sample)

	assert.True(t, known)
	assert.Equal(t, 0.0, f.StorageConditions)
}

func TestStorageConditionRisk(t *testing.T) {
	produce := ProfileFor(CategoryProduce)
	tests := []struct {
		name     string
		sample   domain.StorageConditionSample
		expected float64
	}{
		{
			name:     "ideal conditions",
			sample:   domain.StorageConditionSample{Temperature: 3, Humidity: 88, LightExposure: domain.LightLow, Airflow: domain.AirflowExcellent},
			expected: 0,
		},
		{
			name:     "warm, dry, bright, stale air",
			sample:   domain.StorageConditionSample{Temperature: 10, Humidity: 60, LightExposure: domain.LightHigh, Airflow: domain.AirflowPoor},
			expected: 0.4*0.6 + 0.3*(25.0/30.0) + 0.15 + 0.15,
		},
		{
			name:     "far outside every band saturates",
			sample:   domain.StorageConditionSample{Temperature: 40, Humidity: 5, LightExposure: domain.LightHigh, Airflow: domain.AirflowPoor},
			expected: 1,
		},
		{
			name:     "unknown enums use middle values",
			sample:   domain.StorageConditionSample{Temperature: 3, Humidity: 88},
			expected: 0.15*0.5 + 0.15*0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, StorageConditionRisk(produce, tt.sample), 1e-9)
		})
	}
}

func TestBandDistance(t *testing.T) {
	b := Band{Min: 1, Max: 4}
	assert.Equal(t, 0.0, b.Distance(2))
	assert.Equal(t, 3.0, b.Distance(-2))
	assert.Equal(t, 6.0, b.Distance(10))
}
