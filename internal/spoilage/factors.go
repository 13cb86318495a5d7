package spoilage

import (
	"math"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
)

const (
	// DefaultNeutralStorageRisk is used when no storage sample is available.
	DefaultNeutralStorageRisk = 0.5

	temperatureTolerance = 10.0 // Celsius outside the ideal band that counts as full risk
	humidityTolerance    = 30.0 // %RH outside the ideal band that counts as full risk
)

var lightRisk = map[domain.LightExposure]float64{
	domain.LightLow:    0,
	domain.LightMedium: 0.5,
	domain.LightHigh:   1,
}

var airflowRisk = map[domain.Airflow]float64{
	domain.AirflowExcellent: 0,
	domain.AirflowAdequate:  0.4,
	domain.AirflowPoor:      1,
}

// FactorCalculator turns an inventory snapshot and its context into risk sub-scores.
type FactorCalculator struct {
	neutralStorageRisk float64
}

// NewFactorCalculator creates a calculator. neutralStorageRisk is clamped to [0,1].
func NewFactorCalculator(neutralStorageRisk float64) *FactorCalculator {
	if math.IsNaN(neutralStorageRisk) {
		neutralStorageRisk = DefaultNeutralStorageRisk
	}
	return &FactorCalculator{neutralStorageRisk: clamp01(neutralStorageRisk)}
}

// Compute returns the five sub-scores for a product. The boolean result is
// false when sample is nil and the storage sub-score is the neutral default.
func (fc *FactorCalculator) Compute(
	snapshot domain.InventorySnapshot,
	wasteRate float64,
	seasonal SeasonalFactors,
	sample *domain.StorageConditionSample,
) (domain.RiskFactors, bool) {
	profile := ProfileFor(snapshot.CategoryID)
	factors := domain.RiskFactors{}

	// 1. Temperature risk = category sensitivity × seasonal multiplier
	factors.Temperature = clamp01(profile.TemperatureSensitivity * seasonal.Temperature)

	// 2. Humidity risk = category sensitivity × seasonal multiplier
	factors.Humidity = clamp01(profile.HumiditySensitivity * seasonal.Humidity)

	// 3. Seasonality is left unclamped; summer amplifies past 1
	factors.Seasonality = seasonal.Temperature * seasonal.Humidity

	// 4. Historical waste
	if math.IsNaN(wasteRate) {
		wasteRate = 0
	}
	factors.HistoricalWaste = wasteRate

	// 5. Storage conditions
	if sample == nil {
		factors.StorageConditions = fc.neutralStorageRisk
		return factors, false
	}
	factors.StorageConditions = StorageConditionRisk(profile, *sample)

	return factors, true
}

// StorageConditionRisk scores a storage sample against the category's ideal bands.
func StorageConditionRisk(profile CategoryProfile, sample domain.StorageConditionSample) float64 {
	tempDeviation := clamp01(profile.IdealTemperature.Distance(sample.Temperature) / temperatureTolerance)
	humidityDeviation := clamp01(profile.IdealHumidity.Distance(sample.Humidity) / humidityTolerance)

	light, ok := lightRisk[sample.LightExposure]
	if !ok {
		light = lightRisk[domain.LightMedium]
	}
	airflow, ok := airflowRisk[sample.Airflow]
	if !ok {
		airflow = airflowRisk[domain.AirflowAdequate]
	}

	return clamp01(0.4*tempDeviation + 0.3*humidityDeviation + 0.15*light + 0.15*airflow)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
