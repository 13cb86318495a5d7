package spoilage

import (
	"fmt"
	"math"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
)

// Weights applied to each sub-score. They must sum to 1.
type Weights struct {
	Temperature       float64
	Humidity          float64
	Seasonality       float64
	HistoricalWaste   float64
	StorageConditions float64
}

// DefaultWeights is the production weighting.
var DefaultWeights = Weights{
	Temperature:       0.25,
	Humidity:          0.20,
	Seasonality:       0.15,
	HistoricalWaste:   0.25,
	StorageConditions: 0.15,
}

const weightSumTolerance = 1e-9

// Validate checks that every weight is non-negative and that they sum to 1.
func (w Weights) Validate() error {
	parts := []float64{w.Temperature, w.Humidity, w.Seasonality, w.HistoricalWaste, w.StorageConditions}
	sum := 0.0
	for _, p := range parts {
		if p < 0 || math.IsNaN(p) {
			return fmt.Errorf("weight %v must be a non-negative number", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights sum to %v, want 1", sum)
	}
	return nil
}

// Score is the weighted sum of the sub-scores, clamped to [0,1].
func (w Weights) Score(f domain.RiskFactors) float64 {
	return clamp01(w.Temperature*f.Temperature +
		w.Humidity*f.Humidity +
		w.Seasonality*f.Seasonality +
		w.HistoricalWaste*f.HistoricalWaste +
		w.StorageConditions*f.StorageConditions)
}

// Score applies DefaultWeights.
func Score(f domain.RiskFactors) float64 {
	return DefaultWeights.Score(f)
}

type threshold struct {
	min   float64
	level domain.RiskLevel
}

// riskThresholds is evaluated highest-first; low is the fallback category.
var riskThresholds = []threshold{
	{min: 0.9, level: domain.RiskCritical},
	{min: 0.8, level: domain.RiskHigh},
	{min: 0.6, level: domain.RiskMedium},
}

// Categorize maps a risk score to its level.
func Categorize(score float64) domain.RiskLevel {
	for _, t := range riskThresholds {
		if score >= t.min {
			return t.level
		}
	}
	return domain.RiskLow
}
