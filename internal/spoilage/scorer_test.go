package spoilage

import (
	"testing"

	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeightsAreValid(t *testing.T) {
	require.NoError(t, DefaultWeights.Validate())
}

func TestWeightsValidateRejectsBadSums(t *testing.T) {
	w := DefaultWeights
	w.Temperature = 0.5
	assert.Error(t, w.Validate())

	w = DefaultWeights
	w.Humidity = -0.2
	w.Temperature = 0.65
	assert.Error(t, w.Validate())
}

func TestScoreStaysWithinUnitInterval(t *testing.T) {
	values := []float64{0, 0.25, 0.5, 1, 1.32, 5}
	for _, temp := range values {
		for _, season := range values {
			for _, waste := range values {
				f := domain.RiskFactors{
					Temperature:       temp,
					Humidity:          temp,
					Seasonality:       season,
					HistoricalWaste:   waste,
					StorageConditions: waste,
				}
				s := Score(f)
				assert.GreaterOrEqual(t, s, 0.0)
				assert.LessOrEqual(t, s, 1.0)
			}
		}
	}
}

func TestScoreIsMonotonicInEachFactor(t *testing.T) {
	base := domain.RiskFactors{
		Temperature:       0.3,
		Humidity:          0.3,
		Seasonality:       0.56,
		HistoricalWaste:   0.1,
		StorageConditions: 0.5,
	}
	bumps := map[string]func(f *domain.RiskFactors, v float64){
		"temperature": func(f *domain.RiskFactors, v float64) { f.Temperature = v },
		"humidity":    func(f *domain.RiskFactors, v float64) { f.Humidity = v },
		"seasonality": func(f *domain.RiskFactors, v float64) { f.Seasonality = v },
		"waste":       func(f *domain.RiskFactors, v float64) { f.HistoricalWaste = v },
		"storage":     func(f *domain.RiskFactors, v float64) { f.StorageConditions = v },
	}

	for name, bump := range bumps {
		t.Run(name, func(t *testing.T) {
			prev := -1.0
			for v := 0.0; v <= 1.5; v += 0.05 {
				f := base
				bump(&f, v)
				s := Score(f)
				assert.GreaterOrEqual(t, s, prev)
				prev = s
			}
		})
	}
}

func TestCategorizeBoundaries(t *testing.T) {
	tests := []struct {
		score    float64
		expected domain.RiskLevel
	}{
		{1.0, domain.RiskCritical},
		{0.95, domain.RiskCritical},
		{0.9, domain.RiskCritical},
		{0.8999, domain.RiskHigh},
		{0.899, domain.RiskHigh},
		{0.8, domain.RiskHigh},
		{0.7999, domain.RiskMedium},
		{0.65, domain.RiskMedium},
		{0.6, domain.RiskMedium},
		{0.5999, domain.RiskLow},
		{0.3, domain.RiskLow},
		{0, domain.RiskLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Categorize(tt.score), "score %v", tt.score)
	}
}
