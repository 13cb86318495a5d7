package spoilage

import "github.com/budprat/stock-sense/backend-go/internal/domain"

// DefaultNarrative is emitted when no factor or improvement rule triggers.
const DefaultNarrative = "Standard monitoring required"

const (
	ActionDonate         = "Immediate action required: Discount heavily or donate"
	ActionMarkDown       = "Mark down pricing immediately"
	ActionDiscount       = "Apply discount pricing and promote heavily"
	ActionMonitorClosely = "Monitor closely and prepare for markdown"
	ActionPromote        = "Consider promotional pricing"
	ActionStorage        = "Ensure proper storage conditions"
	ActionMonitor        = "Monitor regularly and maintain storage conditions"
)

// Sub-score thresholds for factor narration and improvement rules.
const (
	temperatureAlert     = 0.7
	humidityAlert        = 0.7
	storageAlert         = 0.6
	historicalWasteAlert = 0.5
	seasonalityAlert     = 0.8
	urgentExpiryDays     = 3
)

// RecommendAction picks the primary action for a risk level and time to expiry.
// currentStock is part of the contract but does not change the decision table.
func RecommendAction(level domain.RiskLevel, daysUntilExpiry int, currentStock float64) string {
	switch level {
	case domain.RiskCritical:
		if daysUntilExpiry <= 1 {
			return ActionDonate
		}
		return ActionMarkDown
	case domain.RiskHigh:
		if daysUntilExpiry <= 2 {
			return ActionDiscount
		}
		return ActionMonitorClosely
	case domain.RiskMedium:
		if daysUntilExpiry <= 3 {
			return ActionPromote
		}
		return ActionStorage
	default:
		return ActionMonitor
	}
}

// IdentifyFactors names the sub-scores that exceed their alert threshold.
func IdentifyFactors(f domain.RiskFactors) []string {
	var out []string
	if f.Temperature > temperatureAlert {
		out = append(out, "High temperature sensitivity")
	}
	if f.Humidity > humidityAlert {
		out = append(out, "High humidity sensitivity")
	}
	if f.StorageConditions > storageAlert {
		out = append(out, "Suboptimal storage conditions")
	}
	if f.HistoricalWaste > historicalWasteAlert {
		out = append(out, "High historical waste rate")
	}
	if f.Seasonality > seasonalityAlert {
		out = append(out, "Seasonal spoilage pressure")
	}
	if len(out) == 0 {
		return []string{DefaultNarrative}
	}
	return out
}

// SuggestImprovements lists operational changes that would lower the risk.
func SuggestImprovements(risk domain.SpoilageRisk) []string {
	f := risk.Factors
	var out []string
	if f.Temperature > temperatureAlert {
		out = append(out, "Improve temperature control and monitoring")
	}
	if f.Humidity > humidityAlert {
		out = append(out, "Adjust humidity levels in storage")
	}
	if f.StorageConditions > storageAlert {
		out = append(out, "Review storage placement, lighting and airflow")
	}
	if risk.DaysUntilExpiry <= urgentExpiryDays {
		out = append(out, "Apply dynamic pricing to sell before expiry")
	}
	if f.HistoricalWaste > historicalWasteAlert {
		out = append(out, "Review ordering patterns to reduce overstock")
	}
	if len(out) == 0 {
		return []string{DefaultNarrative}
	}
	return out
}
