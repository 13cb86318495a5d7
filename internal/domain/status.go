package domain

import "strings"

// RiskLevel is the discrete spoilage risk category.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskLevelRanks = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Rank orders levels from low (0) to critical (3). Unknown levels rank -1.
func (l RiskLevel) Rank() int {
	if rank, ok := riskLevelRanks[l]; ok {
		return rank
	}

	return -1
}

// AtLeast reports whether l is as severe as other.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return l.Rank() >= other.Rank() && l.Rank() >= 0
}

// ParseRiskLevel returns the level for a given label (case-insensitive).
func ParseRiskLevel(label string) (RiskLevel, bool) {
	level := RiskLevel(strings.ToLower(strings.TrimSpace(label)))
	_, ok := riskLevelRanks[level]

	return level, ok
}

// LightExposure of a storage location.
type LightExposure string

const (
	LightLow    LightExposure = "low"
	LightMedium LightExposure = "medium"
	LightHigh   LightExposure = "high"
)

// Airflow quality of a storage location.
type Airflow string

const (
	AirflowPoor      Airflow = "poor"
	AirflowAdequate  Airflow = "adequate"
	AirflowExcellent Airflow = "excellent"
)

// ParseLightExposure returns the exposure for a label (case-insensitive).
func ParseLightExposure(label string) (LightExposure, bool) {
	switch v := LightExposure(strings.ToLower(strings.TrimSpace(label))); v {
	case LightLow, LightMedium, LightHigh:
		return v, true
	}

	return "", false
}

// ParseAirflow returns the airflow quality for a label (case-insensitive).
func ParseAirflow(label string) (Airflow, bool) {
	switch v := Airflow(strings.ToLower(strings.TrimSpace(label))); v {
	case AirflowPoor, AirflowAdequate, AirflowExcellent:
		return v, true
	}

	return "", false
}
