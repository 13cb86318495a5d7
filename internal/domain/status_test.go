package domain

import "testing"

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		label    string
		expected RiskLevel
		ok       bool
	}{
		{"critical", RiskCritical, true},
		{" HIGH ", RiskHigh, true},
		{"Medium", RiskMedium, true},
		{"low", RiskLow, true},
		{"severe", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			level, ok := ParseRiskLevel(tt.label)
			if ok != tt.ok {
				t.Fatalf("ParseRiskLevel(%q) ok = %v, expected %v", tt.label, ok, tt.ok)
			}
			if ok && level != tt.expected {
				t.Errorf("ParseRiskLevel(%q) = %v, expected %v", tt.label, level, tt.expected)
			}
		})
	}
}

func TestRiskLevelAtLeast(t *testing.T) {
	if !RiskCritical.AtLeast(RiskHigh) {
		t.Error("critical should be at least high")
	}
	if RiskMedium.AtLeast(RiskHigh) {
		t.Error("medium should not be at least high")
	}
	if RiskLevel("unknown").AtLeast(RiskLow) {
		t.Error("unknown level should not rank")
	}
}

func TestItemIssueDegrades(t *testing.T) {
	if !(ItemIssue{Kind: IssueInsufficientData}).Degrades() {
		t.Error("insufficient data should count as degraded")
	}
	if (ItemIssue{Kind: IssueWasteUnavailable}).Degrades() {
		t.Error("waste failures should count as skipped")
	}
	if !(ItemIssue{Kind: IssueStorageUnavailable}).Degrades() {
		t.Error("storage failures should count as degraded")
	}
}

func TestParseStorageEnums(t *testing.T) {
	if v, ok := ParseLightExposure("HIGH"); !ok || v != LightHigh {
		t.Errorf("ParseLightExposure(HIGH) = %v, %v", v, ok)
	}
	if _, ok := ParseLightExposure("dim"); ok {
		t.Error("dim should not parse")
	}
	if v, ok := ParseAirflow("adequate"); !ok || v != AirflowAdequate {
		t.Errorf("ParseAirflow(adequate) = %v, %v", v, ok)
	}
	if _, ok := ParseAirflow("stale"); ok {
		t.Error("stale should not parse")
	}
}
