package scan

import (
	"testing"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

func TestSeverityDecisionTable(t *testing.T) {
	m := NewSeverityModel(DefaultSeverityThresholds())

	tests := []struct {
		name     string
		lit      models.Literal
		expected models.Severity
	}{
		{"array mixed", models.Literal{Kind: models.LiteralArray, Raw: "1", MixedTypes: true}, models.SeverityHigh},
		{"array uniform", models.Literal{Kind: models.LiteralArray, Raw: "1"}, models.SeverityMedium},
		{"hex", models.Literal{Kind: models.LiteralHex, Raw: "0xFF"}, models.SeverityHigh},
		{"percent 150", models.Literal{Kind: models.LiteralPercentage, Raw: "150"}, models.SeverityHigh},
		{"percent 15", models.Literal{Kind: models.LiteralPercentage, Raw: "15"}, models.SeverityMedium},
		{"percent 5", models.Literal{Kind: models.LiteralPercentage, Raw: "5"}, models.SeverityLow},
		{"number 2500", models.Literal{Kind: models.LiteralNumeric, Raw: "2500"}, models.SeverityHigh},
		{"number fractional", models.Literal{Kind: models.LiteralNumeric, Raw: "0.85"}, models.SeverityHigh},
		{"number 250", models.Literal{Kind: models.LiteralNumeric, Raw: "250"}, models.SeverityMedium},
		{"number 12", models.Literal{Kind: models.LiteralNumeric, Raw: "12"}, models.SeverityLow},
		{"number 7", models.Literal{Kind: models.LiteralNumeric, Raw: "7"}, models.SeverityInfo},
		{"string long", models.Literal{Kind: models.LiteralString, Raw: "Region"}, models.SeverityMedium},
		{"string short", models.Literal{Kind: models.LiteralString, Raw: "abc"}, models.SeverityLow},
		{"string tiny", models.Literal{Kind: models.LiteralString, Raw: "ab"}, models.SeverityInfo},
		{"date input", models.Literal{Kind: models.LiteralDate, Raw: "2024-01-15", LikelyInput: true}, models.SeverityMedium},
		{"date plain", models.Literal{Kind: models.LiteralDate, Raw: "2024-01-15"}, models.SeverityLow},
		{"time plain", models.Literal{Kind: models.LiteralTime, Raw: "12:30"}, models.SeverityLow},
		{"named", models.Literal{Kind: models.LiteralNamed, Raw: "TaxRate"}, models.SeverityLow},
		{"external named book", models.Literal{Kind: models.LiteralExternal, Raw: "[Book2.xlsx]S!A1"}, models.SeverityLow},
		{"external linked", models.Literal{Kind: models.LiteralExternal, Raw: "[1]S!A1"}, models.SeverityInfo},
	}
	for _, tt := range tests {
		sev, rationale, fix, ok := m.Assess(tt.lit)
		if !ok {
			t.Errorf("%s: expected a finding, literal dropped", tt.name)
			continue
		}
		if sev != tt.expected {
			t.Errorf("%s: severity %s, expected %s", tt.name, sev, tt.expected)
		}
		if rationale == "" || fix == "" {
			t.Errorf("%s: missing rationale or fix", tt.name)
		}
	}
}

func TestSeverityBenignDropped(t *testing.T) {
	m := NewSeverityModel(DefaultSeverityThresholds())
	benign := []models.Literal{
		{Kind: models.LiteralBoolean, Raw: "TRUE", Flag: true},
		{Kind: models.LiteralString, Raw: "Y", Flag: true},
		{Kind: models.LiteralString, Raw: "PI", RecognizedConstant: true},
		{Kind: models.LiteralNamed, Raw: "FALSE", RecognizedConstant: true},
	}
	for _, l := range benign {
		if _, _, _, ok := m.Assess(l); ok {
			t.Errorf("benign literal %q produced a finding", l.Raw)
		}
	}
}

func TestSeverityIsPure(t *testing.T) {
	m := NewSeverityModel(DefaultSeverityThresholds())
	l := models.Literal{Kind: models.LiteralNumeric, Raw: "365.25"}
	s1, r1, f1, _ := m.Assess(l)
	s2, r2, f2, _ := m.Assess(l)
	if s1 != s2 || r1 != r2 || f1 != f2 {
		t.Error("Assess is not a pure function of the literal")
	}
}

func TestSeverityThresholdBoundaries(t *testing.T) {
	m := NewSeverityModel(DefaultSeverityThresholds())
	boundary := []struct {
		raw      string
		expected models.Severity
	}{
		{"1000", models.SeverityHigh},
		{"999", models.SeverityMedium},
		{"100", models.SeverityMedium},
		{"99", models.SeverityLow},
		{"10", models.SeverityLow},
		{"9", models.SeverityInfo},
		{"-2000", models.SeverityHigh}, // magnitude banding uses absolute value
	}
	for _, tt := range boundary {
		sev, _, _, _ := m.Assess(models.Literal{Kind: models.LiteralNumeric, Raw: tt.raw})
		if sev != tt.expected {
			t.Errorf("numeric %s: severity %s, expected %s", tt.raw, sev, tt.expected)
		}
	}
}
