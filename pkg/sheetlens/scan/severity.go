package scan

import (
	"math"
	"strings"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

// SeverityThresholds holds the banding cut points of the severity decision
// table. They are injected at construction so audit runs can pin or vary
// them; DefaultSeverityThresholds matches the published review contract.
type SeverityThresholds struct {
	PercentHigh   float64
	PercentMedium float64
	NumberHigh    float64
	NumberMedium  float64
	NumberLow     float64
	StringMedium  int
	StringLow     int
}

// DefaultSeverityThresholds returns the contract thresholds.
func DefaultSeverityThresholds() SeverityThresholds {
	return SeverityThresholds{
		PercentHigh:   100,
		PercentMedium: 10,
		NumberHigh:    1000,
		NumberMedium:  100,
		NumberLow:     10,
		StringMedium:  6,
		StringLow:     3,
	}
}

// SeverityModel maps a classified literal to a severity tier plus a
// rationale and a suggested fix. Assess is a pure function of the literal's
// kind and context flags; identical literals always assess identically.
type SeverityModel struct {
	t SeverityThresholds
}

// NewSeverityModel builds a model over the given thresholds.
func NewSeverityModel(t SeverityThresholds) *SeverityModel {
	return &SeverityModel{t: t}
}

// Assess returns the severity tier, rationale, and suggested fix for a
// literal. ok is false for benign literals, which produce no finding.
// The decision table is evaluated in a fixed precedence order; changing it
// would invalidate prior audit trails.
func (m *SeverityModel) Assess(l models.Literal) (sev models.Severity, rationale, fix string, ok bool) {
	if l.Benign() {
		return "", "", "", false
	}

	switch l.Kind {
	case models.LiteralArray:
		if l.MixedTypes {
			return models.SeverityHigh,
				"array constant mixes value types, which hides unit or meaning mismatches",
				"split the array into a labeled input range", true
		}
		return models.SeverityMedium,
			"array constant embeds a value table inside the formula",
			"move the constants to a named input range", true

	case models.LiteralHex:
		return models.SeverityHigh,
			"hexadecimal literal is opaque to reviewers",
			"replace with a named constant documenting the value", true

	case models.LiteralPercentage:
		v, _ := NumericValue(l)
		switch {
		case math.Abs(v) >= m.t.PercentHigh:
			return models.SeverityHigh,
				"large percentage looks like a business rate embedded in the formula",
				"move the rate to a labeled assumption cell", true
		case math.Abs(v) >= m.t.PercentMedium:
			return models.SeverityMedium,
				"percentage is likely a tunable rate",
				"move the rate to a labeled assumption cell", true
		}
		return models.SeverityLow,
			"small percentage adjustment",
			"consider a named constant if the value recurs", true

	case models.LiteralNumeric:
		v, _ := NumericValue(l)
		abs := math.Abs(v)
		fractional := v != math.Trunc(v)
		switch {
		case abs >= m.t.NumberHigh || fractional:
			return models.SeverityHigh,
				"precise or large number is likely an undocumented business parameter",
				"move the value to a labeled input cell and reference it", true
		case abs >= m.t.NumberMedium:
			return models.SeverityMedium,
				"mid-size constant embedded in the formula",
				"move the value to a labeled input cell", true
		case abs >= m.t.NumberLow:
			return models.SeverityLow,
				"common multiplier or offset",
				"name the constant if it carries business meaning", true
		}
		return models.SeverityInfo,
			"small constant, usually structural",
			"no action needed unless the value recurs", true

	case models.LiteralString:
		n := len(l.Raw)
		switch {
		case n >= m.t.StringMedium:
			return models.SeverityMedium,
				"embedded text is likely a lookup key or label that belongs in a cell",
				"move the text to a reference cell", true
		case n >= m.t.StringLow:
			return models.SeverityLow,
				"short text literal",
				"consider a reference cell if the text drives logic", true
		}
		return models.SeverityInfo,
			"very short text literal",
			"no action needed", true

	case models.LiteralDate, models.LiteralTime:
		if l.LikelyInput {
			return models.SeverityMedium,
				"date/time typed directly into a calculation is likely a model input",
				"move the date to a labeled input cell", true
		}
		return models.SeverityLow,
			"date/time literal",
			"reference a dated input cell instead", true

	case models.LiteralNamed:
		return models.SeverityLow,
			"unrecognized named literal",
			"verify the defined name documents its value", true

	case models.LiteralExternal:
		if linkedWorkbookRef(l.Raw) {
			return models.SeverityInfo,
				"reference into a linked workbook",
				"confirm the link target is tracked", true
		}
		return models.SeverityLow,
			"reference into another workbook",
			"confirm the external workbook is under review", true
	}

	return models.SeverityInfo, "unclassified literal", "review manually", true
}

// linkedWorkbookRef reports whether an external reference points at a
// numbered workbook link ("[1]Sheet1!A1") rather than a named file.
func linkedWorkbookRef(ref string) bool {
	open := strings.IndexByte(ref, '[')
	end := strings.IndexByte(ref, ']')
	if open < 0 || end <= open+1 {
		return false
	}
	for i := open + 1; i < end; i++ {
		if ref[i] < '0' || ref[i] > '9' {
			return false
		}
	}
	return true
}
