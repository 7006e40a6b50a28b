package scan

import (
	"regexp"
	"strings"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

// Score clamp and band cut points.
const (
	maxScore       = 99
	bandHighScore  = 60
	bandMedScore   = 30
	arrayBonus     = 6
	heavyUseBonus  = 4
	commonUseBonus = 2
	heavyUseCount  = 100
	commonUseCount = 20
)

// DefaultFunctionWeights maps known function names to a complexity weight
// in 1..4. Unknown functions score defaultFunctionWeight.
func DefaultFunctionWeights() map[string]int {
	return map[string]int{
		// arithmetic and simple aggregation
		"SUM": 1, "AVERAGE": 1, "MIN": 1, "MAX": 1, "COUNT": 1,
		"COUNTA": 1, "ABS": 1, "ROUND": 1, "ROUNDUP": 1, "ROUNDDOWN": 1,
		"INT": 1, "TODAY": 1, "NOW": 1, "LEN": 1, "TRIM": 1,
		"UPPER": 1, "LOWER": 1, "CONCAT": 1, "CONCATENATE": 1,

		// branching and conditional aggregation
		"IF": 2, "IFERROR": 2, "IFNA": 2, "AND": 2, "OR": 2, "NOT": 2,
		"COUNTIF": 2, "SUMIF": 2, "AVERAGEIF": 2, "TEXT": 2, "VALUE": 2,
		"LEFT": 2, "RIGHT": 2, "MID": 2, "SUBSTITUTE": 2, "FIND": 2,
		"SEARCH": 2, "DATE": 2, "EDATE": 2, "EOMONTH": 2, "YEAR": 2,
		"MONTH": 2, "DAY": 2,

		// lookups and multi-criteria aggregation
		"VLOOKUP": 3, "HLOOKUP": 3, "LOOKUP": 3, "INDEX": 3, "MATCH": 3,
		"XLOOKUP": 3, "XMATCH": 3, "CHOOSE": 3, "SUMIFS": 3, "COUNTIFS": 3,
		"AVERAGEIFS": 3, "IFS": 3, "SWITCH": 3, "SUMPRODUCT": 3,
		"FILTER": 3, "SORT": 3, "UNIQUE": 3, "SEQUENCE": 3, "TEXTJOIN": 3,

		// volatile, indirect, or structurally opaque
		"INDIRECT": 4, "OFFSET": 4, "LET": 4, "LAMBDA": 4, "MAP": 4,
		"REDUCE": 4, "SCAN": 4, "BYROW": 4, "BYCOL": 4, "MAKEARRAY": 4,
		"GETPIVOTDATA": 4, "CELL": 4, "RANDARRAY": 4, "SORTBY": 4,
	}
}

const defaultFunctionWeight = 2

var functionCallRe = regexp.MustCompile(`([A-Z][A-Z0-9.]*)\(`)

// Scorer computes the weighted complexity score (F-Score) of a formula.
// The weight table is injected at construction; tests substitute alternate
// tables to pin behavior.
type Scorer struct {
	weights map[string]int
}

// NewScorer builds a scorer over the given weight table. A nil table uses
// the defaults.
func NewScorer(weights map[string]int) *Scorer {
	if weights == nil {
		weights = DefaultFunctionWeights()
	}
	return &Scorer{weights: weights}
}

// Score computes the F-Score of a formula: matched function weights plus a
// nesting-depth contribution, a flat array-formula bonus, and a
// usage-frequency bonus. The result is clamped to [0, 99]. Holding the
// formula fixed, the score is non-decreasing in useCount.
func (s *Scorer) Score(formula string, isArray bool, useCount int) int {
	upper := strings.ToUpper(formula)

	score := 0
	for _, m := range functionCallRe.FindAllStringSubmatch(upper, -1) {
		if w, ok := s.weights[m[1]]; ok {
			score += w
		} else {
			score += defaultFunctionWeight
		}
	}

	score += 2 * parenDepth(upper)

	if isArray {
		score += arrayBonus
	}
	switch {
	case useCount > heavyUseCount:
		score += heavyUseBonus
	case useCount > commonUseCount:
		score += commonUseBonus
	}

	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// BandFor buckets a score into the three-level complexity band.
func BandFor(score int) models.Band {
	switch {
	case score >= bandHighScore:
		return models.BandHigh
	case score >= bandMedScore:
		return models.BandMedium
	default:
		return models.BandLow
	}
}

// parenDepth estimates nesting as the maximum parenthesis depth, ignoring
// parentheses inside string literals.
func parenDepth(s string) int {
	depth, maxDepth := 0, 0
	inString := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inString = !inString
		case '(':
			if !inString {
				depth++
				if depth > maxDepth {
					maxDepth = depth
				}
			}
		case ')':
			if !inString && depth > 0 {
				depth--
			}
		}
	}
	return maxDepth
}
