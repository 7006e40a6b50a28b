package models

// Severity classifies a hard-coded value finding for review priority.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// Band is the three-level complexity banding of a formula's score.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// AnalysisMode records which path a worksheet scan took.
type AnalysisMode string

const (
	// ModeStreaming is the full block-streamed cell-by-cell analysis.
	ModeStreaming AnalysisMode = "streaming"
	// ModeSkim is the degraded aggregate-counts-only path for massive sheets.
	ModeSkim AnalysisMode = "skim"
	// ModeSkipped means the sheet had no used region or counting failed.
	ModeSkipped AnalysisMode = "skipped"
)

// LiteralKind is the classified kind of a value written directly in a formula.
type LiteralKind string

const (
	LiteralNumeric    LiteralKind = "numeric"
	LiteralPercentage LiteralKind = "percentage"
	LiteralString     LiteralKind = "string"
	LiteralBoolean    LiteralKind = "boolean"
	LiteralDate       LiteralKind = "date"
	LiteralTime       LiteralKind = "time"
	LiteralArray      LiteralKind = "array"
	LiteralNamed      LiteralKind = "named"
	LiteralExternal   LiteralKind = "external"
	LiteralHex        LiteralKind = "hex"
)

// Literal is one classified operand extracted from a formula, with enough
// source metadata to cut a snippet out of the original text.
type Literal struct {
	Kind    LiteralKind `json:"kind"`
	Raw     string      `json:"raw"`
	Display string      `json:"display"`
	Offset  int         `json:"offset"`
	Length  int         `json:"length"`
	// Function is the enclosing function name at the point of the literal,
	// "" at top level. ArgIndex is the zero-based argument position.
	Function string `json:"function,omitempty"`
	ArgIndex int    `json:"arg_index,omitempty"`

	LikelyInput        bool `json:"likely_input,omitempty"`
	Flag               bool `json:"flag,omitempty"`
	RecognizedConstant bool `json:"recognized_constant,omitempty"`
	MixedTypes         bool `json:"mixed_types,omitempty"`
}

// Benign reports whether the literal should be dropped before findings are
// built: recognized constants and boolean/single-character flags carry no
// review value.
func (l Literal) Benign() bool {
	return l.RecognizedConstant || l.Flag
}

// Finding is a Literal promoted with severity, rationale, and sheet-wide
// repetition statistics. Repetition and LikelyParameter are zero until the
// sheet's finalization pass runs.
type Finding struct {
	Cell      string   `json:"cell"`
	Literal   Literal  `json:"literal"`
	Severity  Severity `json:"severity"`
	Rationale string   `json:"rationale"`
	Fix       string   `json:"fix"`
	// Repetition is how many retained findings on the sheet share this
	// literal's display value, itself included.
	Repetition int `json:"repetition"`
	// LikelyParameter marks High/Medium findings that repeat, the classic
	// signature of an undocumented business parameter.
	LikelyParameter bool `json:"likely_parameter,omitempty"`
}

// FormulaInfo aggregates every instance of one unique formula on a sheet.
type FormulaInfo struct {
	// Key is the grouping key: reference-normalized text when similar
	// formulas are grouped, otherwise the exact formula text.
	Key string `json:"-"`
	// Text is an example instance of the formula as written.
	Text  string `json:"text"`
	Count int    `json:"count"`
	// Cells holds sampled instance addresses, capped by configuration.
	Cells []string `json:"cells"`
	Score int      `json:"score"`
	Band  Band     `json:"band"`
	Array bool     `json:"array,omitempty"`
}

// FindingSet partitions a sheet's findings by severity.
type FindingSet struct {
	High   []*Finding `json:"high,omitempty"`
	Medium []*Finding `json:"medium,omitempty"`
	Low    []*Finding `json:"low,omitempty"`
	Info   []*Finding `json:"info,omitempty"`
}

// Add appends f to the tier matching its severity.
func (s *FindingSet) Add(f *Finding) {
	switch f.Severity {
	case SeverityHigh:
		s.High = append(s.High, f)
	case SeverityMedium:
		s.Medium = append(s.Medium, f)
	case SeverityLow:
		s.Low = append(s.Low, f)
	default:
		s.Info = append(s.Info, f)
	}
}

// All returns the findings of every tier, highest severity first.
func (s *FindingSet) All() []*Finding {
	out := make([]*Finding, 0, len(s.High)+len(s.Medium)+len(s.Low)+len(s.Info))
	out = append(out, s.High...)
	out = append(out, s.Medium...)
	out = append(out, s.Low...)
	out = append(out, s.Info...)
	return out
}

// Len returns the total finding count across tiers.
func (s *FindingSet) Len() int {
	return len(s.High) + len(s.Medium) + len(s.Low) + len(s.Info)
}

// SheetResult is the per-worksheet analysis outcome.
type SheetResult struct {
	Name string       `json:"name"`
	Mode AnalysisMode `json:"mode"`
	// FallbackReason explains a skim or skip, "" for a full streaming scan.
	FallbackReason string `json:"fallback_reason,omitempty"`

	CellCount    int `json:"cell_count"`
	FormulaCount int `json:"formula_count"`
	ValueCount   int `json:"value_count"`

	Formulas []*FormulaInfo `json:"formulas,omitempty"`
	Findings FindingSet     `json:"findings"`
}

// UniqueFormulaCount returns the number of distinct formulas on the sheet.
func (r *SheetResult) UniqueFormulaCount() int {
	return len(r.Formulas)
}

// WorkbookResult merges every sheet's result with workbook totals.
type WorkbookResult struct {
	BookName string         `json:"book_name"`
	Sheets   []*SheetResult `json:"sheets"`

	CellCount          int `json:"cell_count"`
	FormulaCount       int `json:"formula_count"`
	ValueCount         int `json:"value_count"`
	UniqueFormulaCount int `json:"unique_formula_count"`
	// ReviewMinutes estimates review effort: unique formulas times the
	// configured minutes-per-formula multiplier.
	ReviewMinutes float64 `json:"review_minutes"`
}
