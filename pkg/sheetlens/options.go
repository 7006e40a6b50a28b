// Package sheetlens reviews spreadsheet computational models: it scans
// every cell of a workbook, classifies formulas and hard-coded literals,
// scores structural complexity, and maps copy/fill patterns per sheet.
package sheetlens

import (
	"github.com/hmasato/sheetlens/pkg/sheetlens/scan"
)

// DefaultMinutesPerFormula is the review-time multiplier applied to the
// workbook's unique-formula count.
const DefaultMinutesPerFormula = 2.5

// Options configures a workbook analysis.
type Options struct {
	// TargetSheets restricts the scan to these sheet names; empty scans
	// every sheet in workbook order.
	TargetSheets []string
	// MinutesPerFormula is the review-time estimate multiplier. Zero or
	// negative uses DefaultMinutesPerFormula.
	MinutesPerFormula float64
	// IncludeEmptyCells counts formula cells whose resolved value is blank.
	IncludeEmptyCells bool
	// GroupSimilarFormulas groups by reference-normalized text instead of
	// exact formula text.
	GroupSimilarFormulas bool

	// BlockRows/BlockCols override the streaming block dimensions;
	// MassiveCellThreshold overrides the skim-mode cutoff. Zero keeps the
	// engine defaults.
	BlockRows            int
	BlockCols            int
	MassiveCellThreshold int
	// SampleCellCap bounds stored instance addresses per unique formula;
	// FindingCap bounds retained findings per sheet. Zero keeps the engine
	// defaults.
	SampleCellCap int
	FindingCap    int

	// Progress receives human-readable scan events; nil disables them.
	Progress scan.Progress
}

// DefaultOptions returns the default analysis options.
func DefaultOptions() Options {
	return Options{
		MinutesPerFormula: DefaultMinutesPerFormula,
		IncludeEmptyCells: true,
	}
}

// minutesPerFormula returns the effective review-time multiplier.
func (o Options) minutesPerFormula() float64 {
	if o.MinutesPerFormula <= 0 {
		return DefaultMinutesPerFormula
	}
	return o.MinutesPerFormula
}

// scanConfig translates the user-facing options into engine knobs.
func (o Options) scanConfig() scan.Config {
	cfg := scan.DefaultConfig()
	cfg.IncludeEmptyCells = o.IncludeEmptyCells
	cfg.GroupSimilarFormulas = o.GroupSimilarFormulas
	if o.BlockRows > 0 {
		cfg.BlockRows = o.BlockRows
	}
	if o.BlockCols > 0 {
		cfg.BlockCols = o.BlockCols
	}
	if o.MassiveCellThreshold > 0 {
		cfg.MassiveCellThreshold = o.MassiveCellThreshold
	}
	if o.SampleCellCap > 0 {
		cfg.SampleCellCap = o.SampleCellCap
	}
	if o.FindingCap > 0 {
		cfg.FindingCap = o.FindingCap
	}
	return cfg
}

// wantsSheet reports whether a sheet name is in scope.
func (o Options) wantsSheet(name string) bool {
	if len(o.TargetSheets) == 0 {
		return true
	}
	for _, t := range o.TargetSheets {
		if t == name {
			return true
		}
	}
	return false
}
