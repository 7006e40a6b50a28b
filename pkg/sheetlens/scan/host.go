// Package scan implements the worksheet analysis engine: block-streamed
// grid reading, formula tokenization and literal classification, severity
// and complexity scoring, and symbolic fill-pattern map generation.
package scan

import (
	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

// Block is one rectangular read of worksheet cells. All slices are indexed
// [row][col] relative to Rect's top-left corner. A Block is owned by a
// single iteration of the driving loop and must not be retained.
type Block struct {
	Rect models.Rect
	// Formulas holds A1-style formula text without the leading "=", "" for
	// non-formula cells.
	Formulas [][]string
	// Values holds the resolved cell values.
	Values [][]string
	// Text holds the display text as formatted by the host.
	Text [][]string
	// Array flags fixed-form (ctrl-shift-enter) array formulas.
	Array [][]bool
}

// CountKind selects the predicate of a bulk cell count.
type CountKind int

const (
	// CountFormulas counts cells carrying a formula.
	CountFormulas CountKind = iota
	// CountConstants counts non-empty cells without a formula.
	CountConstants
)

// Host is the spreadsheet boundary the engine reads through. Implementations
// wrap a workbook file or a live host application; the engine never touches
// cell storage directly.
type Host interface {
	// SheetNames returns worksheet names in workbook order.
	SheetNames() []string
	// UsedRange returns the minimal rectangle containing any non-blank
	// cell. ok is false when the sheet has no used region.
	UsedRange(sheet string) (extent models.Extent, ok bool, err error)
	// ReadBlock fetches the cells of one sub-rectangle of a sheet.
	ReadBlock(sheet string, r models.Rect) (*Block, error)
	// CountCells bulk-counts cells matching a predicate. Used only by the
	// skim path for sheets too large to stream.
	CountCells(sheet string, kind CountKind) (int, error)
	// SpillRange resolves the spill rectangle populated by the dynamic
	// array formula anchored at the zero-based cell (row, col). ok is
	// false when the cell does not spill or the host cannot tell.
	SpillRange(sheet string, row, col int) (r models.Rect, ok bool, err error)
}

// Progress receives human-readable scan progress events. It must return
// quickly and never block; nil disposes of events.
type Progress func(msg string)

// Emit delivers one event, tolerating a nil callback.
func (p Progress) Emit(msg string) {
	if p != nil {
		p(msg)
	}
}
