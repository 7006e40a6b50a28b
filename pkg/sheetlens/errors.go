package sheetlens

import (
	"errors"
	"fmt"
)

// ErrNoSheets indicates the workbook has no sheets in scope.
var ErrNoSheets = errors.New("no sheets to analyze")

// SheetError wraps a fatal host failure with the worksheet that triggered
// it. Per-cell and per-sheet degradations never surface as SheetError;
// those are recorded on the sheet result instead.
type SheetError struct {
	Sheet string
	Stage string // "scan" or "map"
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q (%s): %v", e.Sheet, e.Stage, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}
