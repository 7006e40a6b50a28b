package sheetlens

import (
	"context"
	"fmt"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
	"github.com/hmasato/sheetlens/pkg/sheetlens/scan"
)

// Analyze scans every in-scope worksheet of a workbook sequentially and
// merges the per-sheet results into workbook totals. Sheets are processed
// strictly in workbook order; a fatal host failure aborts the run with the
// triggering sheet attached, and no partial workbook result is returned.
func Analyze(ctx context.Context, h scan.Host, bookName string, opts Options) (*models.WorkbookResult, error) {
	sheets := h.SheetNames()
	scanner := scan.NewSheetScanner(h, opts.scanConfig())
	scanner.Progress = opts.Progress

	res := &models.WorkbookResult{BookName: bookName}
	for _, name := range sheets {
		if !opts.wantsSheet(name) {
			continue
		}
		opts.Progress.Emit(fmt.Sprintf("analyzing sheet %q", name))

		sr, err := scanner.Scan(ctx, name)
		if err != nil {
			return nil, &SheetError{Sheet: name, Stage: "scan", Err: err}
		}

		res.Sheets = append(res.Sheets, sr)
		res.CellCount += sr.CellCount
		res.FormulaCount += sr.FormulaCount
		res.ValueCount += sr.ValueCount
		res.UniqueFormulaCount += sr.UniqueFormulaCount()
	}
	if len(res.Sheets) == 0 {
		return nil, ErrNoSheets
	}

	res.ReviewMinutes = float64(res.UniqueFormulaCount) * opts.minutesPerFormula()
	return res, nil
}

// GenerateMap builds the symbolic fill-pattern map of one worksheet.
// Returns scan.ErrEmptyRegion (wrapped in a SheetError) when the sheet has
// no used region.
func GenerateMap(ctx context.Context, h scan.Host, sheet string, opts Options) (*models.MapResult, error) {
	gen := scan.NewMapGenerator(h, opts.scanConfig())
	gen.Progress = opts.Progress

	m, err := gen.Generate(ctx, sheet)
	if err != nil {
		return nil, &SheetError{Sheet: sheet, Stage: "map", Err: err}
	}
	return m, nil
}
