package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

// WriteReport writes an xlsx review report for a workbook result: a
// summary sheet of per-worksheet totals, the unique-formula listing ranked
// by F-Score, and the hard-coded value findings partitioned by severity.
func WriteReport(res *models.WorkbookResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeSummarySheet(f, res, header); err != nil {
		return err
	}
	if err := writeFormulaSheet(f, res, header); err != nil {
		return err
	}
	if err := writeFindingSheet(f, res, header); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

func writeSummarySheet(f *excelize.File, res *models.WorkbookResult, header int) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "Sheet", "Mode", "Cells", "Formulas", "Values", "Unique formulas", "Findings", "Note"); err != nil {
		return err
	}
	if err := styleRow(f, sheet, 1, 8, header); err != nil {
		return err
	}

	row := 2
	for _, sr := range res.Sheets {
		if err := setRow(f, sheet, row,
			sr.Name, string(sr.Mode), sr.CellCount, sr.FormulaCount, sr.ValueCount,
			sr.UniqueFormulaCount(), sr.Findings.Len(), sr.FallbackReason); err != nil {
			return err
		}
		row++
	}

	row++
	if err := setRow(f, sheet, row, "Workbook totals", "",
		res.CellCount, res.FormulaCount, res.ValueCount, res.UniqueFormulaCount); err != nil {
		return err
	}
	row++
	return setRow(f, sheet, row, "Estimated review time",
		fmt.Sprintf("%.0f minutes", res.ReviewMinutes))
}

func writeFormulaSheet(f *excelize.File, res *models.WorkbookResult, header int) error {
	const sheet = "Formulas"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "Sheet", "Formula", "Count", "Score", "Band", "Array", "Example cells"); err != nil {
		return err
	}
	if err := styleRow(f, sheet, 1, 7, header); err != nil {
		return err
	}

	type entry struct {
		sheet string
		fi    *models.FormulaInfo
	}
	var entries []entry
	for _, sr := range res.Sheets {
		for _, fi := range sr.Formulas {
			entries = append(entries, entry{sheet: sr.Name, fi: fi})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].fi.Score > entries[j].fi.Score
	})

	for i, e := range entries {
		cells := e.fi.Cells
		if len(cells) > 5 {
			cells = cells[:5]
		}
		if err := setRow(f, sheet, i+2,
			e.sheet, e.fi.Text, e.fi.Count, e.fi.Score, string(e.fi.Band),
			e.fi.Array, strings.Join(cells, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func writeFindingSheet(f *excelize.File, res *models.WorkbookResult, header int) error {
	const sheet = "Findings"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, "Sheet", "Cell", "Severity", "Value", "Kind", "Repeats", "Parameter", "Rationale", "Suggested fix"); err != nil {
		return err
	}
	if err := styleRow(f, sheet, 1, 9, header); err != nil {
		return err
	}

	row := 2
	for _, sr := range res.Sheets {
		for _, fd := range sr.Findings.All() {
			if err := setRow(f, sheet, row,
				sr.Name, fd.Cell, string(fd.Severity), fd.Literal.Display,
				string(fd.Literal.Kind), fd.Repetition, fd.LikelyParameter,
				fd.Rationale, fd.Fix); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
