// Package xlsxhost implements the scan.Host boundary over an xlsx workbook
// file using excelize.
package xlsxhost

import (
	"io"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
	"github.com/hmasato/sheetlens/pkg/sheetlens/scan"
)

// File adapts an open xlsx workbook to the scan.Host interface.
type File struct {
	f    *excelize.File
	name string
}

// Open opens a workbook file.
func Open(path string) (*File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &File{f: f, name: filepath.Base(path)}, nil
}

// OpenReader opens a workbook from a stream. name is used for reporting.
func OpenReader(r io.Reader, name string) (*File, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	return &File{f: f, name: name}, nil
}

// Close releases the underlying workbook.
func (h *File) Close() error {
	return h.f.Close()
}

// BookName returns the workbook file name (no path).
func (h *File) BookName() string {
	return h.name
}

// SheetNames returns worksheet names in workbook order.
func (h *File) SheetNames() []string {
	return h.f.GetSheetList()
}

// UsedRange computes the minimal rectangle of non-blank cells.
func (h *File) UsedRange(sheet string) (models.Extent, bool, error) {
	rows, err := h.f.GetRows(sheet)
	if err != nil {
		return models.Extent{}, false, err
	}
	minRow, maxRow, minCol, maxCol := dataBounds(rows)
	if minRow < 0 {
		return models.Extent{}, false, nil
	}
	return models.Extent{
		Row:  minRow,
		Col:  minCol,
		Rows: maxRow - minRow + 1,
		Cols: maxCol - minCol + 1,
	}, true, nil
}

// dataBounds finds the bounding box of non-empty cells, zero-based.
// Returns minRow = -1 when the sheet is empty.
func dataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1
	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}
	return minRow, maxRow, minCol, maxCol
}

// ReadBlock fetches one sub-rectangle of cells: formula text, raw value,
// and formatted display text. The xlsx format does not record fixed-form
// array entry, so the Array flags stay false for file-backed hosts.
func (h *File) ReadBlock(sheet string, r models.Rect) (*scan.Block, error) {
	block := &scan.Block{
		Rect:     r,
		Formulas: make([][]string, r.Rows),
		Values:   make([][]string, r.Rows),
		Text:     make([][]string, r.Rows),
		Array:    make([][]bool, r.Rows),
	}
	for i := 0; i < r.Rows; i++ {
		block.Formulas[i] = make([]string, r.Cols)
		block.Values[i] = make([]string, r.Cols)
		block.Text[i] = make([]string, r.Cols)
		block.Array[i] = make([]bool, r.Cols)

		for j := 0; j < r.Cols; j++ {
			cell, err := excelize.CoordinatesToCellName(r.Col+j+1, r.Row+i+1)
			if err != nil {
				return nil, err
			}
			formula, err := h.f.GetCellFormula(sheet, cell)
			if err != nil {
				return nil, err
			}
			raw, err := h.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
			if err != nil {
				return nil, err
			}
			text, err := h.f.GetCellValue(sheet, cell)
			if err != nil {
				return nil, err
			}
			block.Formulas[i][j] = formula
			block.Values[i][j] = raw
			block.Text[i][j] = text
		}
	}
	return block, nil
}

// CountCells bulk-counts formula or constant cells over the used range.
func (h *File) CountCells(sheet string, kind scan.CountKind) (int, error) {
	extent, ok, err := h.UsedRange(sheet)
	if err != nil || !ok {
		return 0, err
	}

	count := 0
	for row := extent.Row; row < extent.Row+extent.Rows; row++ {
		for col := extent.Col; col < extent.Col+extent.Cols; col++ {
			cell, err := excelize.CoordinatesToCellName(col+1, row+1)
			if err != nil {
				return 0, err
			}
			formula, err := h.f.GetCellFormula(sheet, cell)
			if err != nil {
				return 0, err
			}
			switch kind {
			case scan.CountFormulas:
				if formula != "" {
					count++
				}
			case scan.CountConstants:
				if formula != "" {
					continue
				}
				v, err := h.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
				if err != nil {
					return 0, err
				}
				if v != "" {
					count++
				}
			}
		}
	}
	return count, nil
}

// SpillRange reports no spill: xlsx files do not carry resolvable
// dynamic-array spill metadata, so file-backed analysis treats every
// anchor as unspilled.
func (h *File) SpillRange(sheet string, row, col int) (models.Rect, bool, error) {
	return models.Rect{}, false, nil
}
