package output

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

// symbolColors assigns each map symbol its fixed fill color.
var symbolColors = map[models.Symbol]string{
	models.SymbolUnique:   "F4B183", // orange: hand-written formula
	models.SymbolCopyLeft: "BDD7EE", // light blue: filled right
	models.SymbolCopyUp:   "C6E0B4", // light green: filled down
	models.SymbolCopyBoth: "D9D2E9", // lavender: filled both ways
	models.SymbolLabel:    "D9D9D9", // grey: text
	models.SymbolInput:    "FFE699", // yellow: constant input
	models.SymbolArray:    "F8CBAD", // salmon: array / spill
	models.SymbolBlank:    "FFFFFF",
}

// RenderMapText renders the symbol grid with a legend footer, for terminal
// display.
func RenderMapText(m *models.MapResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  (%d x %d)\n", m.Sheet,
		models.Rect(m.Extent).Ref(), m.Extent.Rows, m.Extent.Cols)
	for _, row := range m.Rows() {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "F unique  < copy-left  ^ copy-up  + copy-both  L label  V input  A array  . blank\n")
	fmt.Fprintf(&b, "spills: %d  direction changes: %d  breaks: %d\n",
		len(m.Spills), m.DirectionChanges, m.Breaks)
	return b.String()
}

// WriteMapSheet writes the map as an xlsx visualizer sheet: every cell of
// the used region painted with its symbol's color, and a border drawn
// around each spill rectangle.
func WriteMapSheet(m *models.MapResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Map"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	styles := map[models.Symbol]int{}
	for sym, color := range symbolColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		styles[sym] = id
	}

	for r, row := range m.Grid {
		for c, sym := range row {
			cell, err := excelize.CoordinatesToCellName(m.Extent.Col+c+1, m.Extent.Row+r+1)
			if err != nil {
				return err
			}
			if sym != models.SymbolBlank {
				if err := f.SetCellValue(sheet, cell, sym.String()); err != nil {
					return err
				}
			}
			if err := f.SetCellStyle(sheet, cell, cell, styles[sym]); err != nil {
				return err
			}
		}
	}

	if err := borderSpills(f, sheet, m); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// borderSpills outlines each spill rectangle. Edge cells get a style
// combining the array fill with the border sides they contribute to the
// outline; the style per side-mask is cached across rectangles.
func borderSpills(f *excelize.File, sheet string, m *models.MapResult) error {
	cache := map[int]int{}
	style := func(mask int) (int, error) {
		if id, ok := cache[mask]; ok {
			return id, nil
		}
		var borders []excelize.Border
		for bit, side := range []string{"top", "bottom", "left", "right"} {
			if mask&(1<<bit) != 0 {
				borders = append(borders, excelize.Border{Type: side, Color: "000000", Style: 2})
			}
		}
		id, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{symbolColors[models.SymbolArray]}, Pattern: 1},
			Border: borders,
		})
		if err != nil {
			return 0, err
		}
		cache[mask] = id
		return id, nil
	}

	for _, rect := range m.Spills {
		for row := rect.Row; row < rect.Row+rect.Rows; row++ {
			for col := rect.Col; col < rect.Col+rect.Cols; col++ {
				mask := 0
				if row == rect.Row {
					mask |= 1
				}
				if row == rect.Row+rect.Rows-1 {
					mask |= 2
				}
				if col == rect.Col {
					mask |= 4
				}
				if col == rect.Col+rect.Cols-1 {
					mask |= 8
				}
				if mask == 0 {
					continue
				}
				id, err := style(mask)
				if err != nil {
					return err
				}
				cell, err := excelize.CoordinatesToCellName(col+1, row+1)
				if err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
