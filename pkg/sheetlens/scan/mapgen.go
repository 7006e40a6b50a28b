package scan

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

// dynamicArrayFuncs are functions whose result spills beyond the anchor
// cell. A formula calling one of them (or containing the spill-reference
// marker "#") is recorded as a dynamic-array anchor.
var dynamicArrayFuncs = []string{
	"FILTER(", "SORT(", "SORTBY(", "UNIQUE(", "SEQUENCE(", "RANDARRAY(",
}

// MapGenerator walks a worksheet block by block and classifies every cell
// of the used region into the symbolic fill-pattern alphabet, then promotes
// resolved spill regions and tallies fill anomalies.
type MapGenerator struct {
	Host     Host
	Config   Config
	Progress Progress
}

// NewMapGenerator returns a generator over h.
func NewMapGenerator(h Host, cfg Config) *MapGenerator {
	return &MapGenerator{Host: h, Config: cfg}
}

// Generate builds the symbol map of one worksheet. Returns ErrEmptyRegion
// when the sheet has no used region.
func (g *MapGenerator) Generate(ctx context.Context, sheet string) (*models.MapResult, error) {
	extent, ok, err := g.Host.UsedRange(sheet)
	if err != nil {
		return nil, fmt.Errorf("used range: %w", err)
	}
	if !ok {
		return nil, ErrEmptyRegion
	}

	res := &models.MapResult{
		Sheet:  sheet,
		Extent: extent,
		Grid:   make([][]models.Symbol, extent.Rows),
		Counts: map[models.Symbol]int{},
	}
	for i := range res.Grid {
		res.Grid[i] = make([]models.Symbol, extent.Cols)
	}

	var anchors [][2]int // zero-based worksheet coordinates

	// prevRel holds the comparison keys of the most recently completed
	// row, one entry per extent column; zero for non-formulas.
	prevRel := make([]relCell, extent.Cols)

	blockRows := g.Config.blockRows()
	blockCols := g.Config.blockCols()
	endRow := extent.Row + extent.Rows

	for bandRow := extent.Row; bandRow < endRow; bandRow += blockRows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows := min(blockRows, endRow-bandRow)
		band, err := g.readBand(sheet, extent, bandRow, rows, blockCols)
		if err != nil {
			return nil, err
		}
		g.Progress.Emit(fmt.Sprintf("%s: map band rows %d-%d", sheet, bandRow+1, bandRow+rows))

		for r := 0; r < rows; r++ {
			curRel := make([]relCell, extent.Cols)
			for c := 0; c < extent.Cols; c++ {
				absRow := bandRow + r
				absCol := extent.Col + c

				sym, rel := classifyMapCell(band, r, c, absRow, absCol, curRel, prevRel)
				if f := band.formulas[r][c]; f != "" && isSpillAnchor(f) {
					anchors = append(anchors, [2]int{absRow, absCol})
				}
				res.Grid[absRow-extent.Row][c] = sym
				res.Counts[sym]++
				curRel[c] = rel
			}
			prevRel = curRel
		}
	}

	g.promoteSpills(sheet, extent, anchors, res)
	res.DirectionChanges, res.Breaks = tallyAnomalies(res.Grid)
	return res, nil
}

// bandData is one full-width band of cell data assembled from the cursor's
// blocks; it is dropped as soon as its rows are classified.
type bandData struct {
	formulas [][]string
	values   [][]string
	array    [][]bool
}

func (g *MapGenerator) readBand(sheet string, extent models.Extent, bandRow, rows, blockCols int) (*bandData, error) {
	band := &bandData{
		formulas: make([][]string, rows),
		values:   make([][]string, rows),
		array:    make([][]bool, rows),
	}
	for r := 0; r < rows; r++ {
		band.formulas[r] = make([]string, extent.Cols)
		band.values[r] = make([]string, extent.Cols)
		band.array[r] = make([]bool, extent.Cols)
	}

	endCol := extent.Col + extent.Cols
	for bandCol := extent.Col; bandCol < endCol; bandCol += blockCols {
		rect := models.Rect{
			Row:  bandRow,
			Col:  bandCol,
			Rows: rows,
			Cols: min(blockCols, endCol-bandCol),
		}
		block, err := g.Host.ReadBlock(sheet, rect)
		if err != nil {
			return nil, fmt.Errorf("read block %s: %w", rect.Ref(), err)
		}
		for r := 0; r < rect.Rows; r++ {
			for c := 0; c < rect.Cols; c++ {
				tc := bandCol - extent.Col + c
				band.formulas[r][tc] = block.Formulas[r][c]
				band.values[r][tc] = block.Values[r][c]
				band.array[r][tc] = block.Array[r][c]
			}
		}
	}
	return band, nil
}

// relCell is the comparison key of one formula cell: the absolute text as
// written and the R1C1-relative rendering. A drag-fill leaves identical
// relative text; a verbatim paste leaves identical absolute text. Either
// one marks the cell as a copy of its neighbor.
type relCell struct {
	raw string
	rel string
}

// copies reports whether the cell is a copy of neighbor. The zero value
// (a non-formula neighbor) never matches.
func (k relCell) copies(neighbor relCell) bool {
	return neighbor.raw != "" && (k.raw == neighbor.raw || k.rel == neighbor.rel)
}

// classifyMapCell assigns the symbol of one cell and returns its comparison
// key (zero for non-formulas).
func classifyMapCell(band *bandData, r, c, absRow, absCol int, curRel, prevRel []relCell) (models.Symbol, relCell) {
	formula := band.formulas[r][c]
	if formula == "" {
		v := band.values[r][c]
		switch {
		case v == "":
			return models.SymbolBlank, relCell{}
		case isNumericOrBool(v):
			return models.SymbolInput, relCell{}
		default:
			return models.SymbolLabel, relCell{}
		}
	}

	key := relCell{raw: formula, rel: models.RelativeFormula(formula, absRow, absCol)}
	if band.array[r][c] {
		return models.SymbolArray, key
	}

	copyLeft := c > 0 && key.copies(curRel[c-1])
	copyUp := key.copies(prevRel[c])
	switch {
	case copyLeft && copyUp:
		return models.SymbolCopyBoth, key
	case copyLeft:
		return models.SymbolCopyLeft, key
	case copyUp:
		return models.SymbolCopyUp, key
	default:
		return models.SymbolUnique, key
	}
}

func isNumericOrBool(v string) bool {
	if v == "TRUE" || v == "FALSE" {
		return true
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

// isSpillAnchor reports whether a formula's text marks a dynamic-array
// anchor: either a spill reference or a known spilling function call.
func isSpillAnchor(formula string) bool {
	if strings.Contains(formula, "#") {
		return true
	}
	upper := strings.ToUpper(formula)
	for _, fn := range dynamicArrayFuncs {
		if strings.Contains(upper, fn) {
			return true
		}
	}
	return false
}

// promoteSpills resolves each anchor against the host's spill query and
// overwrites every cell of the resolved rectangle with the array symbol,
// keeping the symbol counts consistent.
func (g *MapGenerator) promoteSpills(sheet string, extent models.Extent, anchors [][2]int, res *models.MapResult) {
	for _, a := range anchors {
		rect, ok, err := g.Host.SpillRange(sheet, a[0], a[1])
		if err != nil || !ok {
			continue
		}
		res.Spills = append(res.Spills, rect)
		for row := rect.Row; row < rect.Row+rect.Rows; row++ {
			for col := rect.Col; col < rect.Col+rect.Cols; col++ {
				r := row - extent.Row
				c := col - extent.Col
				if r < 0 || r >= len(res.Grid) || c < 0 || c >= len(res.Grid[r]) {
					continue
				}
				if old := res.Grid[r][c]; old != models.SymbolArray {
					res.Counts[old]--
					res.Counts[models.SymbolArray]++
					res.Grid[r][c] = models.SymbolArray
				}
			}
		}
	}
}

// tallyAnomalies scans completed rows and columns for inconsistent fill:
// direction changes inside a contiguous copy run, and copy runs that break
// into a label, input, or blank cell.
func tallyAnomalies(grid [][]models.Symbol) (changes, breaks int) {
	for _, row := range grid {
		ch, br := scanLine(func(i int) models.Symbol { return row[i] }, len(row))
		changes += ch
		breaks += br
	}
	if len(grid) > 0 {
		for c := 0; c < len(grid[0]); c++ {
			ch, br := scanLine(func(i int) models.Symbol { return grid[i][c] }, len(grid))
			changes += ch
			breaks += br
		}
	}
	return changes, breaks
}

func isCopySymbol(s models.Symbol) bool {
	return s == models.SymbolCopyLeft || s == models.SymbolCopyUp || s == models.SymbolCopyBoth
}

func scanLine(at func(int) models.Symbol, n int) (changes, breaks int) {
	inRun := false
	var dir models.Symbol
	for i := 0; i < n; i++ {
		s := at(i)
		if isCopySymbol(s) {
			if inRun && dir != 0 && s != models.SymbolCopyBoth && s != dir {
				changes++
			}
			if s != models.SymbolCopyBoth {
				dir = s
			}
			inRun = true
			continue
		}
		if inRun {
			switch s {
			case models.SymbolLabel, models.SymbolInput, models.SymbolBlank:
				breaks++
			}
		}
		inRun = false
		dir = 0
	}
	return changes, breaks
}
