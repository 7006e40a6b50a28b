package scan

import (
	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

// Cursor walks a used-region extent in fixed-size blocks, row-major:
// each band of rows is covered left to right before the next band starts.
// The last block of each band is clipped to the extent boundary, so the
// blocks tile the extent with no gaps or overlaps.
type Cursor struct {
	extent    models.Extent
	blockRows int
	blockCols int
	row       int
	col       int
}

// NewCursor creates a cursor over extent with the given block dimensions.
// Non-positive dimensions fall back to the defaults.
func NewCursor(extent models.Extent, blockRows, blockCols int) *Cursor {
	if blockRows <= 0 {
		blockRows = DefaultBlockRows
	}
	if blockCols <= 0 {
		blockCols = DefaultBlockCols
	}
	c := &Cursor{extent: extent, blockRows: blockRows, blockCols: blockCols}
	c.Reset()
	return c
}

// Reset rewinds the cursor to the first block.
func (c *Cursor) Reset() {
	c.row = c.extent.Row
	c.col = c.extent.Col
}

// Next yields the next block rectangle, or ok=false when the extent is
// exhausted. An empty extent yields no blocks.
func (c *Cursor) Next() (models.Rect, bool) {
	endRow := c.extent.Row + c.extent.Rows
	endCol := c.extent.Col + c.extent.Cols
	if c.extent.Rows <= 0 || c.extent.Cols <= 0 || c.row >= endRow {
		return models.Rect{}, false
	}
	r := models.Rect{
		Row:  c.row,
		Col:  c.col,
		Rows: min(c.blockRows, endRow-c.row),
		Cols: min(c.blockCols, endCol-c.col),
	}
	c.col += c.blockCols
	if c.col >= endCol {
		c.col = c.extent.Col
		c.row += c.blockRows
	}
	return r, true
}
