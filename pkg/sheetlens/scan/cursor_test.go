package scan

import (
	"testing"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

func TestCursorTilesExtent(t *testing.T) {
	extent := models.Extent{Row: 2, Col: 1, Rows: 450, Cols: 250}
	cur := NewCursor(extent, 200, 120)

	covered := make(map[[2]int]int)
	blocks := 0
	for {
		r, ok := cur.Next()
		if !ok {
			break
		}
		blocks++
		if r.Rows <= 0 || r.Cols <= 0 || r.Rows > 200 || r.Cols > 120 {
			t.Fatalf("block %v outside size bounds", r)
		}
		for row := r.Row; row < r.Row+r.Rows; row++ {
			for col := r.Col; col < r.Col+r.Cols; col++ {
				covered[[2]int{row, col}]++
			}
		}
	}

	// 450 rows / 200 = 3 bands, 250 cols / 120 = 3 block columns
	if blocks != 9 {
		t.Errorf("expected 9 blocks, got %d", blocks)
	}
	if len(covered) != extent.CellCount() {
		t.Errorf("covered %d cells, expected %d", len(covered), extent.CellCount())
	}
	for cell, n := range covered {
		if n != 1 {
			t.Fatalf("cell %v covered %d times", cell, n)
		}
	}
}

func TestCursorClipsLastBlock(t *testing.T) {
	cur := NewCursor(models.Extent{Rows: 10, Cols: 10}, 200, 120)
	r, ok := cur.Next()
	if !ok {
		t.Fatal("expected one block")
	}
	if r.Rows != 10 || r.Cols != 10 {
		t.Errorf("expected clipped 10x10 block, got %dx%d", r.Rows, r.Cols)
	}
	if _, ok := cur.Next(); ok {
		t.Error("expected exactly one block")
	}
}

func TestCursorRowMajorOrder(t *testing.T) {
	cur := NewCursor(models.Extent{Rows: 5, Cols: 5}, 2, 3)
	var got []models.Rect
	for {
		r, ok := cur.Next()
		if !ok {
			break
		}
		got = append(got, r)
	}
	expected := []models.Rect{
		{Row: 0, Col: 0, Rows: 2, Cols: 3},
		{Row: 0, Col: 3, Rows: 2, Cols: 2},
		{Row: 2, Col: 0, Rows: 2, Cols: 3},
		{Row: 2, Col: 3, Rows: 2, Cols: 2},
		{Row: 4, Col: 0, Rows: 1, Cols: 3},
		{Row: 4, Col: 3, Rows: 1, Cols: 2},
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %d blocks, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("block %d: got %v, expected %v", i, got[i], expected[i])
		}
	}
}

func TestCursorEmptyExtent(t *testing.T) {
	cur := NewCursor(models.Extent{}, 200, 120)
	if _, ok := cur.Next(); ok {
		t.Error("empty extent must yield no blocks")
	}
}

func TestCursorReset(t *testing.T) {
	cur := NewCursor(models.Extent{Rows: 3, Cols: 3}, 2, 2)
	first, _ := cur.Next()
	for {
		if _, ok := cur.Next(); !ok {
			break
		}
	}
	cur.Reset()
	again, ok := cur.Next()
	if !ok || again != first {
		t.Errorf("Reset did not rewind: got %v, expected %v", again, first)
	}
}
