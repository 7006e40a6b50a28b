package sheetlens

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
	"github.com/hmasato/sheetlens/pkg/sheetlens/scan"
	"github.com/hmasato/sheetlens/pkg/sheetlens/xlsxhost"
)

// openFixture builds a two-sheet workbook on disk and opens it as a host.
func openFixture(t *testing.T) *xlsxhost.File {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	setCell := func(sheet, cell string, v interface{}) {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatal(err)
		}
	}
	setFormula := func(sheet, cell, formula string) {
		if err := f.SetCellFormula(sheet, cell, formula); err != nil {
			t.Fatal(err)
		}
	}

	// Sheet1: one input, two instances of one dragged formula.
	setCell("Sheet1", "A1", 100)
	setCell("Sheet1", "A2", 1200)
	setFormula("Sheet1", "A2", "A1*12")
	setCell("Sheet1", "A3", 14400)
	setFormula("Sheet1", "A3", "A2*12")

	// Model: a second sheet with its own formula.
	if _, err := f.NewSheet("Model"); err != nil {
		t.Fatal(err)
	}
	setCell("Model", "B1", "Rate")
	setCell("Model", "B2", 1152)
	setFormula("Model", "B2", "Sheet1!A3*0.08")

	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}

	h, err := xlsxhost.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestAnalyzeWorkbook(t *testing.T) {
	h := openFixture(t)

	opts := DefaultOptions()
	opts.GroupSimilarFormulas = true
	res, err := Analyze(context.Background(), h, h.BookName(), opts)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(res.Sheets) != 2 {
		t.Fatalf("sheets = %d, expected 2", len(res.Sheets))
	}
	if res.Sheets[0].Name != "Sheet1" || res.Sheets[1].Name != "Model" {
		t.Errorf("sheet order: %s, %s", res.Sheets[0].Name, res.Sheets[1].Name)
	}
	if res.FormulaCount != 3 {
		t.Errorf("formula count = %d, expected 3", res.FormulaCount)
	}
	if res.ValueCount != 2 {
		t.Errorf("value count = %d, expected 2", res.ValueCount)
	}
	// Sheet1's two instances normalize to one formula; Model has one more.
	if res.UniqueFormulaCount != 2 {
		t.Errorf("unique formulas = %d, expected 2", res.UniqueFormulaCount)
	}
	want := float64(res.UniqueFormulaCount) * DefaultMinutesPerFormula
	if math.Abs(res.ReviewMinutes-want) > 1e-9 {
		t.Errorf("review minutes = %v, expected %v", res.ReviewMinutes, want)
	}
}

func TestAnalyzeTargetSheets(t *testing.T) {
	h := openFixture(t)

	opts := DefaultOptions()
	opts.TargetSheets = []string{"Model"}
	res, err := Analyze(context.Background(), h, h.BookName(), opts)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(res.Sheets) != 1 || res.Sheets[0].Name != "Model" {
		t.Fatalf("expected only Model, got %+v", res.Sheets)
	}
}

func TestAnalyzeNoMatchingSheets(t *testing.T) {
	h := openFixture(t)

	opts := DefaultOptions()
	opts.TargetSheets = []string{"Missing"}
	if _, err := Analyze(context.Background(), h, h.BookName(), opts); !errors.Is(err, ErrNoSheets) {
		t.Fatalf("expected ErrNoSheets, got %v", err)
	}
}

func TestAnalyzeCancellation(t *testing.T) {
	h := openFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, h, h.BookName(), DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var se *SheetError
	if !errors.As(err, &se) || se.Stage != "scan" {
		t.Errorf("expected a scan-stage SheetError, got %v", err)
	}
}

func TestGenerateMap(t *testing.T) {
	h := openFixture(t)

	m, err := GenerateMap(context.Background(), h, "Sheet1", DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateMap failed: %v", err)
	}
	if m.Sheet != "Sheet1" {
		t.Errorf("sheet = %q", m.Sheet)
	}
	rows := m.Rows()
	// A1 input, then the dragged formula: unique, copy-up.
	if len(rows) != 3 || rows[0] != "V" || rows[1] != "F" || rows[2] != "^" {
		t.Errorf("map rows = %v, expected [V F ^]", rows)
	}
	if m.Counts[models.SymbolCopyUp] != 1 {
		t.Errorf("copy-up count = %d, expected 1", m.Counts[models.SymbolCopyUp])
	}
}

func TestGenerateMapEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	h, err := xlsxhost.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	_, err = GenerateMap(context.Background(), h, "Sheet1", DefaultOptions())
	if !errors.Is(err, scan.ErrEmptyRegion) {
		t.Fatalf("expected ErrEmptyRegion, got %v", err)
	}
	var se *SheetError
	if !errors.As(err, &se) || se.Stage != "map" {
		t.Errorf("expected a map-stage SheetError, got %v", err)
	}
}

func TestSheetErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &SheetError{Sheet: "Model", Stage: "scan", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Unwrap does not expose the inner error")
	}
	msg := err.Error()
	if msg == "" || msg == inner.Error() {
		t.Errorf("Error() = %q, expected sheet context", msg)
	}
}
