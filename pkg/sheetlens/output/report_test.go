package output

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

func sampleResult() *models.WorkbookResult {
	sheet := &models.SheetResult{
		Name:         "Model",
		Mode:         models.ModeStreaming,
		CellCount:    6,
		FormulaCount: 2,
		ValueCount:   1,
		Formulas: []*models.FormulaInfo{
			{Key: "REF*12", Text: "=A1*12", Count: 2, Cells: []string{"A2", "A3"}, Score: 2, Band: models.BandLow},
			{Key: "SUM(REF)", Text: "=SUM(A1:A3)", Count: 1, Cells: []string{"A4"}, Score: 3, Band: models.BandLow},
		},
	}
	sheet.Findings.Add(&models.Finding{
		Cell:      "A2",
		Literal:   models.Literal{Kind: models.LiteralNumeric, Display: "12"},
		Severity:  models.SeverityLow,
		Rationale: "hard-coded multiplier",
		Fix:       "move 12 to a named input cell",
	})

	return &models.WorkbookResult{
		BookName:           "book.xlsx",
		Sheets:             []*models.SheetResult{sheet},
		CellCount:          6,
		FormulaCount:       2,
		ValueCount:         1,
		UniqueFormulaCount: 2,
		ReviewMinutes:      5,
	}
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(sampleResult(), true)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc["book_name"] != "book.xlsx" {
		t.Errorf("book_name = %v", doc["book_name"])
	}
	if doc["unique_formula_count"] != float64(2) {
		t.Errorf("unique_formula_count = %v", doc["unique_formula_count"])
	}
}

func TestMapToJSON(t *testing.T) {
	m := &models.MapResult{
		Sheet:  "Model",
		Extent: models.Extent{Rows: 1, Cols: 2},
		Grid:   [][]models.Symbol{{models.SymbolUnique, models.SymbolCopyLeft}},
		Counts: map[models.Symbol]int{models.SymbolUnique: 1, models.SymbolCopyLeft: 1},
	}
	data, err := MapToJSON(m, false)
	if err != nil {
		t.Fatalf("MapToJSON failed: %v", err)
	}
	var doc struct {
		Sheet string   `json:"sheet"`
		Rows  []string `json:"rows"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Sheet != "Model" {
		t.Errorf("sheet = %q", doc.Sheet)
	}
	if len(doc.Rows) != 1 || doc.Rows[0] != "F<" {
		t.Errorf("rows = %v, expected [F<]", doc.Rows)
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteReport(sampleResult(), path); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Summary", "Formulas", "Findings"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("missing sheet %q", sheet)
		}
	}

	if v, err := f.GetCellValue("Summary", "A2"); err != nil || v != "Model" {
		t.Errorf("Summary!A2 = %q (%v)", v, err)
	}
	// Formulas are ranked by score, SUM first.
	if v, err := f.GetCellValue("Formulas", "B2"); err != nil || v != "=SUM(A1:A3)" {
		t.Errorf("Formulas!B2 = %q (%v)", v, err)
	}
	if v, err := f.GetCellValue("Findings", "B2"); err != nil || v != "A2" {
		t.Errorf("Findings!B2 = %q (%v)", v, err)
	}
}

func TestRenderMapText(t *testing.T) {
	m := &models.MapResult{
		Sheet:  "Model",
		Extent: models.Extent{Rows: 2, Cols: 2},
		Grid: [][]models.Symbol{
			{models.SymbolLabel, models.SymbolUnique},
			{models.SymbolInput, models.SymbolCopyUp},
		},
		Breaks: 1,
	}
	text := RenderMapText(m)
	if !strings.Contains(text, "LF\n") || !strings.Contains(text, "V^\n") {
		t.Errorf("grid rows missing from render:\n%s", text)
	}
	if !strings.Contains(text, "breaks: 1") {
		t.Errorf("tallies missing from render:\n%s", text)
	}
}

func TestWriteMapSheet(t *testing.T) {
	m := &models.MapResult{
		Sheet:  "Model",
		Extent: models.Extent{Rows: 2, Cols: 2},
		Grid: [][]models.Symbol{
			{models.SymbolArray, models.SymbolArray},
			{models.SymbolArray, models.SymbolBlank},
		},
		Spills: []models.Rect{{Row: 0, Col: 0, Rows: 2, Cols: 1}},
	}
	path := filepath.Join(t.TempDir(), "map.xlsx")
	if err := WriteMapSheet(m, path); err != nil {
		t.Fatalf("WriteMapSheet failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer f.Close()

	if v, err := f.GetCellValue("Map", "A1"); err != nil || v != "A" {
		t.Errorf("Map!A1 = %q (%v)", v, err)
	}
	// Blank cells carry no value, only their fill.
	if v, err := f.GetCellValue("Map", "B2"); err != nil || v != "" {
		t.Errorf("Map!B2 = %q (%v)", v, err)
	}
}
