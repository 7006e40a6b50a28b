// Package output serializes analysis results for export: JSON documents,
// xlsx review reports, and the worksheet map visualizer.
package output

import (
	"encoding/json"

	"github.com/hmasato/sheetlens/pkg/sheetlens/models"
)

func marshal(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// ToJSON serializes a workbook result.
func ToJSON(res *models.WorkbookResult, pretty bool) ([]byte, error) {
	return marshal(res, pretty)
}

// SheetToJSON serializes a single sheet result.
func SheetToJSON(res *models.SheetResult, pretty bool) ([]byte, error) {
	return marshal(res, pretty)
}

// mapDocument augments a map result with the string-rendered grid rows.
type mapDocument struct {
	*models.MapResult
	Rows []string `json:"rows"`
}

// MapToJSON serializes a map result including the symbol grid, one string
// per row.
func MapToJSON(m *models.MapResult, pretty bool) ([]byte, error) {
	return marshal(mapDocument{MapResult: m, Rows: m.Rows()}, pretty)
}
