package models

// Symbol is one entry of the closed fill-pattern alphabet a worksheet map
// assigns to every cell of the used region.
type Symbol byte

const (
	// SymbolUnique marks a formula with no matching left/up neighbor.
	SymbolUnique Symbol = 'F'
	// SymbolCopyLeft marks a formula filled from its left neighbor.
	SymbolCopyLeft Symbol = '<'
	// SymbolCopyUp marks a formula filled from the cell above.
	SymbolCopyUp Symbol = '^'
	// SymbolCopyBoth marks a formula matching both neighbors.
	SymbolCopyBoth Symbol = '+'
	// SymbolLabel marks a constant text cell.
	SymbolLabel Symbol = 'L'
	// SymbolInput marks a constant numeric or boolean cell.
	SymbolInput Symbol = 'V'
	// SymbolArray marks array formulas and cells inside a spill region.
	SymbolArray Symbol = 'A'
	// SymbolBlank marks an empty cell inside the used region.
	SymbolBlank Symbol = '.'
)

// String returns the one-character rendering of the symbol.
func (s Symbol) String() string {
	return string(rune(s))
}

// MarshalText lets Symbol serve as a JSON object key.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte{byte(s)}, nil
}

// MapResult is a worksheet's symbolic fill-pattern map: one symbol per
// cell of the used region plus spill rectangles and anomaly tallies.
type MapResult struct {
	Sheet  string `json:"sheet"`
	Extent Extent `json:"extent"`
	// Grid is indexed [row][col] relative to the extent's top-left corner.
	Grid   [][]Symbol     `json:"-"`
	Counts map[Symbol]int `json:"counts"`
	// Spills lists the resolved dynamic-array spill rectangles.
	Spills []Rect `json:"spills,omitempty"`
	// DirectionChanges counts copy runs that switch fill direction
	// mid-run; Breaks counts copy runs interrupted by a non-copy cell.
	// Both are diagnostic signals of inconsistent fill, not errors.
	DirectionChanges int `json:"direction_changes"`
	Breaks           int `json:"breaks"`
}

// Rows renders the grid as one string per row, for text output and
// JSON export.
func (m *MapResult) Rows() []string {
	rows := make([]string, len(m.Grid))
	for i, r := range m.Grid {
		b := make([]byte, len(r))
		for j, s := range r {
			b[j] = byte(s)
		}
		rows[i] = string(b)
	}
	return rows
}

// SymbolAt returns the symbol of the zero-based worksheet cell (row, col),
// or SymbolBlank if the cell lies outside the mapped extent.
func (m *MapResult) SymbolAt(row, col int) Symbol {
	r := row - m.Extent.Row
	c := col - m.Extent.Col
	if r < 0 || r >= len(m.Grid) || c < 0 || c >= len(m.Grid[r]) {
		return SymbolBlank
	}
	return m.Grid[r][c]
}
