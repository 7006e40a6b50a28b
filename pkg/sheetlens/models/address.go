// Package models defines the data structures produced by workbook analysis.
package models

import (
	"fmt"
	"strings"
)

// MaxColumns is the column limit of the xlsx grid (column XFD).
const MaxColumns = 16384

// ColumnLetters converts a 1-based column number to its letter form
// (1 → "A", 26 → "Z", 27 → "AA"). The encoding is bijective base-26:
// there is no zero digit, so every positive integer has exactly one
// letter form. Returns "" for n < 1.
func ColumnLetters(n int) string {
	if n < 1 {
		return ""
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:])
}

// ColumnNumber converts a column letter form back to its 1-based number.
// Returns 0 if s is empty or contains a non-letter.
func ColumnNumber(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			return 0
		}
		n = n*26 + int(c-'A') + 1
	}
	return n
}

// CellName renders a zero-based (row, col) pair as an A1-style address.
func CellName(row, col int) string {
	return fmt.Sprintf("%s%d", ColumnLetters(col+1), row+1)
}

// Extent describes a worksheet's used region: a zero-based top-left
// offset plus row/column counts.
type Extent struct {
	Row  int `json:"row"`
	Col  int `json:"col"`
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// CellCount returns the number of cells covered by the extent.
func (e Extent) CellCount() int {
	return e.Rows * e.Cols
}

// Rect is a rectangular sub-range of a worksheet, zero-based.
type Rect struct {
	Row  int `json:"row"`
	Col  int `json:"col"`
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Contains reports whether the zero-based cell (row, col) lies inside r.
func (r Rect) Contains(row, col int) bool {
	return row >= r.Row && row < r.Row+r.Rows && col >= r.Col && col < r.Col+r.Cols
}

// Ref renders the rectangle as an A1-style range reference ("B2:D5").
func (r Rect) Ref() string {
	if r.Rows <= 1 && r.Cols <= 1 {
		return CellName(r.Row, r.Col)
	}
	return CellName(r.Row, r.Col) + ":" + CellName(r.Row+r.Rows-1, r.Col+r.Cols-1)
}

// RelativeFormula rewrites the A1-style cell references in a formula into
// row/column-relative ("R1C1") form anchored at the zero-based cell
// (row, col). Two cells filled with the same dragged formula render to the
// same relative text, which is what makes copy-pattern detection work.
// Absolute references ($A$1) keep absolute R1C1 form. Text inside double
// quotes and function names are left untouched.
func RelativeFormula(formula string, row, col int) string {
	var b strings.Builder
	b.Grow(len(formula))
	i := 0
	for i < len(formula) {
		c := formula[i]
		switch {
		case c == '"':
			// string literal: copy through to the closing quote
			j := i + 1
			for j < len(formula) {
				if formula[j] == '"' {
					j++
					if j < len(formula) && formula[j] == '"' {
						j++
						continue
					}
					break
				}
				j++
			}
			b.WriteString(formula[i:j])
			i = j
		case c == '\'':
			// quoted sheet name
			j := i + 1
			for j < len(formula) && formula[j] != '\'' {
				j++
			}
			if j < len(formula) {
				j++
			}
			b.WriteString(formula[i:j])
			i = j
		case c == '$' || isRefLetter(c):
			j := i
			for j < len(formula) && isRefByte(formula[j]) {
				j++
			}
			word := formula[i:j]
			if rel, ok := rewriteRef(word, row, col); ok && !followedByCall(formula, j) {
				b.WriteString(rel)
			} else {
				b.WriteString(word)
			}
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func isRefLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isRefByte(c byte) bool {
	return isRefLetter(c) || (c >= '0' && c <= '9') || c == '$' || c == '_' || c == '.'
}

// followedByCall reports whether position j starts an argument list,
// meaning the preceding word was a function name, not a reference.
func followedByCall(s string, j int) bool {
	return j < len(s) && s[j] == '('
}

// rewriteRef converts a single A1-style reference to R1C1 form relative to
// the zero-based anchor cell. Returns ok=false if word is not a reference.
func rewriteRef(word string, row, col int) (string, bool) {
	i := 0
	absCol := false
	if i < len(word) && word[i] == '$' {
		absCol = true
		i++
	}
	letterStart := i
	for i < len(word) && isRefLetter(word[i]) {
		i++
	}
	letters := word[letterStart:i]
	if letters == "" || len(letters) > 3 {
		return "", false
	}
	absRow := false
	if i < len(word) && word[i] == '$' {
		absRow = true
		i++
	}
	digitStart := i
	for i < len(word) && word[i] >= '0' && word[i] <= '9' {
		i++
	}
	digits := word[digitStart:i]
	if digits == "" || i != len(word) {
		return "", false
	}
	refCol := ColumnNumber(letters)
	if refCol == 0 || refCol > MaxColumns {
		return "", false
	}
	refRow := 0
	for k := 0; k < len(digits); k++ {
		refRow = refRow*10 + int(digits[k]-'0')
	}
	if refRow == 0 || refRow > 1048576 {
		return "", false
	}

	var b strings.Builder
	b.WriteByte('R')
	if absRow {
		fmt.Fprintf(&b, "%d", refRow)
	} else if d := refRow - 1 - row; d != 0 {
		fmt.Fprintf(&b, "[%d]", d)
	}
	b.WriteByte('C')
	if absCol {
		fmt.Fprintf(&b, "%d", refCol)
	} else if d := refCol - 1 - col; d != 0 {
		fmt.Fprintf(&b, "[%d]", d)
	}
	return b.String(), true
}
