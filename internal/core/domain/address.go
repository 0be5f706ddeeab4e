package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Worksheet limits.
const (
	MaxRows    = 1048576
	MaxColumns = 16384
)

// cellRefRe matches a cell reference like A1, $B$2, AA100.
var cellRefRe = regexp.MustCompile(`^\$?([A-Z]{1,3})\$?(\d+)$`)

// CellRange is a rectangular range in 1-indexed form.
// Sheet is empty when the address carried no sheet qualifier.
type CellRange struct {
	Sheet    string
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Rows returns the number of rows covered by the range.
func (r CellRange) Rows() int { return r.EndRow - r.StartRow + 1 }

// Cols returns the number of columns covered by the range.
func (r CellRange) Cols() int { return r.EndCol - r.StartCol + 1 }

// IsCell reports whether the range is a single cell.
func (r CellRange) IsCell() bool { return r.Rows() == 1 && r.Cols() == 1 }

// String formats the range as an A1 address without sheet qualifier.
func (r CellRange) String() string {
	from := ColumnName(r.StartCol) + strconv.Itoa(r.StartRow)
	if r.IsCell() {
		return from
	}
	return from + ":" + ColumnName(r.EndCol) + strconv.Itoa(r.EndRow)
}

// ParseRange parses an address like "A1", "B2:C10" or "'My Sheet'!A1:Z50".
func ParseRange(address string) (CellRange, error) {
	var r CellRange
	rangePart := address
	if idx := strings.LastIndex(address, "!"); idx >= 0 {
		r.Sheet = strings.ReplaceAll(strings.Trim(address[:idx], "'"), "''", "'")
		rangePart = address[idx+1:]
	}

	fromRef, toRef, hasColon := strings.Cut(rangePart, ":")
	if !hasColon {
		toRef = fromRef
	}

	var err error
	r.StartCol, r.StartRow, err = parseRef(fromRef)
	if err != nil {
		return CellRange{}, ErrInvalidAddress.WithDetails(address)
	}
	r.EndCol, r.EndRow, err = parseRef(toRef)
	if err != nil {
		return CellRange{}, ErrInvalidAddress.WithDetails(address)
	}

	if r.StartRow > r.EndRow {
		r.StartRow, r.EndRow = r.EndRow, r.StartRow
	}
	if r.StartCol > r.EndCol {
		r.StartCol, r.EndCol = r.EndCol, r.StartCol
	}
	return r, nil
}

// CellAt returns the single-cell range at the given 1-indexed position.
func CellAt(row, col int) CellRange {
	return CellRange{StartRow: row, StartCol: col, EndRow: row, EndCol: col}
}

// ColumnName converts a 1-indexed column number to Excel letters.
func ColumnName(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// ColumnNumber converts Excel column letters to a 1-indexed column number.
func ColumnNumber(letters string) int {
	col := 0
	for _, c := range strings.ToUpper(letters) {
		col = col*26 + int(c-'A'+1)
	}
	return col
}

func parseRef(ref string) (col, row int, err error) {
	m := cellRefRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(ref)))
	if m == nil {
		return 0, 0, ErrInvalidAddress
	}
	col = ColumnNumber(m[1])
	row, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, ErrInvalidAddress
	}
	if row < 1 || row > MaxRows || col < 1 || col > MaxColumns {
		return 0, 0, ErrInvalidAddress
	}
	return col, row, nil
}
