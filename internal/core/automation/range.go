package automation

import (
	"regexp"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Range is a rectangular block of cells on a Sheet.
type Range struct {
	sheet *Sheet
	ref   domain.CellRange
}

// Sheet returns the sheet the range belongs to.
func (r *Range) Sheet() *Sheet {
	return r.sheet
}

// Address returns the A1 address of the range without sheet qualifier.
func (r *Range) Address() string {
	return r.ref.String()
}

// Shape returns the number of rows and columns of the range.
func (r *Range) Shape() (rows, cols int) {
	return r.ref.Rows(), r.ref.Cols()
}

// Value returns the scalar value of a single-cell range, or the 2-D values
// of a larger range. Cells outside the sheet's used range are nil.
func (r *Range) Value() any {
	if r.ref.IsCell() {
		return r.cell(r.ref.StartRow, r.ref.StartCol)
	}
	return r.Values()
}

// Values returns the range as a 2-D array.
func (r *Range) Values() [][]any {
	out := make([][]any, r.ref.Rows())
	for i := range out {
		out[i] = make([]any, r.ref.Cols())
		for j := range out[i] {
			out[i][j] = r.cell(r.ref.StartRow+i, r.ref.StartCol+j)
		}
	}
	return out
}

// SetValue writes v into the sheet.
//
// A scalar fills every cell of the range. A 1-D or 2-D value is written
// anchored at the top-left cell and may extend beyond the range.
func (r *Range) SetValue(v any) error {
	if err := r.sheet.book.check(); err != nil {
		return err
	}
	grid, scalar, err := normalizeValue(v)
	if err != nil {
		return err
	}

	target := r.ref
	if scalar {
		grid = fill(grid[0][0], target.Rows(), target.Cols())
	} else {
		target.EndRow = target.StartRow + len(grid) - 1
		target.EndCol = target.StartCol + len(grid[0]) - 1
		if target.EndRow > domain.MaxRows || target.EndCol > domain.MaxColumns {
			return domain.ErrInvalidValue.WithDetailsf("%d x %d values do not fit at %s", len(grid), len(grid[0]), r.Address())
		}
	}

	r.sheet.ensureSize(target.EndRow, target.EndCol)
	values := r.sheet.data().Values
	for i, row := range grid {
		copy(values[target.StartRow-1+i][target.StartCol-1:], row)
	}

	r.sheet.book.record(rangeAction(domain.ActionSetValues, r.sheet, target, grid))
	return nil
}

// ClearContents removes the values of the range.
func (r *Range) ClearContents() error {
	if err := r.sheet.book.check(); err != nil {
		return err
	}
	values := r.sheet.data().Values
	for row := r.ref.StartRow; row <= r.ref.EndRow && row <= len(values); row++ {
		cells := values[row-1]
		for col := r.ref.StartCol; col <= r.ref.EndCol && col <= len(cells); col++ {
			cells[col-1] = nil
		}
	}
	r.sheet.book.record(rangeAction(domain.ActionClearContents, r.sheet, r.ref, nil))
	return nil
}

// SetColor sets the fill color as "#RRGGBB". An empty color removes it.
func (r *Range) SetColor(color string) error {
	if err := r.sheet.book.check(); err != nil {
		return err
	}
	if color != "" && !hexColorRe.MatchString(color) {
		return domain.ErrInvalidValue.WithDetailsf("color %q is not #RRGGBB", color)
	}
	var arg any = color
	if color == "" {
		arg = nil
	}
	r.sheet.book.record(rangeAction(domain.ActionSetRangeColor, r.sheet, r.ref, nil, arg))
	return nil
}

// SetNumberFormat sets the Excel number format of the range.
func (r *Range) SetNumberFormat(format string) error {
	if err := r.sheet.book.check(); err != nil {
		return err
	}
	r.sheet.book.record(rangeAction(domain.ActionSetNumberFormat, r.sheet, r.ref, nil, format))
	return nil
}

// AddHyperlink turns the top-left cell into a link. The cell shows text,
// or the address when text is empty.
func (r *Range) AddHyperlink(address, text, screenTip string) error {
	if err := r.sheet.book.check(); err != nil {
		return err
	}
	if address == "" {
		return domain.ErrInvalidValue.WithDetails("hyperlink address is empty")
	}
	if text == "" {
		text = address
	}

	cell := domain.CellAt(r.ref.StartRow, r.ref.StartCol)
	r.sheet.ensureSize(cell.EndRow, cell.EndCol)
	r.sheet.data().Values[cell.StartRow-1][cell.StartCol-1] = text

	r.sheet.book.record(rangeAction(domain.ActionAddHyperlink, r.sheet, cell, nil, address, text, screenTip))
	return nil
}

func (r *Range) cell(row, col int) any {
	values := r.sheet.data().Values
	if row > len(values) || col > len(values[row-1]) {
		return nil
	}
	return values[row-1][col-1]
}

func rangeAction(fn string, s *Sheet, ref domain.CellRange, values [][]any, args ...any) domain.Action {
	a := domain.NewRangeAction(fn, s.index, ref, args...)
	a.Values = values
	return a
}
