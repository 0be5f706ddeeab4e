package automation

import (
	"strings"
	"unicode/utf8"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// maxSheetNameLen is the longest sheet name Excel accepts.
const maxSheetNameLen = 31

// Sheet is a worksheet of an open Book.
type Sheet struct {
	book  *Book
	index int
}

// Name returns the sheet name.
func (s *Sheet) Name() string {
	return s.data().Name
}

// Index returns the 0-based position of the sheet in the book.
func (s *Sheet) Index() int {
	return s.index
}

// Book returns the book the sheet belongs to.
func (s *Sheet) Book() *Book {
	return s.book
}

// SetName renames the sheet. Names are unique case-insensitively, so
// changing only the case of a sheet's own name is allowed.
func (s *Sheet) SetName(name string) error {
	if err := s.book.check(); err != nil {
		return err
	}
	if err := validateSheetName(name); err != nil {
		return err
	}
	if i := s.book.sheetIndex(name); i >= 0 && i != s.index {
		return domain.ErrDuplicateSheetName.WithDetails(name)
	}

	s.data().Name = name
	s.book.record(domain.NewSheetAction(domain.ActionSetSheetName, s.index, name))
	return nil
}

// Activate makes the sheet the active one.
func (s *Sheet) Activate() error {
	if err := s.book.check(); err != nil {
		return err
	}
	s.book.snap.Book.ActiveSheetIndex = s.index
	s.book.record(domain.NewSheetAction(domain.ActionActivateSheet, s.index))
	return nil
}

// Range returns the range at an A1 address. A sheet qualifier, if present,
// must name this sheet.
func (s *Sheet) Range(address string) (*Range, error) {
	if err := s.book.check(); err != nil {
		return nil, err
	}
	ref, err := domain.ParseRange(address)
	if err != nil {
		return nil, err
	}
	if ref.Sheet != "" && !strings.EqualFold(ref.Sheet, s.Name()) {
		return nil, domain.ErrInvalidAddress.WithDetailsf("%s does not refer to sheet %q", address, s.Name())
	}
	ref.Sheet = ""
	return &Range{sheet: s, ref: ref}, nil
}

// Cell returns the single cell at the 1-indexed row and column.
func (s *Sheet) Cell(row, col int) (*Range, error) {
	if row < 1 || row > domain.MaxRows || col < 1 || col > domain.MaxColumns {
		return nil, domain.ErrInvalidAddress.WithDetailsf("row %d, column %d", row, col)
	}
	return &Range{sheet: s, ref: domain.CellAt(row, col)}, nil
}

// UsedRange returns the range covered by the sheet's values, at least A1.
func (s *Sheet) UsedRange() *Range {
	rows, cols := s.data().Dimensions()
	ref := domain.CellAt(1, 1)
	if rows > 0 && cols > 0 {
		ref.EndRow, ref.EndCol = rows, cols
	}
	return &Range{sheet: s, ref: ref}
}

func (s *Sheet) data() *domain.Sheet {
	return &s.book.snap.Sheets[s.index]
}

// ensureSize grows the value grid so that it covers rows x cols while
// keeping every row the same width.
func (s *Sheet) ensureSize(rows, cols int) {
	sh := s.data()
	_, curCols := sh.Dimensions()
	if cols < curCols {
		cols = curCols
	}
	for len(sh.Values) < rows {
		sh.Values = append(sh.Values, nil)
	}
	for i := range sh.Values {
		for len(sh.Values[i]) < cols {
			sh.Values[i] = append(sh.Values[i], nil)
		}
	}
}

func validateSheetName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > maxSheetNameLen {
		return domain.ErrInvalidSheetName.WithDetailsf("%q must be 1 to %d characters", name, maxSheetNameLen)
	}
	if strings.ContainsAny(name, `[]:*?/\`) {
		return domain.ErrInvalidSheetName.WithDetailsf(`%q contains one of []:*?/\`, name)
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return domain.ErrInvalidSheetName.WithDetailsf("%q starts or ends with an apostrophe", name)
	}
	if strings.EqualFold(name, "History") {
		return domain.ErrInvalidSheetName.WithDetailsf("%q is reserved", name)
	}
	return nil
}
