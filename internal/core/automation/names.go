package automation

import (
	"regexp"
	"strings"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// definedNameRe follows Excel: a letter, underscore or backslash, then
// letters, digits, periods and underscores.
var definedNameRe = regexp.MustCompile(`^[\p{L}_\\][\p{L}\p{N}._\\]*$`)

// Names is the collection of defined names of a Book.
type Names struct {
	book *Book
}

// All returns a copy of the defined names.
func (n *Names) All() []domain.Name {
	return append([]domain.Name(nil), n.book.snap.Names...)
}

// Get looks up a defined name case-insensitively.
func (n *Names) Get(name string) (domain.Name, bool) {
	for _, dn := range n.book.snap.Names {
		if strings.EqualFold(dn.Name, name) {
			return dn, true
		}
	}
	return domain.Name{}, false
}

// Add defines a book-scoped name. refersTo is an address such as
// "=Sheet1!$A$1:$B$2"; the sheet must exist. An existing name is replaced.
func (n *Names) Add(name, refersTo string) error {
	if err := n.book.check(); err != nil {
		return err
	}
	if !definedNameRe.MatchString(name) {
		return domain.ErrInvalidName.WithDetails(name)
	}
	if _, err := domain.ParseRange(name); err == nil {
		return domain.ErrInvalidName.WithDetailsf("%s looks like a cell reference", name)
	}

	ref, err := domain.ParseRange(strings.TrimPrefix(refersTo, "="))
	if err != nil {
		return err
	}
	if ref.Sheet == "" {
		return domain.ErrInvalidAddress.WithDetailsf("%s must include a sheet name", refersTo)
	}
	sheetIndex := n.book.sheetIndex(ref.Sheet)
	if sheetIndex < 0 {
		return domain.ErrSheetNotFound.WithDetails(ref.Sheet)
	}

	dn := domain.Name{
		Name:       name,
		SheetIndex: sheetIndex,
		Address:    ref.String(),
		BookScope:  true,
	}
	names := n.book.snap.Names
	replaced := false
	for i := range names {
		if strings.EqualFold(names[i].Name, name) {
			names[i] = dn
			replaced = true
		}
	}
	if !replaced {
		n.book.snap.Names = append(names, dn)
	}

	n.book.record(domain.NewBookAction(domain.ActionNamesAdd, name, refersTo))
	return nil
}
