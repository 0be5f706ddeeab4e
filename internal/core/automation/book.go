package automation

import (
	"strconv"
	"strings"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// Option configures how a Book is opened.
type Option func(*options)

type options struct {
	clientVersion string
}

// WithClientVersion requires the snapshot to carry exactly this client
// version. An empty version disables the check.
func WithClientVersion(version string) Option {
	return func(o *options) {
		o.clientVersion = version
	}
}

// Book is a workbook opened from a snapshot.
//
// A Book is not safe for concurrent use; it lives for the duration of a
// single request.
type Book struct {
	snap   *domain.Snapshot
	closed bool
}

// Open creates a Book over a private copy of snap. Actions carried by the
// incoming snapshot are discarded.
func Open(snap *domain.Snapshot, opts ...Option) (*Book, error) {
	if snap == nil {
		return nil, domain.ErrBadRequest.WithDetails("empty book snapshot")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.clientVersion != "" && snap.Version != o.clientVersion {
		return nil, domain.ErrVersionMismatch.WithDetailsf("client is %q, server is %q", snap.Version, o.clientVersion)
	}

	if err := snap.Validate(); err != nil {
		return nil, err
	}

	c := snap.Clone()
	c.Actions = []domain.Action{}
	if c.Names == nil {
		c.Names = []domain.Name{}
	}
	if c.Sheets == nil {
		c.Sheets = []domain.Sheet{}
	}
	return &Book{snap: c}, nil
}

// With opens a Book, runs fn and always releases the book afterwards.
// It returns the resulting snapshot, including the recorded actions.
func With(snap *domain.Snapshot, fn func(*Book) error, opts ...Option) (*domain.Snapshot, error) {
	b, err := Open(snap, opts...)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if err := fn(b); err != nil {
		return nil, err
	}
	return b.JSON()
}

// Close releases the book. Any later use returns ErrBookClosed.
func (b *Book) Close() error {
	b.closed = true
	return nil
}

// JSON returns a copy of the current snapshot with the recorded actions.
func (b *Book) JSON() (*domain.Snapshot, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	return b.snap.Clone(), nil
}

// Actions returns the actions recorded so far.
func (b *Book) Actions() []domain.Action {
	return append([]domain.Action(nil), b.snap.Actions...)
}

// Name returns the workbook name.
func (b *Book) Name() string {
	return b.snap.Book.Name
}

// Sheets returns all sheets in workbook order.
func (b *Book) Sheets() []*Sheet {
	sheets := make([]*Sheet, len(b.snap.Sheets))
	for i := range b.snap.Sheets {
		sheets[i] = &Sheet{book: b, index: i}
	}
	return sheets
}

// Sheet returns the sheet at the 0-based index.
func (b *Book) Sheet(index int) (*Sheet, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(b.snap.Sheets) {
		return nil, domain.ErrSheetIndex.WithDetailsf("index %d, book has %d sheets", index, len(b.snap.Sheets))
	}
	return &Sheet{book: b, index: index}, nil
}

// SheetByName returns the sheet with the given name (case-insensitive).
func (b *Book) SheetByName(name string) (*Sheet, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if i := b.sheetIndex(name); i >= 0 {
		return &Sheet{book: b, index: i}, nil
	}
	return nil, domain.ErrSheetNotFound.WithDetails(name)
}

// ActiveSheet returns the sheet that is active in the client.
func (b *Book) ActiveSheet() (*Sheet, error) {
	return b.Sheet(b.snap.Book.ActiveSheetIndex)
}

// AddSheet appends a new empty sheet. An empty name picks the next free
// "SheetN" name.
func (b *Book) AddSheet(name string) (*Sheet, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if name == "" {
		name = b.nextSheetName()
	}
	if err := validateSheetName(name); err != nil {
		return nil, err
	}
	if b.sheetIndex(name) >= 0 {
		return nil, domain.ErrDuplicateSheetName.WithDetails(name)
	}

	b.snap.Sheets = append(b.snap.Sheets, domain.Sheet{Name: name, Values: [][]any{}})
	index := len(b.snap.Sheets) - 1
	b.record(domain.NewSheetAction(domain.ActionAddSheet, index, name))
	return &Sheet{book: b, index: index}, nil
}

// Selection returns the range selected in the client, on the active sheet.
func (b *Book) Selection() (*Range, error) {
	sheet, err := b.ActiveSheet()
	if err != nil {
		return nil, err
	}
	if b.snap.Book.Selection == "" {
		return nil, domain.ErrInvalidAddress.WithDetails("book has no selection")
	}
	return sheet.Range(b.snap.Book.Selection)
}

// Names returns the defined names collection.
func (b *Book) Names() *Names {
	return &Names{book: b}
}

// App returns the application hosting the book.
func (b *Book) App() *App {
	return &App{book: b}
}

func (b *Book) check() error {
	if b.closed {
		return domain.ErrBookClosed
	}
	return nil
}

func (b *Book) record(a domain.Action) {
	b.snap.Actions = append(b.snap.Actions, a)
}

func (b *Book) sheetIndex(name string) int {
	for i, sh := range b.snap.Sheets {
		if strings.EqualFold(sh.Name, name) {
			return i
		}
	}
	return -1
}

func (b *Book) nextSheetName() string {
	for n := len(b.snap.Sheets) + 1; ; n++ {
		name := "Sheet" + strconv.Itoa(n)
		if b.sheetIndex(name) < 0 {
			return name
		}
	}
}
