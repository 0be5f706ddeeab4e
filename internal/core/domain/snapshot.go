package domain

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the JSON representation of a workbook exchanged with a
// spreadsheet client. The client posts it with every request; the server
// returns it with mutations applied and the list of actions to replay.
type Snapshot struct {
	Client  string   `json:"client"`
	Version string   `json:"version"`
	Book    BookInfo `json:"book"`
	Names   []Name   `json:"names"`
	Sheets  []Sheet  `json:"sheets"`
	Actions []Action `json:"actions"`
}

// BookInfo describes the workbook as a whole.
type BookInfo struct {
	Name             string `json:"name"`
	ActiveSheetIndex int    `json:"active_sheet_index"`
	Selection        string `json:"selection,omitempty"`
}

// Name is a defined name.
type Name struct {
	Name       string `json:"name"`
	SheetIndex int    `json:"sheet_index"`
	Address    string `json:"address"`
	BookScope  bool   `json:"book_scope"`
}

// Sheet is a worksheet. Values holds the used range anchored at A1.
type Sheet struct {
	Name     string    `json:"name"`
	Values   [][]any   `json:"values"`
	Pictures []Picture `json:"pictures,omitempty"`
	Tables   []Table   `json:"tables,omitempty"`
}

// Picture is an image placed on a sheet.
type Picture struct {
	Name   string  `json:"name"`
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// Table is an Excel table (ListObject).
type Table struct {
	Name                  string `json:"name"`
	RangeAddress          string `json:"range_address"`
	HeaderRowRangeAddress string `json:"header_row_range_address,omitempty"`
	DataBodyRangeAddress  string `json:"data_body_range_address,omitempty"`
	TotalRowRangeAddress  string `json:"total_row_range_address,omitempty"`
	ShowHeaders           bool   `json:"show_headers"`
	ShowTotals            bool   `json:"show_totals"`
	TableStyle            string `json:"table_style,omitempty"`
	ShowAutofilter        bool   `json:"show_autofilter"`
}

// DecodeSnapshot parses and validates a snapshot from JSON.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, ErrBadRequest.WithDetails("malformed book snapshot").WithCause(err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Validate checks the structural integrity of the snapshot.
func (s *Snapshot) Validate() error {
	for i, sh := range s.Sheets {
		if sh.Name == "" {
			return ErrBadRequest.WithDetailsf("sheet %d has no name", i)
		}
	}
	if len(s.Sheets) > 0 && (s.Book.ActiveSheetIndex < 0 || s.Book.ActiveSheetIndex >= len(s.Sheets)) {
		return ErrBadRequest.WithDetailsf("active_sheet_index %d out of range", s.Book.ActiveSheetIndex)
	}
	for _, n := range s.Names {
		if n.Name == "" {
			return ErrBadRequest.WithDetails("defined name without name")
		}
	}
	return nil
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := &Snapshot{
		Client:  s.Client,
		Version: s.Version,
		Book:    s.Book,
	}
	if s.Names != nil {
		c.Names = append([]Name(nil), s.Names...)
	}
	if s.Sheets != nil {
		c.Sheets = make([]Sheet, len(s.Sheets))
		for i, sh := range s.Sheets {
			c.Sheets[i] = sh.Clone()
		}
	}
	if s.Actions != nil {
		c.Actions = append([]Action(nil), s.Actions...)
	}
	return c
}

// Clone returns a deep copy of the sheet.
func (s Sheet) Clone() Sheet {
	c := Sheet{Name: s.Name}
	if s.Values != nil {
		c.Values = make([][]any, len(s.Values))
		for i, row := range s.Values {
			c.Values[i] = append([]any(nil), row...)
		}
	}
	if s.Pictures != nil {
		c.Pictures = append([]Picture(nil), s.Pictures...)
	}
	if s.Tables != nil {
		c.Tables = append([]Table(nil), s.Tables...)
	}
	return c
}

// Dimensions returns the number of rows and the widest row of the used range.
func (s Sheet) Dimensions() (rows, cols int) {
	rows = len(s.Values)
	for _, r := range s.Values {
		if len(r) > cols {
			cols = len(r)
		}
	}
	return rows, cols
}

// String implements fmt.Stringer for log output.
func (s *Snapshot) String() string {
	return fmt.Sprintf("book=%q client=%q version=%q sheets=%d", s.Book.Name, s.Client, s.Version, len(s.Sheets))
}
