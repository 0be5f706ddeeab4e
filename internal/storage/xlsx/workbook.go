package xlsx

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// ClientName identifies snapshots built from files.
const ClientName = "CLI"

// ErrNoSheets is returned for a workbook without worksheets.
var ErrNoSheets = errors.New("xlsx: workbook has no sheets")

// Workbook is an open .xlsx file. It is not safe for concurrent use.
type Workbook struct {
	f    *excelize.File
	path string
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %s: %w", path, err)
	}
	return &Workbook{f: f, path: path}, nil
}

// New creates an empty workbook with a single sheet named Sheet1. path is
// used as the book name and by Save.
func New(path string) *Workbook {
	return &Workbook{f: excelize.NewFile(), path: path}
}

// Close releases the file.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Save writes the workbook back to the path it was opened from.
func (w *Workbook) Save() error {
	return w.SaveAs(w.path)
}

// SaveAs writes the workbook to path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx: save %s: %w", path, err)
	}
	return nil
}

// Snapshot builds the snapshot of the workbook. version is sent as the
// client version.
func (w *Workbook) Snapshot(version string) (*domain.Snapshot, error) {
	sheetNames := w.f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, ErrNoSheets
	}

	snap := &domain.Snapshot{
		Client:  ClientName,
		Version: version,
		Book: domain.BookInfo{
			Name:             filepath.Base(w.path),
			ActiveSheetIndex: w.activeSheetIndex(len(sheetNames)),
			Selection:        "A1",
		},
		Names:   []domain.Name{},
		Sheets:  make([]domain.Sheet, 0, len(sheetNames)),
		Actions: []domain.Action{},
	}

	for _, name := range sheetNames {
		values, err := w.values(name)
		if err != nil {
			return nil, err
		}
		tables, err := w.tables(name)
		if err != nil {
			return nil, err
		}
		snap.Sheets = append(snap.Sheets, domain.Sheet{
			Name:     name,
			Values:   values,
			Pictures: []domain.Picture{},
			Tables:   tables,
		})
	}

	snap.Names = w.names(sheetNames)
	return snap, nil
}

func (w *Workbook) activeSheetIndex(sheets int) int {
	i := w.f.GetActiveSheetIndex()
	if i < 0 || i >= sheets {
		return 0
	}
	return i
}

// values returns the used range of sheet anchored at A1 as a rectangular
// grid. Numbers become float64 and booleans bool.
func (w *Workbook) values(sheet string) ([][]any, error) {
	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %s: %w", sheet, err)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return [][]any{}, nil
	}

	grid := make([][]any, len(rows))
	for r, row := range rows {
		grid[r] = make([]any, width)
		for c, raw := range row {
			if raw == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			typ, err := w.f.GetCellType(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("xlsx: cell type %s!%s: %w", sheet, cell, err)
			}
			grid[r][c] = cellValue(typ, raw)
		}
	}
	return grid, nil
}

func cellValue(typ excelize.CellType, raw string) any {
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

func (w *Workbook) tables(sheet string) ([]domain.Table, error) {
	tables, err := w.f.GetTables(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: tables of %s: %w", sheet, err)
	}
	out := make([]domain.Table, 0, len(tables))
	for _, t := range tables {
		showHeaders := t.ShowHeaderRow == nil || *t.ShowHeaderRow
		out = append(out, domain.Table{
			Name:           t.Name,
			RangeAddress:   t.Range,
			ShowHeaders:    showHeaders,
			TableStyle:     t.StyleName,
			ShowAutofilter: showHeaders,
		})
	}
	return out, nil
}

// names converts the defined names that refer to a single range. Formulas,
// constants and multi-area names are left out.
func (w *Workbook) names(sheetNames []string) []domain.Name {
	out := []domain.Name{}
	for _, dn := range w.f.GetDefinedName() {
		ref, err := domain.ParseRange(strings.TrimPrefix(dn.RefersTo, "="))
		if err != nil || ref.Sheet == "" {
			continue
		}
		index := indexFold(sheetNames, ref.Sheet)
		if index < 0 {
			continue
		}
		ref.Sheet = ""
		out = append(out, domain.Name{
			Name:       dn.Name,
			SheetIndex: index,
			Address:    ref.String(),
			BookScope:  dn.Scope == "" || dn.Scope == "Workbook",
		})
	}
	return out
}

func indexFold(list []string, s string) int {
	for i, v := range list {
		if strings.EqualFold(v, s) {
			return i
		}
	}
	return -1
}
