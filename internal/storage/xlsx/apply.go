package xlsx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// ErrUnsupportedAction is returned for an action func this package does not
// know.
var ErrUnsupportedAction = errors.New("xlsx: unsupported action")

// Report summarizes a replay.
type Report struct {
	Applied int
	// Skipped lists actions that need a live client, such as alerts.
	Skipped []domain.Action
}

// Apply replays actions in order. It stops at the first failing action;
// the actions before it stay applied.
func (w *Workbook) Apply(actions []domain.Action) (Report, error) {
	var rep Report
	for i, a := range actions {
		skipped, err := w.apply(a)
		if err != nil {
			return rep, fmt.Errorf("xlsx: action %d (%s): %w", i, a.Func, err)
		}
		if skipped {
			rep.Skipped = append(rep.Skipped, a)
			continue
		}
		rep.Applied++
	}
	return rep, nil
}

func (w *Workbook) apply(a domain.Action) (skipped bool, err error) {
	switch a.Func {
	case domain.ActionAlert, domain.ActionRunMacro:
		return true, nil
	case domain.ActionAddSheet:
		_, err = w.f.NewSheet(argString(a, 0))
		return false, err
	case domain.ActionNamesAdd:
		return false, w.addName(argString(a, 0), strings.TrimPrefix(argString(a, 1), "="))
	}

	sheet, index, err := w.sheet(a)
	if err != nil {
		return false, err
	}

	switch a.Func {
	case domain.ActionSetSheetName:
		return false, w.f.SetSheetName(sheet, argString(a, 0))
	case domain.ActionActivateSheet:
		w.f.SetActiveSheet(index)
		return false, nil
	}

	topLeft, bottomRight, err := cellRange(a)
	if err != nil {
		return false, err
	}

	switch a.Func {
	case domain.ActionSetValues:
		return false, w.setValues(sheet, a)
	case domain.ActionClearContents:
		return false, w.clear(sheet, a)
	case domain.ActionSetRangeColor:
		style := &excelize.Style{}
		if color := argString(a, 0); color != "" {
			style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(color, "#")}}
		}
		return false, w.setStyle(sheet, topLeft, bottomRight, style)
	case domain.ActionSetNumberFormat:
		format := argString(a, 0)
		return false, w.setStyle(sheet, topLeft, bottomRight, &excelize.Style{CustomNumFmt: &format})
	case domain.ActionAddHyperlink:
		address, text, tip := argString(a, 0), argString(a, 1), argString(a, 2)
		if err := w.f.SetCellValue(sheet, topLeft, text); err != nil {
			return false, err
		}
		opts := excelize.HyperlinkOpts{Display: &text}
		if tip != "" {
			opts.Tooltip = &tip
		}
		return false, w.f.SetCellHyperLink(sheet, topLeft, address, "External", opts)
	}
	return false, fmt.Errorf("%w: %q", ErrUnsupportedAction, a.Func)
}

// sheet resolves the sheet position of a.
func (w *Workbook) sheet(a domain.Action) (name string, index int, err error) {
	if a.SheetPosition == nil {
		return "", 0, errors.New("missing sheet_position")
	}
	sheets := w.f.GetSheetList()
	index = *a.SheetPosition
	if index < 0 || index >= len(sheets) {
		return "", 0, fmt.Errorf("sheet_position %d out of range", index)
	}
	return sheets[index], index, nil
}

// cellRange returns the corner cells of the 0-based range of a.
func cellRange(a domain.Action) (topLeft, bottomRight string, err error) {
	if a.StartRow == nil || a.StartColumn == nil || a.RowCount == nil || a.ColumnCount == nil {
		return "", "", errors.New("missing range position")
	}
	if *a.RowCount < 1 || *a.ColumnCount < 1 {
		return "", "", fmt.Errorf("empty range %dx%d", *a.RowCount, *a.ColumnCount)
	}
	row, col := *a.StartRow+1, *a.StartColumn+1
	if topLeft, err = excelize.CoordinatesToCellName(col, row); err != nil {
		return "", "", err
	}
	bottomRight, err = excelize.CoordinatesToCellName(col+*a.ColumnCount-1, row+*a.RowCount-1)
	return topLeft, bottomRight, err
}

func (w *Workbook) setValues(sheet string, a domain.Action) error {
	for i, row := range a.Values {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(*a.StartColumn+1+j, *a.StartRow+1+i)
			if err != nil {
				return err
			}
			if err := w.f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Workbook) clear(sheet string, a domain.Action) error {
	for i := 0; i < *a.RowCount; i++ {
		for j := 0; j < *a.ColumnCount; j++ {
			cell, err := excelize.CoordinatesToCellName(*a.StartColumn+1+j, *a.StartRow+1+i)
			if err != nil {
				return err
			}
			if err := w.f.SetCellValue(sheet, cell, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// addName defines a book-scoped name, replacing an existing one that
// matches case-insensitively.
func (w *Workbook) addName(name, refersTo string) error {
	for _, dn := range w.f.GetDefinedName() {
		if dn.Scope == "Workbook" && strings.EqualFold(dn.Name, name) {
			if err := w.f.DeleteDefinedName(&excelize.DefinedName{Name: dn.Name}); err != nil {
				return err
			}
		}
	}
	return w.f.SetDefinedName(&excelize.DefinedName{Name: name, RefersTo: refersTo})
}

func (w *Workbook) setStyle(sheet, topLeft, bottomRight string, style *excelize.Style) error {
	id, err := w.f.NewStyle(style)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(sheet, topLeft, bottomRight, id)
}

func argString(a domain.Action, i int) string {
	if i >= len(a.Args) || a.Args[i] == nil {
		return ""
	}
	if s, ok := a.Args[i].(string); ok {
		return s
	}
	return fmt.Sprint(a.Args[i])
}
