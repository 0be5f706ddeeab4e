package domain

// Action funcs understood by the spreadsheet clients.
const (
	ActionSetValues       = "setValues"
	ActionClearContents   = "clearContents"
	ActionAddSheet        = "addSheet"
	ActionSetSheetName    = "setSheetName"
	ActionActivateSheet   = "activateSheet"
	ActionSetRangeColor   = "setRangeColor"
	ActionSetNumberFormat = "setNumberFormat"
	ActionAddHyperlink    = "addHyperlink"
	ActionNamesAdd        = "namesAdd"
	ActionAlert           = "alert"
	ActionRunMacro        = "runMacro"
)

// Action is a single mutation the client replays on the live workbook.
//
// Positions are 0-based. Book-level actions leave the positional fields nil,
// which serializes as JSON null.
type Action struct {
	Func          string  `json:"func"`
	Args          []any   `json:"args"`
	Values        [][]any `json:"values"`
	SheetPosition *int    `json:"sheet_position"`
	StartRow      *int    `json:"start_row"`
	StartColumn   *int    `json:"start_column"`
	RowCount      *int    `json:"row_count"`
	ColumnCount   *int    `json:"column_count"`
}

// NewBookAction creates an action that is not tied to a sheet or range.
func NewBookAction(fn string, args ...any) Action {
	if args == nil {
		args = []any{}
	}
	return Action{Func: fn, Args: args}
}

// NewSheetAction creates an action addressing a whole sheet.
func NewSheetAction(fn string, sheet int, args ...any) Action {
	a := NewBookAction(fn, args...)
	a.SheetPosition = intPtr(sheet)
	return a
}

// NewRangeAction creates an action addressing a rectangular range.
// r is expected to be a 1-indexed CellRange; it is converted to 0-based.
func NewRangeAction(fn string, sheet int, r CellRange, args ...any) Action {
	a := NewSheetAction(fn, sheet, args...)
	a.StartRow = intPtr(r.StartRow - 1)
	a.StartColumn = intPtr(r.StartCol - 1)
	a.RowCount = intPtr(r.Rows())
	a.ColumnCount = intPtr(r.Cols())
	return a
}

func intPtr(v int) *int {
	return &v
}
