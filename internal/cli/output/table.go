package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Tabular is implemented by results with their own table layout.
type Tabular interface {
	Table() *Table
}

// TableFormatter formats data as an aligned text table.
type TableFormatter struct {
	NoHeaders bool
}

// Format formats data as a table. It understands *Table, Tabular, 2-D cell
// grids and string-keyed maps; anything else is printed as JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	var t *Table
	switch v := data.(type) {
	case nil:
		return nil
	case *Table:
		t = v
	case Table:
		t = &v
	case Tabular:
		t = v.Table()
	case [][]any:
		t = Grid(v)
	case map[string]any:
		t = keyValues(v)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		t = keyValues(m)
	default:
		return (&JSONFormatter{}).Format(w, data)
	}
	return t.RenderWithOptions(w, f.NoHeaders)
}

// Grid builds a headerless table from cell values.
func Grid(values [][]any) *Table {
	t := &Table{}
	for _, row := range values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = Cell(v)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func keyValues(m map[string]any) *Table {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := &Table{Headers: []string{"KEY", "VALUE"}}
	for _, k := range keys {
		t.AddRow(k, Cell(m[k]))
	}
	return t
}

// Cell formats a single value for a table cell.
func Cell(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		if t == "" {
			return "-"
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case *int:
		if t == nil {
			return "-"
		}
		return strconv.Itoa(*t)
	case fmt.Stringer:
		return t.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table, optionally without the header row.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
