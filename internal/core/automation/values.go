package automation

import (
	"time"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// dateTimeLayout is how time values travel to the clients.
const dateTimeLayout = "2006-01-02T15:04:05"

// normalizeValue converts v into a rectangular 2-D grid of cell values.
// scalar reports whether v was a single value.
func normalizeValue(v any) (grid [][]any, scalar bool, err error) {
	switch t := v.(type) {
	case [][]any:
		grid = make([][]any, len(t))
		for i, row := range t {
			if grid[i], err = normalizeRow(row); err != nil {
				return nil, false, err
			}
		}
	case []any:
		row, err := normalizeRow(t)
		if err != nil {
			return nil, false, err
		}
		grid = [][]any{row}
	case [][]string:
		grid = make([][]any, len(t))
		for i, row := range t {
			grid[i] = make([]any, len(row))
			for j, s := range row {
				grid[i][j] = s
			}
		}
	case []string:
		row := make([]any, len(t))
		for i, s := range t {
			row[i] = s
		}
		grid = [][]any{row}
	case [][]float64:
		grid = make([][]any, len(t))
		for i, row := range t {
			grid[i] = make([]any, len(row))
			for j, f := range row {
				grid[i][j] = f
			}
		}
	case []float64:
		row := make([]any, len(t))
		for i, f := range t {
			row[i] = f
		}
		grid = [][]any{row}
	default:
		cell, err := normalizeCell(v)
		if err != nil {
			return nil, false, err
		}
		return [][]any{{cell}}, true, nil
	}

	if len(grid) == 0 {
		return nil, false, domain.ErrInvalidValue.WithDetails("empty array")
	}
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, false, domain.ErrInvalidValue.WithDetails("empty array")
	}
	for i := range grid {
		for len(grid[i]) < width {
			grid[i] = append(grid[i], nil)
		}
	}
	return grid, false, nil
}

func normalizeRow(row []any) ([]any, error) {
	out := make([]any, len(row))
	for i, v := range row {
		c, err := normalizeCell(v)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// normalizeCell maps Go scalars onto the JSON cell types: string, float64,
// bool and nil. Times become ISO 8601 strings.
func normalizeCell(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case time.Time:
		return t.Format(dateTimeLayout), nil
	default:
		return nil, domain.ErrInvalidValue.WithDetailsf("unsupported cell type %T", v)
	}
}

func fill(v any, rows, cols int) [][]any {
	grid := make([][]any, rows)
	for i := range grid {
		grid[i] = make([]any, cols)
		for j := range grid[i] {
			grid[i][j] = v
		}
	}
	return grid
}

// Grid converts v into a rectangular 2-D array of cell values. A scalar
// becomes a 1x1 grid.
func Grid(v any) ([][]any, error) {
	grid, _, err := normalizeValue(v)
	return grid, err
}
