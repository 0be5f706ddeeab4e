package udf

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// maxGeneratedCells caps the size of generated arrays.
const maxGeneratedCells = 1 << 20

// Builtins returns the sample functions shipped with the server.
func Builtins() []Func {
	return []Func{
		{
			Name:        "hello",
			Description: "Returns a greeting.",
			Params:      []Param{{Name: "name", Description: "Who to greet", Kind: Scalar}},
			Impl:        hello,
		},
		{
			Name:        "standard_normal",
			Description: "Returns an array of standard normally distributed pseudo random numbers.",
			Params: []Param{
				{Name: "rows", Description: "Number of rows", Kind: Scalar},
				{Name: "columns", Description: "Number of columns", Kind: Scalar},
			},
			Volatile: true,
			Impl:     standardNormal,
		},
		{
			Name:        "transpose",
			Description: "Swaps the rows and columns of a range.",
			Params:      []Param{{Name: "values", Description: "Range to transpose", Kind: Matrix}},
			Impl:        transpose,
		},
		{
			Name:            "caller_address",
			Description:     "Returns the address of the calling cell.",
			RequiresAddress: true,
			Impl:            callerAddress,
		},
	}
}

func hello(_ context.Context, args []any) (any, error) {
	return fmt.Sprintf("Hello %v!", cellText(args[0])), nil
}

func standardNormal(_ context.Context, args []any) (any, error) {
	rows, err := positiveInt("rows", args[0])
	if err != nil {
		return nil, err
	}
	cols, err := positiveInt("columns", args[1])
	if err != nil {
		return nil, err
	}
	if rows*cols > maxGeneratedCells {
		return nil, domain.ErrInvalidArguments.WithDetailsf("%d x %d exceeds %d cells", rows, cols, maxGeneratedCells)
	}

	out := make([][]any, rows)
	for i := range out {
		out[i] = make([]any, cols)
		for j := range out[i] {
			out[i][j] = rand.NormFloat64()
		}
	}
	return out, nil
}

func transpose(_ context.Context, args []any) (any, error) {
	m := args[0].([][]any)
	if len(m) == 0 {
		return [][]any{{nil}}, nil
	}
	width := 0
	for _, row := range m {
		width = max(width, len(row))
	}
	if width == 0 {
		return [][]any{{nil}}, nil
	}

	out := make([][]any, width)
	for j := range out {
		out[j] = make([]any, len(m))
		for i, row := range m {
			if j < len(row) {
				out[j][i] = row[j]
			}
		}
	}
	return out, nil
}

func callerAddress(ctx context.Context, _ []any) (any, error) {
	c, _ := CallerFromContext(ctx)
	return c.Address, nil
}

// cellText renders a cell the way a spreadsheet would show it: integral
// numbers without a fraction.
func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}

func positiveInt(name string, v any) (int, error) {
	f, ok := v.(float64)
	if !ok || f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, domain.ErrInvalidArguments.WithDetailsf("%s must be a positive whole number, got %v", name, v)
	}
	return int(f), nil
}
