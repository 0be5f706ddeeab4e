package udf

import (
	"context"
	"errors"

	"github.com/yndnr/xlremote-go/internal/core/automation"
	"github.com/yndnr/xlremote-go/internal/core/domain"
)

// CallRequest is the body posted by the generated code.
type CallRequest struct {
	FuncName      string `json:"func_name"`
	Args          []any  `json:"args"`
	CallerAddress string `json:"caller_address"`
	FormulaName   string `json:"formula_name"`
	Version       string `json:"version"`
	Runtime       string `json:"runtime"`
	CultureInfo   any    `json:"culture_info"`
}

// Caller identifies the cell a function is evaluated for.
type Caller struct {
	Address     string
	FormulaName string
	Runtime     string
}

type callerKey struct{}

// WithCaller returns a context carrying the caller.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

// Call looks up the requested function, converts the arguments and
// invokes it. The result is always a 2-D array.
func (r *Registry) Call(ctx context.Context, req *CallRequest) ([][]any, error) {
	f, ok := r.Lookup(req.FuncName)
	if !ok {
		return nil, domain.ErrFunctionNotFound.WithDetails(req.FuncName)
	}

	args, err := convertArgs(f, req.Args)
	if err != nil {
		return nil, err
	}

	ctx = WithCaller(ctx, Caller{
		Address:     req.CallerAddress,
		FormulaName: req.FormulaName,
		Runtime:     req.Runtime,
	})
	ret, err := f.Impl(ctx, args)
	if err != nil {
		if domain.IsAutomationError(err) {
			return nil, err
		}
		return nil, domain.ErrFunctionFailed.WithDetailsf("%s: %v", f.Name, err).WithCause(err)
	}

	result, err := automation.Grid(ret)
	if err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return nil, domain.ErrFunctionFailed.WithDetailsf("%s returned %s", f.Name, de.Details)
		}
		return nil, err
	}
	return result, nil
}

// convertArgs maps the 2-D arguments sent by the client onto the declared
// parameters. Omitted optional parameters are nil.
func convertArgs(f *Func, raw []any) ([]any, error) {
	if len(raw) > len(f.Params) {
		return nil, domain.ErrInvalidArguments.WithDetailsf("%s takes %d arguments, got %d", f.Name, len(f.Params), len(raw))
	}

	args := make([]any, len(f.Params))
	for i, p := range f.Params {
		if i >= len(raw) || raw[i] == nil {
			if !p.Optional {
				return nil, domain.ErrInvalidArguments.WithDetailsf("%s: missing argument %s", f.Name, p.Name)
			}
			continue
		}
		m := toMatrix(raw[i])
		if p.Kind == Matrix {
			args[i] = m
			continue
		}
		if len(m) == 0 || len(m[0]) == 0 {
			if !p.Optional {
				return nil, domain.ErrInvalidArguments.WithDetailsf("%s: argument %s is empty", f.Name, p.Name)
			}
			continue
		}
		args[i] = m[0][0]
	}
	return args, nil
}

// toMatrix turns a decoded JSON argument into [][]any. Values that are not
// nested arrays are wrapped.
func toMatrix(v any) [][]any {
	rows, ok := v.([]any)
	if !ok {
		return [][]any{{v}}
	}
	out := make([][]any, len(rows))
	for i, row := range rows {
		if cells, ok := row.([]any); ok {
			out[i] = cells
		} else {
			out[i] = []any{row}
		}
	}
	return out
}
