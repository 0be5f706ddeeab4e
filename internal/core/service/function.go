package service

import (
	"context"
	"time"

	"github.com/yndnr/xlremote-go/internal/core/udf"
	"github.com/yndnr/xlremote-go/internal/telemetry/logger"
)

// FunctionService serves custom functions from a registry.
type FunctionService struct {
	registry *udf.Registry
	version  string
	observer Observer
}

// NewFunctionService creates a FunctionService. version is embedded in the
// generated client code. observer may be nil.
func NewFunctionService(registry *udf.Registry, version string, observer Observer) *FunctionService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &FunctionService{
		registry: registry,
		version:  version,
		observer: observer,
	}
}

// Meta returns the custom functions metadata document.
func (s *FunctionService) Meta(ctx context.Context) udf.Meta {
	return s.registry.Meta()
}

// Code returns the JavaScript glue code for the registered functions.
func (s *FunctionService) Code(ctx context.Context) ([]byte, error) {
	return s.registry.Code(s.version)
}

// Call invokes a custom function and returns its 2-D result.
func (s *FunctionService) Call(ctx context.Context, req *udf.CallRequest) ([][]any, error) {
	start := time.Now()
	result, err := s.registry.Call(ctx, req)
	elapsed := time.Since(start)

	// Unknown names are not recorded to keep label cardinality bounded.
	if f, ok := s.registry.Lookup(req.FuncName); ok {
		s.observer.ObserveFunctionCall(f.Name, elapsed, err)
	}

	l := logger.L(ctx).With("function", req.FuncName, "caller", req.CallerAddress, "elapsed", elapsed)
	if err != nil {
		s.observer.ObserveError(err)
		l.Warn("custom function failed", "error", err)
		return nil, err
	}
	l.Debug("custom function called")
	return result, nil
}

// Count returns the number of registered functions.
func (s *FunctionService) Count() int {
	return len(s.registry.Funcs())
}
