package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yndnr/xlremote-go/internal/core/domain"
	"github.com/yndnr/xlremote-go/internal/core/udf"
)

func newFunctionService(obs Observer) *FunctionService {
	reg := udf.NewRegistry("").MustRegister(udf.Builtins()...)
	return NewFunctionService(reg, "1.0.0", obs)
}

func TestFunctionService_MetaAndCode(t *testing.T) {
	svc := newFunctionService(nil)
	ctx := context.Background()

	if n := len(svc.Meta(ctx).Functions); n != svc.Count() {
		t.Errorf("meta has %d functions, Count() = %d", n, svc.Count())
	}

	code, err := svc.Code(ctx)
	if err != nil {
		t.Fatalf("Code() error = %v", err)
	}
	if !strings.Contains(string(code), `const xlremoteVersion = "1.0.0";`) {
		t.Error("code should embed the server version")
	}
}

func TestFunctionService_Call(t *testing.T) {
	obs := &recordingObserver{}
	svc := newFunctionService(obs)
	ctx := context.Background()

	got, err := svc.Call(ctx, &udf.CallRequest{FuncName: "HELLO", Args: []any{[]any{[]any{"you"}}}})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got[0][0] != "Hello you!" {
		t.Errorf("result = %v", got)
	}

	_, err = svc.Call(ctx, &udf.CallRequest{FuncName: "missing"})
	if !errors.Is(err, domain.ErrFunctionNotFound) {
		t.Errorf("Call(missing) error = %v, want ErrFunctionNotFound", err)
	}

	if len(obs.calls) != 1 || obs.calls[0] != "hello" {
		t.Errorf("observed calls = %v, want [hello]", obs.calls)
	}
	if len(obs.errs) != 1 {
		t.Errorf("observed %d errors, want 1", len(obs.errs))
	}
}
