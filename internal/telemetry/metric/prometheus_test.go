package metric

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/xlremote-go/internal/core/domain"
	"github.com/yndnr/xlremote-go/internal/infra/buildinfo"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("registry field is nil")
	}
	if r.RequestsTotal == nil || r.ActionsTotal == nil || r.FunctionCalls == nil {
		t.Error("metric vectors should be initialized")
	}
}

func TestGlobal(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() should return the same instance")
	}
}

func TestHandler(t *testing.T) {
	body := scrape(t, Global())

	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process metrics")
	}
}

func TestRequestMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordRequest("POST", "/hello", "200")
	r.RecordRequest("POST", "/hello", "200")
	r.ObserveRequestDuration("POST", "/hello", 0.004)
	r.IncRateLimited()

	body := scrape(t, r)
	if !strings.Contains(body, `xlremote_requests_total{method="POST",route="/hello",status="200"} 2`) {
		t.Error("expected xlremote_requests_total for POST /hello")
	}
	if !strings.Contains(body, "xlremote_request_duration_seconds_count") {
		t.Error("expected xlremote_request_duration_seconds_count")
	}
	if !strings.Contains(body, "xlremote_rate_limited_total 1") {
		t.Error("expected xlremote_rate_limited_total 1")
	}
}

func TestAutomationMetrics(t *testing.T) {
	r := NewRegistry()

	r.ObserveActions([]domain.Action{
		domain.NewSheetAction(domain.ActionSetSheetName, 0, "A"),
		domain.NewSheetAction(domain.ActionSetSheetName, 1, "B"),
		domain.NewBookAction(domain.ActionAlert),
	})
	r.ObserveError(domain.ErrSheetIndex.WithDetails("index 3"))
	r.ObserveError(errors.New("not an automation error"))
	r.ObserveError(domain.ErrBadRequest)

	body := scrape(t, r)
	if !strings.Contains(body, `xlremote_actions_total{func="setSheetName"} 2`) {
		t.Error("expected two setSheetName actions")
	}
	if !strings.Contains(body, `xlremote_actions_total{func="alert"} 1`) {
		t.Error("expected one alert action")
	}
	if !strings.Contains(body, `xlremote_automation_errors_total{code="XL-AUTO-5002"} 1`) {
		t.Error("expected one XL-AUTO-5002 error")
	}
	if strings.Contains(body, `code="XL-SYS-4000"`) {
		t.Error("non-automation errors should not be counted")
	}
}

func TestFunctionMetrics(t *testing.T) {
	r := NewRegistry()

	r.ObserveFunctionCall("hello", 2*time.Millisecond, nil)
	r.ObserveFunctionCall("hello", time.Millisecond, errors.New("boom"))

	body := scrape(t, r)
	if !strings.Contains(body, `xlremote_function_calls_total{function="hello",result="ok"} 1`) {
		t.Error("expected one successful hello call")
	}
	if !strings.Contains(body, `xlremote_function_calls_total{function="hello",result="error"} 1`) {
		t.Error("expected one failed hello call")
	}
	if !strings.Contains(body, `xlremote_function_duration_seconds_count{function="hello"} 2`) {
		t.Error("expected two hello duration samples")
	}
}

func TestCollector(t *testing.T) {
	r := NewRegistry()
	info := buildinfo.Info{Version: "1.2.3", Commit: "abc", GoVersion: "go1.24"}
	r.MustRegister(NewCollector(info, func() int { return 4 }))

	body := scrape(t, r)
	if !strings.Contains(body, `xlremote_build_info{commit="abc",go_version="go1.24",version="1.2.3"} 1`) {
		t.Error("expected xlremote_build_info")
	}
	if !strings.Contains(body, "xlremote_custom_functions 4") {
		t.Error("expected xlremote_custom_functions 4")
	}
}
