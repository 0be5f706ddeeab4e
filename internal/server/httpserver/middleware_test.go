package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/xlremote-go/internal/core/service"
	"github.com/yndnr/xlremote-go/internal/telemetry/logger"
	"github.com/yndnr/xlremote-go/internal/telemetry/metric"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
})

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v: %s", err, rec.Body.String())
	}
	return body
}

func TestChain(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler, mw("first"), mw("second"), mw("third"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(order, ","); got != "first,second,third" {
		t.Errorf("order = %s, want first,second,third", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
		if _, ok := r.Context().Value(ContextKeyStartTime).(time.Time); !ok {
			t.Error("start time missing from context")
		}
	}))

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated", "", false},
		{"client supplied", "req-123", true},
		{"with space", "bad id", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			header := rec.Header().Get("X-Request-ID")
			if header != seen {
				t.Errorf("header %q != context %q", header, seen)
			}
			if tt.keep {
				if header != tt.incoming {
					t.Errorf("request id = %q, want %q", header, tt.incoming)
				}
				return
			}
			if _, err := ulid.Parse(header); err != nil {
				t.Errorf("request id %q is not a ULID: %v", header, err)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), RequestID(), Recover(logger.Nop()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hello", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["code"] != "XL-SYS-5000" {
		t.Errorf("code = %v, want XL-SYS-5000", body["code"])
	}
	if body["request_id"] != rec.Header().Get("X-Request-ID") {
		t.Errorf("request_id = %v, want %s", body["request_id"], rec.Header().Get("X-Request-ID"))
	}
	ts, _ := body["time"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time = %v, want RFC 3339: %v", body["time"], err)
	}
	if _, ok := body["timestamp"]; ok {
		t.Error("body carries timestamp, want the handler error body")
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		cfg         CORSConfig
		method      string
		headers     map[string]string
		wantStatus  int
		wantOrigin  string
		wantHeaders string
		wantNext    bool
	}{
		{
			name:        "preflight allowed",
			cfg:         DefaultCORSConfig(),
			method:      http.MethodOptions,
			headers:     map[string]string{"Origin": "https://excel.example", "Access-Control-Request-Method": "POST", "Access-Control-Request-Headers": "Authorization, Content-Type"},
			wantStatus:  http.StatusOK,
			wantOrigin:  "*",
			wantHeaders: "Authorization, Content-Type",
		},
		{
			name:       "preflight disallowed method",
			cfg:        DefaultCORSConfig(),
			method:     http.MethodOptions,
			headers:    map[string]string{"Origin": "https://excel.example", "Access-Control-Request-Method": "DELETE"},
			wantStatus: http.StatusBadRequest,
			wantOrigin: "*",
		},
		{
			name: "preflight disallowed origin",
			cfg: CORSConfig{
				AllowedOrigins: []string{"https://a.example"},
				AllowedMethods: []string{"POST"},
				AllowedHeaders: []string{"*"},
			},
			method:     http.MethodOptions,
			headers:    map[string]string{"Origin": "https://b.example", "Access-Control-Request-Method": "POST"},
			wantStatus: http.StatusBadRequest,
			wantOrigin: "https://b.example",
		},
		{
			name: "preflight disallowed header",
			cfg: CORSConfig{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"POST"},
				AllowedHeaders: []string{"Content-Type"},
			},
			method:      http.MethodOptions,
			headers:     map[string]string{"Origin": "https://a.example", "Access-Control-Request-Method": "POST", "Access-Control-Request-Headers": "X-Custom"},
			wantStatus:  http.StatusBadRequest,
			wantOrigin:  "*",
			wantHeaders: "Content-Type",
		},
		{
			name:       "simple request",
			cfg:        DefaultCORSConfig(),
			method:     http.MethodPost,
			headers:    map[string]string{"Origin": "https://excel.example"},
			wantStatus: http.StatusOK,
			wantOrigin: "*",
			wantNext:   true,
		},
		{
			name: "simple request listed origin",
			cfg: CORSConfig{
				AllowedOrigins: []string{"https://a.example"},
				AllowedMethods: []string{"POST"},
			},
			method:     http.MethodPost,
			headers:    map[string]string{"Origin": "https://a.example"},
			wantStatus: http.StatusOK,
			wantOrigin: "https://a.example",
			wantNext:   true,
		},
		{
			name: "simple request unlisted origin",
			cfg: CORSConfig{
				AllowedOrigins: []string{"https://a.example"},
				AllowedMethods: []string{"POST"},
			},
			method:     http.MethodPost,
			headers:    map[string]string{"Origin": "https://b.example"},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "no origin",
			cfg:        DefaultCORSConfig(),
			method:     http.MethodOptions,
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := CORS(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(tt.method, "/hello", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if called != tt.wantNext {
				t.Errorf("next called = %v, want %v", called, tt.wantNext)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Headers"); got != tt.wantHeaders {
				t.Errorf("Allow-Headers = %q, want %q", got, tt.wantHeaders)
			}
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	h := CORS(DefaultCORSConfig())(okHandler)
	req := httptest.NewRequest(http.MethodOptions, "/hello", nil)
	req.Header.Set("Origin", "https://excel.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "POST" {
		t.Errorf("Allow-Methods = %q, want POST", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("Max-Age = %q, want 600", got)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	hash, err := service.HashToken("hashed-secret")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		tokens     []string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"disabled", nil, "", http.StatusOK, ""},
		{"missing", []string{"s3cret"}, "", http.StatusUnauthorized, "XL-AUTH-4010"},
		{"wrong", []string{"s3cret"}, "nope", http.StatusUnauthorized, "XL-AUTH-4011"},
		{"bare token", []string{"s3cret"}, "s3cret", http.StatusOK, ""},
		{"bearer token", []string{"s3cret"}, "Bearer s3cret", http.StatusOK, ""},
		{"hashed token", []string{hash}, "hashed-secret", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Auth(service.NewTokenVerifier(tt.tokens))(okHandler)
			req := httptest.NewRequest(http.MethodPost, "/hello", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if body := decodeEnvelope(t, rec); body["code"] != tt.wantCode {
					t.Errorf("code = %v, want %s", body["code"], tt.wantCode)
				}
			}
		})
	}
}

func TestAuth_NilVerifier(t *testing.T) {
	rec := httptest.NewRecorder()
	Auth(nil)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hello", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	reg := metric.NewRegistry()
	limiters := service.NewRateLimiterRegistry(1, 2, time.Minute)
	h := RateLimit(limiters, reg)(okHandler)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/hello", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send("10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	rec := send("10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
	if body := decodeEnvelope(t, rec); body["code"] != "XL-SYS-4290" {
		t.Errorf("code = %v, want XL-SYS-4290", body["code"])
	}
	if got := testutil.ToFloat64(reg.RateLimited); got != 1 {
		t.Errorf("rate limited counter = %v, want 1", got)
	}

	if rec := send("10.0.0.2"); rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	reg := metric.NewRegistry()
	mux := http.NewServeMux()
	mux.Handle("POST /items/{id}", Metrics(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})))
	mux.Handle("/", Metrics(reg)(http.NotFoundHandler()))

	for _, target := range []string{"/items/1", "/items/2"} {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, target, nil))
	}
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	if got := testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("POST", "/items/{id}", "201")); got != 2 {
		t.Errorf("POST /items/{id} count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("GET", "/", "404")); got != 1 {
		t.Errorf("GET / count = %v, want 1", got)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"", "unmatched"},
		{"/", "/"},
		{"POST /hello", "/hello"},
		{"GET /{$}", "/{$}"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Pattern = tt.pattern
		if got := routeLabel(r); got != tt.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tt := range tests {
		buf.Reset()
		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}), RequestID(), Audit(l))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/hello", nil))

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("log entry is not JSON: %v: %s", err, buf.String())
		}
		if entry["level"] != tt.level {
			t.Errorf("status %d: level = %v, want %s", tt.status, entry["level"], tt.level)
		}
		if entry["status"] != float64(tt.status) {
			t.Errorf("status = %v, want %d", entry["status"], tt.status)
		}
		if entry["path"] != "/hello" {
			t.Errorf("path = %v, want /hello", entry["path"])
		}
		if id, _ := entry["request_id"].(string); id == "" {
			t.Error("request_id missing")
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trust      bool
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", false, "192.0.2.1:5000", nil, "192.0.2.1"},
		{"no port", false, "192.0.2.1", nil, "192.0.2.1"},
		{"forwarded for ignored", false, "192.0.2.1:5000", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "192.0.2.1"},
		{"real ip ignored", false, "192.0.2.1:5000", map[string]string{"X-Real-IP": "203.0.113.9"}, "192.0.2.1"},
		{"forwarded for trusted", true, "192.0.2.1:5000", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"real ip trusted", true, "192.0.2.1:5000", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"trusted without headers", true, "192.0.2.1:5000", nil, "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := ClientIP(tt.trust)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = getClientIP(r)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("client ip = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimit_IgnoresForwardedFor(t *testing.T) {
	limiters := service.NewRateLimiterRegistry(0.001, 1, time.Minute)
	h := Chain(okHandler, ClientIP(false), RateLimit(limiters, nil))

	for i, xff := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodPost, "/hello", nil)
		req.RemoteAddr = "192.0.2.7:4000"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		want := http.StatusOK
		if i > 0 {
			want = http.StatusTooManyRequests
		}
		if rec.Code != want {
			t.Errorf("request %d (X-Forwarded-For %s): status = %d, want %d", i, xff, rec.Code, want)
		}
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	w.WriteHeader(http.StatusTeapot)
	w.WriteHeader(http.StatusOK)
	n, _ := w.Write([]byte("hello"))

	if w.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want %d", w.statusCode, http.StatusTeapot)
	}
	if w.written != n || n != 5 {
		t.Errorf("written = %d, want 5", w.written)
	}
	if w.Unwrap() != rec {
		t.Error("Unwrap() did not return the underlying writer")
	}
}
