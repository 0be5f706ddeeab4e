package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/xlremote-go/internal/core/domain"
	"github.com/yndnr/xlremote-go/internal/core/service"
	"github.com/yndnr/xlremote-go/internal/telemetry/logger"
	"github.com/yndnr/xlremote-go/internal/telemetry/metric"
)

// Context keys for request-scoped values.
type contextKey string

// ContextKeyStartTime is the context key for request start time.
const ContextKeyStartTime contextKey = "start_time"

// maxRequestIDLen bounds client supplied request ids.
const maxRequestIDLen = 128

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together. The first middleware is the
// outermost one.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID adds a unique request ID to each request. A well-formed
// X-Request-ID from the client is kept.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if !validRequestID(requestID) {
				requestID = ulid.Make().String()
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = context.WithValue(ctx, ContextKeyStartTime, time.Now())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}

// Auth rejects requests whose Authorization header does not match a
// configured token. It is a no-op when no token is configured.
func Auth(verifier *service.TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		if verifier == nil || !verifier.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := verifier.Verify(r.Header.Get("Authorization")); err != nil {
				de := domain.ErrAuthInvalid
				errors.As(err, &de)
				logger.L(r.Context()).Warn("request rejected",
					"path", r.URL.Path,
					"client_ip", getClientIP(r),
					"code", de.Code,
				)
				writeError(w, r, http.StatusUnauthorized, de.Code, de.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies per-IP rate limiting. reg may be nil.
func RateLimit(limiters *service.RateLimiterRegistry, reg *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.Allow(getClientIP(r)) {
				if reg != nil {
					reg.IncRateLimited()
				}
				w.Header().Set("Retry-After", "1")
				writeError(w, r, http.StatusTooManyRequests, domain.ErrRateLimited.Code, domain.ErrRateLimited.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Metrics records request counts and latencies by route pattern.
func Metrics(reg *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			route := routeLabel(r)
			reg.RecordRequest(r.Method, route, strconv.Itoa(wrapped.statusCode))
			reg.ObserveRequestDuration(r.Method, route, time.Since(start).Seconds())
		})
	}
}

// routeLabel returns the path of the matched ServeMux pattern, which keeps
// the label set bounded.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

// Audit logs every completed request.
func Audit(l logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			startTime, ok := r.Context().Value(ContextKeyStartTime).(time.Time)
			if !ok {
				startTime = time.Now()
			}

			attrs := []any{
				"request_id", logger.RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"bytes", wrapped.written,
				"duration_ms", time.Since(startTime).Milliseconds(),
				"client_ip", getClientIP(r),
			}

			switch {
			case wrapped.statusCode >= 500:
				l.Error("request completed with error", attrs...)
			case wrapped.statusCode >= 400:
				l.Warn("request completed with client error", attrs...)
			default:
				l.Info("request completed", attrs...)
			}
		})
	}
}

// Recover recovers from panics and returns 500 error.
func Recover(l logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					l.Error("panic recovered",
						"request_id", logger.RequestIDFromContext(r.Context()),
						"error", err,
						"path", r.URL.Path,
					)
					writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, domain.ErrInternalServer.Message)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// CORSConfig configures Cross-Origin Resource Sharing.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

// CORS adds Cross-Origin Resource Sharing headers and answers preflight
// requests. A preflight for a disallowed origin, method or header gets 400.
func CORS(cfg CORSConfig) Middleware {
	allowAllOrigins := contains(cfg.AllowedOrigins, "*")
	allowAllHeaders := contains(cfg.AllowedHeaders, "*")
	methods := strings.Join(cfg.AllowedMethods, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	originAllowed := func(origin string) bool {
		return allowAllOrigins || contains(cfg.AllowedOrigins, origin)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			requestMethod := r.Header.Get("Access-Control-Request-Method")
			if r.Method == http.MethodOptions && requestMethod != "" {
				var failures []string
				if !originAllowed(origin) {
					failures = append(failures, "origin")
				}
				if !containsFold(cfg.AllowedMethods, requestMethod) {
					failures = append(failures, "method")
				}
				requestHeaders := r.Header.Get("Access-Control-Request-Headers")
				if !allowAllHeaders && !headersAllowed(cfg.AllowedHeaders, requestHeaders) {
					failures = append(failures, "headers")
				}

				h := w.Header()
				if allowAllOrigins {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Max-Age", maxAge)
				if allowAllHeaders && requestHeaders != "" {
					h.Set("Access-Control-Allow-Headers", requestHeaders)
				} else if len(cfg.AllowedHeaders) > 0 && !allowAllHeaders {
					h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
				}

				if len(failures) > 0 {
					h.Set("Content-Type", "text/plain; charset=utf-8")
					w.WriteHeader(http.StatusBadRequest)
					w.Write([]byte("Disallowed CORS " + strings.Join(failures, ", ")))
					return
				}
				h.Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("OK"))
				return
			}

			if originAllowed(origin) {
				if allowAllOrigins {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func headersAllowed(allowed []string, requested string) bool {
	for _, h := range strings.Split(requested, ",") {
		h = strings.TrimSpace(h)
		if h != "" && !containsFold(allowed, h) {
			return false
		}
	}
	return true
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// writeError writes the same JSON error body as the handlers.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	body := domain.NewErrorBody(logger.RequestIDFromContext(r.Context()), code, message, nil)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.L(r.Context()).Debug("failed to write error", "error", err)
	}
}

const ctxKeyClientIP contextKey = "client_ip"

// ClientIP resolves the client address once per request. X-Forwarded-For
// and X-Real-IP are only honoured when trustProxy is set, i.e. when every
// request arrives through a reverse proxy that overwrites them.
func ClientIP(trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteIP(r)
			if trustProxy {
				ip = forwardedIP(r, ip)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyClientIP, ip)))
		})
	}
}

// getClientIP returns the address resolved by ClientIP, or the peer
// address when ClientIP is not in the chain.
func getClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(ctxKeyClientIP).(string); ok {
		return ip
	}
	return remoteIP(r)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func forwardedIP(r *http.Request, fallback string) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return fallback
}
