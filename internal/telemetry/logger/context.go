package logger

import "context"

type ctxKey struct{}

// scope is the request-scoped logging state carried in a context. It is
// copied on every change so contexts never share a mutable value.
type scope struct {
	log       Logger
	requestID string
	client    string
}

func scopeOf(ctx context.Context) scope {
	s, _ := ctx.Value(ctxKey{}).(scope)
	return s
}

func withScope(ctx context.Context, update func(*scope)) context.Context {
	s := scopeOf(ctx)
	update(&s)
	return context.WithValue(ctx, ctxKey{}, s)
}

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return withScope(ctx, func(s *scope) { s.log = l })
}

// FromContext returns the logger attached to ctx, or Default.
func FromContext(ctx context.Context) Logger {
	if l := scopeOf(ctx).log; l != nil {
		return l
	}
	return Default()
}

// WithRequestID records the request id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *scope) { s.requestID = id })
}

// RequestIDFromContext returns the request id recorded in ctx.
func RequestIDFromContext(ctx context.Context) string {
	return scopeOf(ctx).requestID
}

// WithClient records the spreadsheet client (Office.js, Google Apps Script,
// VBA) that sent the request.
func WithClient(ctx context.Context, client string) context.Context {
	return withScope(ctx, func(s *scope) { s.client = client })
}

// ClientFromContext returns the client recorded in ctx.
func ClientFromContext(ctx context.Context) string {
	return scopeOf(ctx).client
}

// L returns the logger for ctx with the request id and client attached.
func L(ctx context.Context) Logger {
	s := scopeOf(ctx)
	l := s.log
	if l == nil {
		l = Default()
	}

	var attrs []any
	if s.requestID != "" {
		attrs = append(attrs, "request_id", s.requestID)
	}
	if s.client != "" {
		attrs = append(attrs, "client", s.client)
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}
