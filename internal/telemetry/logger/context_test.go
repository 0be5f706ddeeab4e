package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func newJSONLogger(t *testing.T, buf *bytes.Buffer) Logger {
	t.Helper()
	l, err := New(Config{Level: "info", Format: "json", Output: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), newJSONLogger(t, &buf))

	retrieved := FromContext(ctx)
	if retrieved == nil {
		t.Fatal("FromContext returned nil")
	}
	retrieved.Info("test message")

	if buf.Len() == 0 {
		t.Error("Logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Error("FromContext should return default logger, got nil")
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" || ClientFromContext(ctx) != "" {
		t.Error("empty context should carry no values")
	}

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithClient(ctx, "Office.js")

	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext() = %q, want req-123", got)
	}
	if got := ClientFromContext(ctx); got != "Office.js" {
		t.Errorf("ClientFromContext() = %q, want Office.js", got)
	}
}

func TestL(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		client    string
	}{
		{"no values", "", ""},
		{"request id", "req-12345", ""},
		{"both", "req-12345", "Google Apps Script"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := WithLogger(context.Background(), newJSONLogger(t, &buf))
			if tt.requestID != "" {
				ctx = WithRequestID(ctx, tt.requestID)
			}
			if tt.client != "" {
				ctx = WithClient(ctx, tt.client)
			}

			L(ctx).Info("test message")

			var logEntry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}

			reqID, hasReqID := logEntry["request_id"]
			if (tt.requestID != "") != hasReqID || (hasReqID && reqID != tt.requestID) {
				t.Errorf("request_id = %v, want %q", reqID, tt.requestID)
			}
			client, hasClient := logEntry["client"]
			if (tt.client != "") != hasClient || (hasClient && client != tt.client) {
				t.Errorf("client = %v, want %q", client, tt.client)
			}
		})
	}
}
