package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

const redacted = "***REDACTED***"

// credentialSchemes are value prefixes that mark a credential. keepBody
// tells whether a hint of the body may be logged.
var credentialSchemes = []struct {
	prefix   string
	keepBody bool
}{
	{"Bearer ", true},
	{"Basic ", true},
	{"$argon2id$", false},
}

// secretKeys are substrings of attribute keys whose values are dropped.
var secretKeys = []string{"password", "secret", "token", "authorization", "cookie", "credential", "api_key"}

// redactSensitive is the ReplaceAttr hook of every handler built by New.
//
// Credentials are masked. Cell grids logged under "values" are reduced to
// their shape since they hold workbook data.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if masked, ok := maskCredential(s); ok {
			return slog.String(a.Key, masked)
		}
		if s != "" && sensitiveKey(a.Key) {
			return slog.String(a.Key, redacted)
		}
	case slog.KindGroup:
		group := a.Value.Group()
		attrs := make([]slog.Attr, len(group))
		for i, ga := range group {
			attrs[i] = redactSensitive(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(attrs...)}
	case slog.KindAny:
		if grid, ok := a.Value.Any().([][]any); ok && a.Key == "values" {
			cols := 0
			if len(grid) > 0 {
				cols = len(grid[0])
			}
			return slog.String(a.Key, fmt.Sprintf("%dx%d cells", len(grid), cols))
		}
	}
	return a
}

// maskCredential masks s when it starts with a known credential scheme.
func maskCredential(s string) (string, bool) {
	for _, c := range credentialSchemes {
		body, ok := strings.CutPrefix(s, c.prefix)
		if !ok {
			continue
		}
		if !c.keepBody || len(body) <= 6 {
			return c.prefix + "***", true
		}
		return c.prefix + body[:3] + "..." + body[len(body)-3:], true
	}
	return s, false
}

func sensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, k := range secretKeys {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}
