package config

import "strings"

const hashPrefix = "$argon2id$"

// Sanitize returns a copy of cfg that is safe to log. Auth tokens are
// masked; hashed tokens only show their scheme.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	out := *cfg
	if n := len(cfg.Security.AuthTokens); n > 0 {
		out.Security.AuthTokens = make([]string, n)
		for i, tok := range cfg.Security.AuthTokens {
			out.Security.AuthTokens[i] = maskSecret(tok)
		}
	}
	return &out
}

func maskSecret(s string) string {
	if strings.HasPrefix(s, hashPrefix) {
		return hashPrefix + "***"
	}
	if len(s) <= 8 {
		return "****"
	}
	return "****" + s[len(s)-2:]
}
