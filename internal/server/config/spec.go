package config

import "time"

// ServerConfig is the root configuration for xlremote-server.
type ServerConfig struct {
	Server     ServerSection     `koanf:"server"`
	Automation AutomationSection `koanf:"automation"`
	Security   SecuritySection   `koanf:"security"`
	Telemetry  TelemetrySection  `koanf:"telemetry"`
	Log        LogSection        `koanf:"log"`
}

// ServerSection configures the HTTP endpoint.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
	CORS CORSConfig `koanf:"cors"`

	// StaticDir is served for every path without a route.
	StaticDir string `koanf:"static_dir"`
	// TemplatesDir may hold an xlwings-alert.html that replaces the
	// built-in alert dialog.
	TemplatesDir string `koanf:"templates_dir"`
	// Debug adds error details to 500 responses.
	Debug bool `koanf:"debug"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Audit     bool            `koanf:"audit"`
	// TrustProxyHeaders takes client IPs for rate limiting and logs from
	// X-Forwarded-For. Leave off unless a reverse proxy sets the header.
	TrustProxyHeaders bool `koanf:"trust_proxy_headers"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	TLSCertFile     string        `koanf:"tls_cert_file"`
	TLSKeyFile      string        `koanf:"tls_key_file"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// CORSConfig configures Cross-Origin Resource Sharing.
type CORSConfig struct {
	AllowedOrigins []string      `koanf:"allowed_origins"`
	AllowedMethods []string      `koanf:"allowed_methods"`
	AllowedHeaders []string      `koanf:"allowed_headers"`
	MaxAge         time.Duration `koanf:"max_age"`
}

// RateLimitConfig limits requests per client IP on the POST endpoints.
// A zero RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// AutomationSection configures the automation layer.
type AutomationSection struct {
	// ClientVersion, when set, must equal the version sent by clients.
	ClientVersion string `koanf:"client_version"`
	// FunctionNamespace prefixes custom function ids, e.g. XLREMOTE.HELLO.
	FunctionNamespace string `koanf:"function_namespace"`
}

// SecuritySection configures security settings.
type SecuritySection struct {
	// AuthTokens are accepted in the Authorization header of the POST
	// endpoints. Entries are plaintext or $argon2id$ hashes. Empty disables
	// authentication.
	AuthTokens []string `koanf:"auth_tokens"`
}

// TelemetrySection configures observability.
type TelemetrySection struct {
	Metrics MetricsConfig `koanf:"metrics"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
