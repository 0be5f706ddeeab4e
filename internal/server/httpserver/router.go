package httpserver

import (
	"net/http"
	"time"

	"github.com/yndnr/xlremote-go/internal/core/service"
	"github.com/yndnr/xlremote-go/internal/telemetry/logger"
	"github.com/yndnr/xlremote-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler serves every endpoint. Usually a *handler.Handler.
	Handler http.Handler

	Logger logger.Logger

	// Metrics is optional. When set, requests are counted and MetricsPath
	// serves the Prometheus exposition.
	Metrics     *metric.Registry
	MetricsPath string

	CORS CORSConfig

	// Verifier guards the POST endpoints. Nil or empty disables auth.
	Verifier *service.TokenVerifier

	// RateLimiter limits the POST endpoints per client IP. Nil disables it.
	RateLimiter *service.RateLimiterRegistry

	// EnableAudit logs every completed request.
	EnableAudit bool

	// TrustProxyHeaders takes the client IP from X-Forwarded-For or
	// X-Real-IP. Only set it behind a reverse proxy.
	TrustProxyHeaders bool
}

// postRoutes run client code and are the only routes behind auth and rate
// limiting. The add-ins load the GET routes without credentials.
var postRoutes = []string{
	"/hello",
	"/capitalize-sheet-names-prompt",
	"/capitalize-sheet-names",
	"/xlwings/custom-functions-call",
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	h := cfg.Handler

	var common []Middleware
	if cfg.Metrics != nil {
		common = append(common, Metrics(cfg.Metrics))
	}

	protected := append([]Middleware(nil), common...)
	if cfg.RateLimiter != nil {
		protected = append(protected, RateLimit(cfg.RateLimiter, cfg.Metrics))
	}
	protected = append(protected, Auth(cfg.Verifier))

	mux := http.NewServeMux()

	for _, path := range postRoutes {
		mux.Handle("POST "+path, Chain(h, protected...))
	}

	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, Chain(cfg.Metrics.Handler(), common...))
	}

	// Health, GET endpoints, static files and 405 answers.
	mux.Handle("/", Chain(h, common...))

	outer := []Middleware{Recover(cfg.Logger), RequestID(), ClientIP(cfg.TrustProxyHeaders)}
	if cfg.EnableAudit {
		outer = append(outer, Audit(cfg.Logger))
	}
	// CORS runs before the mux so that OPTIONS preflights reach it.
	outer = append(outer, CORS(cfg.CORS))

	return Chain(mux, outer...)
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		MetricsPath: "/metrics",
		CORS:        DefaultCORSConfig(),
		EnableAudit: true,
	}
}

// DefaultCORSConfig allows any origin to POST with any header.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost},
		AllowedHeaders: []string{"*"},
		MaxAge:         10 * time.Minute,
	}
}
