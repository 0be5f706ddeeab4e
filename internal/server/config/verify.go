package config

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/yndnr/xlremote-go/internal/core/udf"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyHTTP(&cfg.Server.HTTP),
		verifyServer(&cfg.Server),
		verifyAutomation(&cfg.Automation),
		verifyTelemetry(&cfg.Telemetry),
		verifyLog(&cfg.Log),
	)
}

func verifyHTTP(cfg *HTTPConfig) error {
	var errs []error
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr %q: %w", cfg.Addr, err))
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}
	for key, path := range map[string]string{"tls_cert_file": cfg.TLSCertFile, "tls_key_file": cfg.TLSKeyFile} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			errs = append(errs, fmt.Errorf("server.http.%s: %w", key, err))
		}
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 || cfg.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.http timeouts must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error
	if info, err := os.Stat(cfg.StaticDir); err != nil {
		errs = append(errs, fmt.Errorf("server.static_dir: %w", err))
	} else if !info.IsDir() {
		errs = append(errs, fmt.Errorf("server.static_dir %q is not a directory", cfg.StaticDir))
	}
	if cfg.TemplatesDir != "" {
		if info, err := os.Stat(cfg.TemplatesDir); err != nil {
			errs = append(errs, fmt.Errorf("server.templates_dir: %w", err))
		} else if !info.IsDir() {
			errs = append(errs, fmt.Errorf("server.templates_dir %q is not a directory", cfg.TemplatesDir))
		}
	}

	for _, m := range cfg.CORS.AllowedMethods {
		switch strings.ToUpper(m) {
		case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions:
		default:
			errs = append(errs, fmt.Errorf("server.cors.allowed_methods: unknown method %q", m))
		}
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, errors.New("server.cors.max_age must not be negative"))
	}

	if cfg.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("server.rate_limit.requests_per_second must not be negative"))
	}
	if cfg.RateLimit.RequestsPerSecond > 0 && cfg.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("server.rate_limit.burst must be at least 1"))
	}
	return errors.Join(errs...)
}

func verifyAutomation(cfg *AutomationSection) error {
	if cfg.FunctionNamespace != "" && !udf.ValidNamespace(cfg.FunctionNamespace) {
		return fmt.Errorf("automation.function_namespace %q must be letters, digits and underscores", cfg.FunctionNamespace)
	}
	return nil
}

func verifyTelemetry(cfg *TelemetrySection) error {
	if !cfg.Metrics.Enabled {
		return nil
	}
	if !strings.HasPrefix(cfg.Metrics.Path, "/") || cfg.Metrics.Path == "/" {
		return fmt.Errorf("telemetry.metrics.path %q must be an absolute path below /", cfg.Metrics.Path)
	}
	if strings.ContainsAny(cfg.Metrics.Path, "{} ") {
		return fmt.Errorf("telemetry.metrics.path %q must not contain wildcards or spaces", cfg.Metrics.Path)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or text", cfg.Format))
	}
	return errors.Join(errs...)
}
