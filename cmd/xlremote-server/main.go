package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/yndnr/xlremote-go/internal/core/service"
	"github.com/yndnr/xlremote-go/internal/core/udf"
	"github.com/yndnr/xlremote-go/internal/infra/buildinfo"
	"github.com/yndnr/xlremote-go/internal/infra/confloader"
	"github.com/yndnr/xlremote-go/internal/infra/shutdown"
	"github.com/yndnr/xlremote-go/internal/server/config"
	"github.com/yndnr/xlremote-go/internal/server/httpserver"
	"github.com/yndnr/xlremote-go/internal/server/httpserver/handler"
	"github.com/yndnr/xlremote-go/internal/telemetry/logger"
	"github.com/yndnr/xlremote-go/internal/telemetry/metric"
)

// rateLimiterIdle is how long a client's bucket is kept without requests.
const rateLimiterIdle = 10 * time.Minute

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"addr":       "server.http.addr",
	"cert":       "server.http.tls_cert_file",
	"key":        "server.http.tls_key_file",
	"static-dir": "server.static_dir",
	"debug":      "server.debug",
	"log-level":  "log.level",
}

func run(args []string) error {
	fs := flag.NewFlagSet("xlremote-server", flag.ContinueOnError)
	configFile := fs.String("config", "", "path to the configuration file")
	showVersion := fs.Bool("version", false, "show version information")
	fs.String("addr", "", "listen address (server.http.addr)")
	fs.String("cert", "", "TLS certificate file (server.http.tls_cert_file)")
	fs.String("key", "", "TLS key file (server.http.tls_key_file)")
	fs.String("static-dir", "", "directory served for unrouted paths (server.static_dir)")
	fs.Bool("debug", false, "include error details in 500 responses (server.debug)")
	fs.String("log-level", "", "log level (log.level)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Println("xlremote-server " + buildinfo.String())
		return nil
	}

	overrides := flagOverrides(fs)
	cfg, err := loadConfig(*configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	info := buildinfo.Get()
	log.Info("starting xlremote-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	functions := udf.NewRegistry(cfg.Automation.FunctionNamespace).MustRegister(udf.Builtins()...)

	var reg *metric.Registry
	if cfg.Telemetry.Metrics.Enabled {
		reg = metric.Global()
	}
	observer := observerFor(reg)
	books := service.NewBookService(cfg.Automation.ClientVersion, observer)
	funcs := service.NewFunctionService(functions, cfg.Automation.ClientVersion, observer)
	if reg != nil {
		reg.MustRegister(metric.NewCollector(info, funcs.Count))
	}

	h, err := handler.New(handler.Config{
		Books:        books,
		Functions:    funcs,
		Logger:       log,
		StaticDir:    cfg.Server.StaticDir,
		TemplatesDir: cfg.Server.TemplatesDir,
		Debug:        cfg.Server.Debug,
	})
	if err != nil {
		return fmt.Errorf("init handler: %w", err)
	}

	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.Handler = h
	routerCfg.Logger = log
	routerCfg.Metrics = reg
	routerCfg.MetricsPath = cfg.Telemetry.Metrics.Path
	routerCfg.CORS = httpserver.CORSConfig{
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		AllowedMethods: cfg.Server.CORS.AllowedMethods,
		AllowedHeaders: cfg.Server.CORS.AllowedHeaders,
		MaxAge:         cfg.Server.CORS.MaxAge,
	}
	routerCfg.Verifier = service.NewTokenVerifier(cfg.Security.AuthTokens)
	routerCfg.EnableAudit = cfg.Server.Audit
	routerCfg.TrustProxyHeaders = cfg.Server.TrustProxyHeaders
	if rl := cfg.Server.RateLimit; rl.RequestsPerSecond > 0 {
		routerCfg.RateLimiter = service.NewRateLimiterRegistry(rl.RequestsPerSecond, rl.Burst, rateLimiterIdle)
	}
	if routerCfg.Verifier.Enabled() {
		log.Info("token authentication enabled", "tokens", len(cfg.Security.AuthTokens))
	}

	srv, err := httpserver.New(httpserver.ServerConfig{
		Addr:         cfg.Server.HTTP.Addr,
		Handler:      httpserver.NewRouter(routerCfg),
		Logger:       log,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
		TLSCertFile:  cfg.Server.HTTP.TLSCertFile,
		TLSKeyFile:   cfg.Server.HTTP.TLSKeyFile,
	})
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hooks run in reverse order: the HTTP server drains first.
	shutdownHandler.OnShutdown("background", func(context.Context) error {
		cancel()
		return nil
	})
	if *configFile != "" {
		watcher, err := watchConfig(*configFile, overrides, log)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}
	shutdownHandler.OnShutdown("http server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return srv.Shutdown(ctx)
	})

	if routerCfg.RateLimiter != nil {
		go sweepLimiters(ctx, routerCfg.RateLimiter, log)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
			shutdownHandler.Trigger()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(context.Background()); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// flagOverrides returns the configuration keys of the flags given on the
// command line.
func flagOverrides(fs *flag.FlagSet) map[string]any {
	overrides := make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if getter, ok := f.Value.(flag.Getter); ok {
			overrides[key] = getter.Get()
			return
		}
		overrides[key] = f.Value.String()
	})
	return overrides
}

// loadConfig loads configuration from defaults, file, environment and
// overrides, then verifies it.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// observerFor returns the service observer. A nil *metric.Registry must not
// end up inside the interface.
func observerFor(reg *metric.Registry) service.Observer {
	if reg == nil {
		return nil
	}
	return reg
}

// watchConfig reloads the configuration file on change and applies the log
// level. Other settings need a restart.
func watchConfig(path string, overrides map[string]any, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}
	w.OnChange(func(string) {
		applyReload(path, overrides, log)
	})
	w.StartAsync()
	return w, nil
}

func applyReload(path string, overrides map[string]any, log logger.Logger) {
	cfg, err := loadConfig(path, overrides)
	if err != nil {
		log.Error("config reload failed", "error", err)
		return
	}
	if old := logger.GetLevel(); old != cfg.Log.Level {
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level changed", "from", old, "to", cfg.Log.Level)
		return
	}
	log.Info("config file changed; settings other than log.level apply after restart")
}

func sweepLimiters(ctx context.Context, limiters *service.RateLimiterRegistry, log logger.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiters.Sweep(); n > 0 {
				log.Debug("evicted idle rate limiters", "count", n)
			}
		}
	}
}
