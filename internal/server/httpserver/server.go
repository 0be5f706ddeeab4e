package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/yndnr/xlremote-go/internal/infra/tlsroots"
	"github.com/yndnr/xlremote-go/internal/telemetry/logger"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	Addr    string
	Handler http.Handler
	Logger  logger.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// TLSCertFile and TLSKeyFile enable HTTPS. Both files are watched and
	// reloaded when they change.
	TLSCertFile string
	TLSKeyFile  string
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	certs      *tlsroots.Watcher
	logger     logger.Logger
}

// New creates a new HTTP server. It fails when the TLS key pair cannot be
// loaded.
func New(cfg ServerConfig) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return nil, errors.New("httpserver: tls cert and key files must be set together")
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           cfg.Handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		logger: cfg.Logger,
	}

	if cfg.TLSCertFile != "" {
		w, err := tlsroots.NewWatcher(cfg.TLSCertFile, cfg.TLSKeyFile, tlsroots.WithLogger(cfg.Logger))
		if err != nil {
			return nil, err
		}
		s.certs = w
		s.httpServer.TLSConfig = &tls.Config{
			MinVersion:     tls.VersionTLS12,
			GetCertificate: w.GetCertificate,
		}
	}
	return s, nil
}

// TLS reports whether the server serves HTTPS.
func (s *Server) TLS() bool {
	return s.certs != nil
}

// ListenAndServe listens on the configured address and serves HTTP or
// HTTPS. It returns http.ErrServerClosed after Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	scheme := "http"
	if s.certs != nil {
		scheme = "https"
	}
	s.logger.Info("http server listening", "addr", ln.Addr().String(), "scheme", scheme)

	if s.certs == nil {
		return s.httpServer.Serve(ln)
	}

	s.certs.StartAsync()
	// Certificates come from GetCertificate, so no files are passed here.
	return s.httpServer.ServeTLS(ln, "", "")
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.certs != nil {
		s.certs.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
