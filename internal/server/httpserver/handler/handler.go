package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/yndnr/xlremote-go/internal/core/domain"
	"github.com/yndnr/xlremote-go/internal/core/service"
	"github.com/yndnr/xlremote-go/internal/telemetry/logger"
)

// maxBodyBytes caps request bodies. Snapshots carry the used range of
// every sheet, so this is generous.
const maxBodyBytes = 64 << 20

// Config holds the dependencies of Handler.
type Config struct {
	Books     *service.BookService
	Functions *service.FunctionService
	Logger    logger.Logger

	// StaticDir is served for every path without a route.
	StaticDir string
	// TemplatesDir may hold an xlwings-alert.html overriding the built-in
	// alert dialog.
	TemplatesDir string
	// Debug adds error details to 500 responses.
	Debug bool
}

// Handler serves all endpoints.
type Handler struct {
	books     *service.BookService
	functions *service.FunctionService
	logger    logger.Logger
	debug     bool

	alertTmpl *template.Template
	static    http.Handler
	mux       *http.ServeMux
}

// New creates a Handler. It fails when a user alert template exists but
// cannot be parsed.
func New(cfg Config) (*Handler, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	tmpl, err := loadAlertTemplate(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		books:     cfg.Books,
		functions: cfg.Functions,
		logger:    cfg.Logger,
		debug:     cfg.Debug,
		alertTmpl: tmpl,
		static:    newStaticHandler(cfg.StaticDir),
		mux:       http.NewServeMux(),
	}

	h.registerRoutes()
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /{$}", h.handleHealth)

	h.route(http.MethodPost, "/hello", h.bookHandler(h.books.Hello))
	h.route(http.MethodPost, "/capitalize-sheet-names-prompt", h.bookHandler(h.books.CapitalizeSheetNamesPrompt))
	h.route(http.MethodPost, "/capitalize-sheet-names", h.bookHandler(h.books.CapitalizeSheetNames))

	h.route(http.MethodGet, "/xlwings/alert", h.handleAlert)
	h.route(http.MethodGet, "/xlwings/custom-functions-meta", h.handleFunctionsMeta)
	h.route(http.MethodGet, "/xlwings/custom-functions-code", h.handleFunctionsCode)
	h.route(http.MethodPost, "/xlwings/custom-functions-call", h.handleFunctionsCall)

	h.mux.Handle("/", h.static)
}

// route registers fn for method and path. Other methods on the same path
// get 405 instead of falling through to the static files.
func (h *Handler) route(method, path string, fn http.HandlerFunc) {
	h.mux.HandleFunc(method+" "+path, fn)
	h.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", method)
		writeText(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
}

// readBody reads the request body up to maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.ErrBadRequest.WithDetailsf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, domain.ErrBadRequest.WithDetails("cannot read request body").WithCause(err)
	}
	return data, nil
}

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return domain.ErrBadRequest.WithDetails("malformed JSON body").WithCause(err)
	}
	return nil
}

// writeJSON writes v as the JSON response body.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.handleServiceError(w, r, fmt.Errorf("encode response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.L(r.Context()).Debug("failed to write response", "error", err)
	}
}

// writeError writes an ErrorBody.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	body := domain.NewErrorBody(logger.RequestIDFromContext(r.Context()), code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.L(r.Context()).Debug("failed to write error", "error", err)
	}
}

// writeText writes a plain-text response.
func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	io.WriteString(w, text)
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.L(r.Context())

	if domain.IsAutomationError(err) {
		log.Warn("automation error", "path", r.URL.Path, "error", err)
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		status := ErrorCodeToHTTPStatus(de.Code)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", "path", r.URL.Path, "error", err)
		}
		var details any
		if de.Details != "" {
			details = de.Details
		}
		h.writeError(w, r, status, de.Code, de.Message, details)
		return
	}

	log.Error("internal error", "path", r.URL.Path, "error", err)
	var details any
	if h.debug {
		details = err.Error()
	}
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, domain.ErrInternalServer.Message, details)
}

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes. The number
// part of a code starts with the status class.
func ErrorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4000"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-4010"), strings.HasSuffix(code, "-4011"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
