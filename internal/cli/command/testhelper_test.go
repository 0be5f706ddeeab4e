package command

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/yndnr/xlremote-go/internal/core/service"
	"github.com/yndnr/xlremote-go/internal/core/udf"
	"github.com/yndnr/xlremote-go/internal/server/httpserver/handler"
	"github.com/yndnr/xlremote-go/internal/telemetry/logger"
)

// newTestServer serves the real endpoint handlers.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	functions := udf.NewRegistry("").MustRegister(udf.Builtins()...)
	h, err := handler.New(handler.Config{
		Books:     service.NewBookService("", nil),
		Functions: service.NewFunctionService(functions, "test", nil),
		Logger:    logger.Nop(),
		StaticDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("handler.New() error = %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI runs the app with an isolated config file. stdin feeds commands
// reading standard input.
func runCLI(t *testing.T, configPath, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	full := append([]string{"xlremote-cli", "--config", configPath}, args...)
	err := app.Run(full)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// writeBook creates a workbook with the given sheets; cells maps
// "Sheet!A1" to values.
func writeBook(t *testing.T, sheets []string, cells map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheets[0]); err != nil {
		t.Fatal(err)
	}
	for _, name := range sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
	}
	for ref, v := range cells {
		sheet, cell, _ := strings.Cut(ref, "!")
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

// tokenServer answers GET / and records the Authorization header.
func tokenServer(t *testing.T, got *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}
