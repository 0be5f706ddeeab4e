package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
)

// AlertTemplateName is the file name looked up in the templates directory.
const AlertTemplateName = "xlwings-alert.html"

//go:embed templates/xlwings-alert.html
var defaultTemplates embed.FS

// alertButton is a button of the alert dialog. Value is what the client
// callback receives.
type alertButton struct {
	Label string
	Value string
}

var alertButtonSets = map[string][]alertButton{
	"ok":            {{"OK", "ok"}},
	"ok_cancel":     {{"OK", "ok"}, {"Cancel", "cancel"}},
	"yes_no":        {{"Yes", "yes"}, {"No", "no"}},
	"yes_no_cancel": {{"Yes", "yes"}, {"No", "no"}, {"Cancel", "cancel"}},
}

// alertData is the data passed to the alert template.
type alertData struct {
	Prompt   template.HTML
	Title    string
	Mode     string
	Callback string
	// ButtonSet is the raw buttons parameter, Buttons its expansion.
	ButtonSet string
	Buttons   []alertButton
}

// loadAlertTemplate parses dir/xlwings-alert.html when it exists and the
// embedded dialog otherwise.
func loadAlertTemplate(dir string) (*template.Template, error) {
	if dir != "" {
		path := filepath.Join(dir, AlertTemplateName)
		tmpl, err := template.ParseFiles(path)
		if err == nil {
			return tmpl, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("parse alert template %s: %w", path, err)
		}
	}
	return template.ParseFS(defaultTemplates, "templates/"+AlertTemplateName)
}

// alertPrompt escapes the prompt and turns line breaks into <br>.
func alertPrompt(prompt string) template.HTML {
	escaped := template.HTMLEscapeString(prompt)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// handleAlert handles GET /xlwings/alert.
func (h *Handler) handleAlert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	buttonSet := q.Get("buttons")
	if buttonSet == "" {
		buttonSet = "ok"
	}
	buttons, ok := alertButtonSets[buttonSet]
	if !ok {
		buttons = alertButtonSets["ok"]
	}

	data := alertData{
		Prompt:    alertPrompt(q.Get("prompt")),
		Title:     q.Get("title"),
		Mode:      q.Get("mode"),
		Callback:  q.Get("callback"),
		ButtonSet: buttonSet,
		Buttons:   buttons,
	}

	var buf bytes.Buffer
	if err := h.alertTmpl.Execute(&buf, data); err != nil {
		h.handleServiceError(w, r, fmt.Errorf("render alert: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
