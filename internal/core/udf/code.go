package udf

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

//go:embed code.js.tmpl
var codeTemplateText string

var codeTemplate = template.Must(template.New("code.js").Parse(codeTemplateText))

type codeFunc struct {
	*Func
	ID string
}

// Code renders the JavaScript that associates every registered function
// with a stub posting the call back to the server. version is embedded in
// the code and sent along with each call.
//
// Function and parameter names are restricted to identifiers on Register,
// so they are safe to emit unquoted.
func (r *Registry) Code(version string) ([]byte, error) {
	data := struct {
		Version string
		Funcs   []codeFunc
	}{Version: version}
	for _, f := range r.Funcs() {
		data.Funcs = append(data.Funcs, codeFunc{Func: f, ID: f.ID(r.namespace)})
	}

	var buf bytes.Buffer
	if err := codeTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render custom functions code: %w", err)
	}
	return buf.Bytes(), nil
}
