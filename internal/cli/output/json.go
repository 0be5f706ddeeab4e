package output

import (
	"bytes"
	"encoding/json"
	"io"
)

// JSONFormatter prints data as indented JSON. Cell text is written without
// HTML escaping. Raw server bodies are re-indented so their key order
// survives.
type JSONFormatter struct{}

// Format writes data to w.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	if raw, ok := data.(json.RawMessage); ok {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(w)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
