// Package logger provides structured logging for xlremote.
//
// It wraps the standard library log/slog:
//
//   - logger.go: handler setup (json or text) and a process-wide level
//     that can be changed at runtime
//   - context.go: context-aware logging with request id and client kind
//   - redact.go: masking of credentials in log attributes
//
// Snapshots posted by clients contain user workbook data. Handlers log
// their shape (sheet count, action count), and a cell grid logged under
// the "values" key is reduced to its dimensions.
package logger
