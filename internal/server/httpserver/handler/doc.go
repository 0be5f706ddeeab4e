// Package handler provides HTTP request handlers for xlremote.
//
// This package implements the endpoints called by spreadsheet clients:
//
//   - POST /hello, /capitalize-sheet-names-prompt, /capitalize-sheet-names:
//     decode a book snapshot, run a BookService operation, return the
//     resulting snapshot with its actions
//   - GET /xlwings/alert: the HTML dialog shown by app.alert
//   - GET /xlwings/custom-functions-meta, /xlwings/custom-functions-code and
//     POST /xlwings/custom-functions-call: custom functions
//   - GET /: liveness
//   - everything else: static files, never cached
//
// Automation errors are returned as plain text with status 500 so that the
// client can show them to the user as is. Other errors use the JSON error
// envelope (domain.ErrorBody).
package handler
