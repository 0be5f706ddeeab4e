// Package domain defines the core domain models for xlremote.
//
// Domain models are plain value types without IO dependencies.
// This package contains:
//
//   - Snapshot: the JSON book snapshot exchanged with spreadsheet clients
//   - Action: a mutation the client must replay on the live workbook
//   - Address: A1 range parsing and formatting
//   - Errors: structured error definitions
package domain
