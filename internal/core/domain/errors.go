package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DomainError represents a domain error with a structured error code.
//
// Codes follow the format XL-<AREA>-<NNNN>, where the leading digit of the
// number mirrors the HTTP status class the error maps to.
type DomainError struct {
	Code    string // Error code (e.g., "XL-AUTO-5002")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithDetailsf is WithDetails with fmt.Sprintf formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// AutomationCodePrefix prefixes every automation-layer error code.
const AutomationCodePrefix = "XL-AUTO-"

// IsAutomationError reports whether err originates in the automation layer.
// These errors are shown to the spreadsheet user verbatim.
func IsAutomationError(err error) bool {
	return strings.HasPrefix(GetErrorCode(err), AutomationCodePrefix)
}

// ============================================================================
// Automation Errors (AUTO)
// ============================================================================

var (
	// ErrVersionMismatch indicates the client and server protocol versions differ.
	ErrVersionMismatch = NewDomainError("XL-AUTO-5001", "client version differs from server version")

	// ErrSheetIndex indicates a sheet index outside the book.
	ErrSheetIndex = NewDomainError("XL-AUTO-5002", "sheet index out of range")

	// ErrSheetNotFound indicates no sheet has the requested name.
	ErrSheetNotFound = NewDomainError("XL-AUTO-5003", "sheet not found")

	// ErrInvalidSheetName indicates a sheet name Excel would reject.
	ErrInvalidSheetName = NewDomainError("XL-AUTO-5004", "invalid sheet name")

	// ErrDuplicateSheetName indicates a sheet name already used in the book.
	ErrDuplicateSheetName = NewDomainError("XL-AUTO-5005", "sheet name already exists")

	// ErrInvalidAddress indicates a malformed A1 range address.
	ErrInvalidAddress = NewDomainError("XL-AUTO-5006", "invalid range address")

	// ErrInvalidAlert indicates unsupported alert buttons or mode.
	ErrInvalidAlert = NewDomainError("XL-AUTO-5007", "invalid alert arguments")

	// ErrFunctionNotFound indicates an unknown custom function.
	ErrFunctionNotFound = NewDomainError("XL-AUTO-5008", "custom function not found")

	// ErrFunctionFailed indicates a custom function returned an error.
	ErrFunctionFailed = NewDomainError("XL-AUTO-5009", "custom function failed")

	// ErrBookClosed indicates use of a book after it was released.
	ErrBookClosed = NewDomainError("XL-AUTO-5010", "book is closed")

	// ErrInvalidArguments indicates custom function arguments that do not
	// match the declared parameters.
	ErrInvalidArguments = NewDomainError("XL-AUTO-5011", "invalid function arguments")

	// ErrInvalidValue indicates a value that cannot be written to a range.
	ErrInvalidValue = NewDomainError("XL-AUTO-5012", "invalid range value")

	// ErrInvalidName indicates a malformed defined name.
	ErrInvalidName = NewDomainError("XL-AUTO-5013", "invalid defined name")
)

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrAuthMissing indicates no Authorization header was provided.
	ErrAuthMissing = NewDomainError("XL-AUTH-4010", "authorization required")

	// ErrAuthInvalid indicates the Authorization header did not match.
	ErrAuthInvalid = NewDomainError("XL-AUTH-4011", "invalid authorization")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("XL-SYS-5000", "internal server error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("XL-SYS-4000", "bad request")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = NewDomainError("XL-SYS-4040", "not found")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("XL-SYS-4290", "too many requests")
)

// ErrorBody is the JSON body of every error response except automation
// errors, which are sent as plain text.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Time      string `json:"time"`
}

// NewErrorBody stamps an ErrorBody with the current UTC time.
func NewErrorBody(requestID, code, message string, details any) ErrorBody {
	return ErrorBody{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Time:      time.Now().UTC().Format(time.RFC3339),
	}
}
