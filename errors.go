package achrome

import (
	"errors"
	"fmt"
)

// Error type constants for classification and matching
const (
	// ErrorTypeNotFound indicates a query or command targeted a window or
	// tab that does not exist (anymore).
	ErrorTypeNotFound = "not_found"

	// ErrorTypeMultipleObjects indicates a Get query matched more than one
	// object when exactly one was expected.
	ErrorTypeMultipleObjects = "multiple_objects"

	// ErrorTypeScriptFailed indicates the osascript interpreter reported a
	// failure while running a generated script.
	ErrorTypeScriptFailed = "script_failed"

	// ErrorTypeDecodeFailed indicates interpreter output could not be
	// decoded as the expected AppleScript value.
	ErrorTypeDecodeFailed = "decode_failed"

	// ErrorTypeInvalidFilter indicates a filter criteria key or expression
	// was malformed.
	ErrorTypeInvalidFilter = "invalid_filter"
)

// AutomationError is a structured error with classification. It supports
// Go's error wrapping patterns with the Unwrap() method.
type AutomationError struct {
	Type    string `json:"type"`
	Cause   string `json:"cause"`
	Wrapped error  `json:"-"`
}

// Error implements the error interface
func (e *AutomationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Cause)
}

// Unwrap implements the error unwrapping interface for errors.Is and errors.As
func (e *AutomationError) Unwrap() error {
	return e.Wrapped
}

// NewAutomationError creates an AutomationError with the given type and a
// formatted cause.
func NewAutomationError(errorType, format string, args ...any) *AutomationError {
	return &AutomationError{Type: errorType, Cause: fmt.Sprintf(format, args...)}
}

func wrapAutomationError(errorType string, err error) *AutomationError {
	return &AutomationError{Type: errorType, Cause: err.Error(), Wrapped: err}
}

// IsErrorType reports whether err is an AutomationError of the given type.
func IsErrorType(err error, errorType string) bool {
	var automationErr *AutomationError
	if errors.As(err, &automationErr) {
		return automationErr.Type == errorType
	}
	return false
}

// IsNotFound reports whether err indicates a missing window or tab.
func IsNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}
