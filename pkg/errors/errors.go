package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (1xxx)
	ErrCodeConnectionFailed     ErrorCode = "NWFL1001"
	ErrCodeConnectionTimeout    ErrorCode = "NWFL1002"
	ErrCodeAuthenticationFailed ErrorCode = "NWFL1003"

	// Configuration errors (2xxx)
	ErrCodeConfigNotFound ErrorCode = "NWFL2001"
	ErrCodeConfigInvalid  ErrorCode = "NWFL2002"

	// Migration errors (3xxx)
	ErrCodeTableCreate ErrorCode = "NWFL3001"
	ErrCodeTableLoad   ErrorCode = "NWFL3002"
	ErrCodeTypeMapping ErrorCode = "NWFL3003"
	ErrCodeViewCreate  ErrorCode = "NWFL3004"

	// SQL execution errors (4xxx)
	ErrCodeSQLSyntax    ErrorCode = "NWFL4001"
	ErrCodeSQLExecution ErrorCode = "NWFL4002"
	ErrCodeSQLNoResults ErrorCode = "NWFL4003"

	// Verification errors (5xxx)
	ErrCodeVerificationFailed ErrorCode = "NWFL5001"

	// Validation errors (6xxx)
	ErrCodeValidationFailed ErrorCode = "NWFL6001"
	ErrCodeRequiredField    ErrorCode = "NWFL6002"

	// System errors (9xxx)
	ErrCodeInternal ErrorCode = "NWFL9001"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, requires immediate attention
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed, but system continues
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with issues
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Timestamp   time.Time
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  SeverityError,
		Context:   make(map[string]interface{}),
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit its context
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors

// ConnectionError creates a connection-related error. The system name tells
// the operator whether the source or the target refused the connection.
func ConnectionError(system, message string, cause error) *AppError {
	return Wrap(cause, ErrCodeConnectionFailed, message).
		WithContext("system", system).
		WithSuggestions(
			"Check your network connection",
			fmt.Sprintf("Verify the %s endpoint is accessible", system),
			"Run 'northflake setup' to review connection settings",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Run 'northflake setup' to reconfigure",
		)
}

// SQLError creates an SQL execution error
func SQLError(message string, query string, cause error) *AppError {
	return Wrap(cause, ErrCodeSQLExecution, message).
		WithContext("query", truncateString(query, 200))
}

// TypeMappingError creates a table creation / type mapping error, fatal for
// the table being migrated.
func TypeMappingError(table string, cause error) *AppError {
	return Wrap(cause, ErrCodeTypeMapping, fmt.Sprintf("Failed to create target table %s", table)).
		WithContext("table", table).
		WithSuggestions(
			"Verify the target role can create tables in the database",
			"Check the column type definitions for the table",
		)
}

// ValidationError creates a validation error
func ValidationError(field string, value interface{}, reason string) *AppError {
	return New(ErrCodeValidationFailed, fmt.Sprintf("Validation failed for %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("value", value).
		WithSeverity(SeverityWarning)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
