// Package errors provides a lightweight structured error type (BlogPubError)
// for category-based classification and exit-code mapping in the CLI and daemon.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a blogpub error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"

	// External system integration errors
	CategoryNetwork ErrorCategory = "network"
	CategoryGit     ErrorCategory = "git"

	// Generation and processing errors
	CategoryGenerator  ErrorCategory = "generator"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// BlogPubError is a structured error with category, severity, and context
type BlogPubError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BlogPubError
type ContextFields map[string]any

// Error implements the error interface
func (e *BlogPubError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BlogPubError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BlogPubError) WithContext(key string, value any) *BlogPubError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BlogPubError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BlogPubError {
	return &BlogPubError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BlogPubError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BlogPubError {
	return &BlogPubError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category. Wrapped
// errors are unwrapped, so pipeline step errors classify by their cause.
func IsCategory(err error, category ErrorCategory) bool {
	var bpe *BlogPubError
	if stderrors.As(err, &bpe) {
		return bpe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a BlogPubError
func GetCategory(err error) ErrorCategory {
	var bpe *BlogPubError
	if stderrors.As(err, &bpe) {
		return bpe.Category
	}
	return CategoryInternal
}
