// Package errors provides structured error types for the Eventmill pipeline.
// All errors include a category, code, message, and retryable flag so the
// pipeline can decide per file whether to skip, degrade, or fail the run.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by pipeline failure domain.
type ErrorCategory string

const (
	// ErrCategoryInput covers unparseable files and missing required
	// columns; aborts that file only.
	ErrCategoryInput ErrorCategory = "INPUT"

	// ErrCategoryReference covers missing or unreadable reference feeds;
	// the run degrades but never aborts.
	ErrCategoryReference ErrorCategory = "REFERENCE"

	// ErrCategoryStore covers event store and manifest failures; fatal for
	// the file's run, the file stays eligible for reprocessing.
	ErrCategoryStore ErrorCategory = "STORE"

	// ErrCategoryExport covers artifact materialization failures.
	ErrCategoryExport ErrorCategory = "EXPORT"

	ErrCategoryInternal ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Input codes
	CodeUnparseableFile = "UNPARSEABLE_FILE"
	CodeMissingColumns  = "MISSING_COLUMNS"
	CodeBadTimestamp    = "BAD_TIMESTAMP"
	CodeEmptyFile       = "EMPTY_FILE"

	// Reference codes
	CodeFeedMissing    = "FEED_MISSING"
	CodeFeedUnreadable = "FEED_UNREADABLE"

	// Store codes
	CodeMergeFailed    = "MERGE_FAILED"
	CodeManifestFailed = "MANIFEST_FAILED"
	CodeResetFailed    = "RESET_FAILED"

	// Export codes
	CodeWriteFailed   = "WRITE_FAILED"
	CodePublishFailed = "PUBLISH_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// PipelineError is the structured error type used throughout the system.
type PipelineError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	File      string // input file the error relates to, if any
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *PipelineError) Error() string {
	prefix := fmt.Sprintf("[%s:%s]", e.Category, e.Code)
	if e.File != "" {
		prefix += " " + e.File + ":"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *PipelineError) Is(target error) bool {
	var t *PipelineError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new PipelineError.
func New(category ErrorCategory, code, message string) *PipelineError {
	return &PipelineError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category),
	}
}

// Wrap creates a new PipelineError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *PipelineError {
	return &PipelineError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category),
	}
}

// WithFile returns a copy of the error annotated with the input filename.
func (e *PipelineError) WithFile(file string) *PipelineError {
	cp := *e
	cp.File = file
	return &cp
}

// IsRetryable checks whether an error (or its chain) leaves the file
// eligible for reprocessing on the next pipeline invocation.
func IsRetryable(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a PipelineError.
func GetCategory(err error) ErrorCategory {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a PipelineError.
func GetCode(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// isRetryable maps the taxonomy onto retry behavior: store and export
// failures leave the file reprocessable; input errors do not, since the
// file content itself is broken until its hash changes.
func isRetryable(category ErrorCategory) bool {
	switch category {
	case ErrCategoryStore, ErrCategoryExport:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewInputError(code, message string, cause error) *PipelineError {
	return Wrap(ErrCategoryInput, code, message, cause)
}

func NewReferenceError(code, message string, cause error) *PipelineError {
	return Wrap(ErrCategoryReference, code, message, cause)
}

func NewStoreError(code, message string, cause error) *PipelineError {
	return Wrap(ErrCategoryStore, code, message, cause)
}

func NewExportError(code, message string, cause error) *PipelineError {
	return Wrap(ErrCategoryExport, code, message, cause)
}

func NewInternalError(message string, cause error) *PipelineError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
