// Package errors provides structured error handling for salesbench.
// Errors carry a code identifying the benchmark phase that failed, which
// drives the propagation policy: generation and report errors abort the
// run, write and query errors degrade to missing matrix cells.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an error by benchmark phase.
type Code string

const (
	// Generation errors (1xx) - fatal, abort the run.
	CodeGenerateFailed Code = "E101"
	CodeDatasetLoad    Code = "E102"
	CodeDatasetPersist Code = "E103"

	// Write errors (2xx) - downgraded to a missing artifact.
	CodeWriteFailed Code = "E201"
	CodeWriteFlush  Code = "E202"

	// Query errors (3xx) - downgraded to a missing cell.
	CodeEngineInit   Code = "E301"
	CodeRegisterView Code = "E302"
	CodeQueryFailed  Code = "E303"

	// Report errors (4xx) - fatal, final step has no fallback.
	CodeTableRender   Code = "E401"
	CodeChartRender   Code = "E402"
	CodeNotebookWrite Code = "E403"
	CodeWorkbookWrite Code = "E404"

	CodeUnknown Code = "E999"
)

// BenchError is the error type used across the benchmark phases.
type BenchError struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *BenchError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *BenchError) Unwrap() error {
	return e.Cause
}

// Is matches on code so callers can branch on phase.
func (e *BenchError) Is(target error) bool {
	if t, ok := target.(*BenchError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds a key-value pair to the error.
func (e *BenchError) WithContext(key string, value interface{}) *BenchError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new BenchError.
func New(code Code, message string) *BenchError {
	return &BenchError{Code: code, Message: message}
}

// Wrap wraps an existing error. Returns nil when err is nil.
func Wrap(err error, code Code, message string) *BenchError {
	if err == nil {
		return nil
	}
	return &BenchError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *BenchError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// GetCode extracts the error code, or CodeUnknown.
func GetCode(err error) Code {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeUnknown
}

// IsFatal reports whether the error must abort the run. Generation and
// report failures are fatal; write and query failures are not.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeGenerateFailed, CodeDatasetLoad, CodeDatasetPersist,
		CodeTableRender, CodeChartRender, CodeNotebookWrite, CodeWorkbookWrite:
		return true
	default:
		return false
	}
}

// --- Convenience constructors ---

// WriteFailed marks a format write failure.
func WriteFailed(format string, err error) *BenchError {
	return Wrap(err, CodeWriteFailed, "format write failed").
		WithContext("format", format)
}

// QueryFailed marks a single matrix cell failure.
func QueryFailed(format, query string, err error) *BenchError {
	return Wrap(err, CodeQueryFailed, "query execution failed").
		WithContext("format", format).
		WithContext("query", query)
}
