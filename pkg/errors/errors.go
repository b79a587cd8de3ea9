// Package errors provides production-grade error handling for LogForge.
// It implements structured errors with codes, context, and stack traces.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Error codes for programmatic handling
type Code string

const (
	// Configuration errors (1xx)
	CodeConfigInvalid    Code = "E101"
	CodeConfigRead       Code = "E102"
	CodeInvalidParameter Code = "E103"

	// Labeling service errors (2xx)
	CodeRequestFailed   Code = "E201"
	CodeBadStatus       Code = "E202"
	CodeEmptyCompletion Code = "E203"

	// Graph and simulation errors (3xx)
	CodeUnknownNode      Code = "E301"
	CodeNoSuccessors     Code = "E302"
	CodeInvalidDateRange Code = "E303"

	// System errors (4xx)
	CodeContextCanceled Code = "E401"
	CodeTimeout         Code = "E402"
	CodePanic           Code = "E403"

	// Output errors (5xx)
	CodeWriteFailed   Code = "E501"
	CodeSinkInit      Code = "E502"
	CodeRenderFailed  Code = "E503"
	CodePublishFailed Code = "E504"

	// Unknown
	CodeUnknown Code = "E999"
)

// LogForgeError is the base error type for all LogForge errors.
type LogForgeError struct {
	Code       Code
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace []Frame
}

// Frame represents a stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *LogForgeError) Error() string {
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
func (e *LogForgeError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target error.
func (e *LogForgeError) Is(target error) bool {
	if t, ok := target.(*LogForgeError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error.
func (e *LogForgeError) WithContext(key string, value interface{}) *LogForgeError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new LogForgeError.
func New(code Code, message string) *LogForgeError {
	return &LogForgeError{
		Code:       code,
		Message:    message,
		StackTrace: captureStack(2),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code Code, message string) *LogForgeError {
	if err == nil {
		return nil
	}

	return &LogForgeError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStack(2),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *LogForgeError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// captureStack captures the current stack trace.
func captureStack(skip int) []Frame {
	var frames []Frame
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	pcs = pcs[:n]

	cf := runtime.CallersFrames(pcs)
	for {
		frame, more := cf.Next()
		frames = append(frames, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more || len(frames) >= 10 {
			break
		}
	}
	return frames
}

// FormatStack returns a formatted stack trace.
func (e *LogForgeError) FormatStack() string {
	var sb strings.Builder
	for _, f := range e.StackTrace {
		sb.WriteString(fmt.Sprintf("  at %s\n    %s:%d\n", f.Function, f.File, f.Line))
	}
	return sb.String()
}

// --- Convenience constructors ---

// RequestFailed creates a labeling-service transport error.
func RequestFailed(endpoint string, err error) *LogForgeError {
	return Wrap(err, CodeRequestFailed, "labeling request failed").
		WithContext("endpoint", endpoint)
}

// BadStatus creates an error for a non-success labeling response.
func BadStatus(endpoint string, status int) *LogForgeError {
	return New(CodeBadStatus, "labeling service returned non-success status").
		WithContext("endpoint", endpoint).
		WithContext("status", status)
}

// EmptyCompletion creates an error for a response with no usable text.
func EmptyCompletion(endpoint string) *LogForgeError {
	return New(CodeEmptyCompletion, "labeling response contained no completion").
		WithContext("endpoint", endpoint)
}

// UnknownNode creates an error for a walk reaching a node the graph does not contain.
func UnknownNode(node string) *LogForgeError {
	return New(CodeUnknownNode, "node not present in graph").
		WithContext("node", node)
}

// NoSuccessors creates an error for a non-terminal node with an empty outgoing set.
func NoSuccessors(node string) *LogForgeError {
	return New(CodeNoSuccessors, "non-terminal node has no successors").
		WithContext("node", node)
}

// PanicError wraps a recovered panic value.
func PanicError(recovered interface{}) *LogForgeError {
	return New(CodePanic, "recovered from panic").
		WithContext("panic", fmt.Sprintf("%v", recovered))
}

// ContextCanceled creates a cancellation error.
func ContextCanceled(operation string) *LogForgeError {
	return New(CodeContextCanceled, "operation canceled").
		WithContext("operation", operation)
}

// --- Error checking utilities ---

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	var lfErr *LogForgeError
	if errors.As(err, &lfErr) {
		return lfErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var lfErr *LogForgeError
	if errors.As(err, &lfErr) {
		return lfErr.Code
	}
	return CodeUnknown
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	code := GetCode(err)
	switch code {
	case CodeRequestFailed, CodeBadStatus, CodeTimeout:
		return true
	default:
		return false
	}
}

// IsFatal returns true if the error is unrecoverable.
func IsFatal(err error) bool {
	code := GetCode(err)
	switch code {
	case CodePanic, CodeConfigInvalid:
		return true
	default:
		return false
	}
}

// MultiError collects multiple errors.
type MultiError struct {
	Errors []error
}

// Error implements the error interface.
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(m.Errors)))
	for i, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors returns true if any errors were collected.
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// Combined returns nil if no errors, the single error if one, or the MultiError.
func (m *MultiError) Combined() error {
	switch len(m.Errors) {
	case 0:
		return nil
	case 1:
		return m.Errors[0]
	default:
		return m
	}
}
