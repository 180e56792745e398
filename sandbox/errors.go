package sandbox

import (
	"errors"
	"fmt"
)

// Sentinel errors for error classification.
var (
	// ErrConfiguration indicates an invalid or incomplete engine
	// configuration or a malformed execution request.
	ErrConfiguration = errors.New("configuration error")

	// ErrCompile indicates the submitted source failed to compile.
	ErrCompile = errors.New("compile error")

	// ErrTimeout indicates the run exceeded its wall-clock budget.
	ErrTimeout = errors.New("execution timeout")

	// ErrLimitExceeded indicates the run hit its tool-call limit.
	ErrLimitExceeded = errors.New("limit exceeded")
)

// CodeError describes a compile failure with optional source location.
// Line numbers refer to the submitted source, 1-based; zero means unknown.
type CodeError struct {
	// Message is the compiler's diagnostic text.
	Message string

	// Line is the 1-based line number in the submitted source.
	Line int

	// Column is the 1-based column number.
	Column int

	// Err is the underlying compiler error, if any.
	Err error
}

// Error returns the diagnostic, including line and column when known.
func (e *CodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, col %d)", e.Message, e.Line, e.Column)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *CodeError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target.
// CodeError matches ErrCompile to allow sentinel-style checking.
func (e *CodeError) Is(target error) bool {
	return target == ErrCompile
}
