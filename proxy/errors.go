package proxy

import (
	"errors"
	"fmt"
)

// Errors returned by adapter construction and invocation.
var (
	// ErrInvalidArgument indicates the caller's argument violates the
	// tool's input schema. Raised before any connection is opened and
	// never retried.
	ErrInvalidArgument = errors.New("proxy: invalid argument")

	// ErrUnknownTool indicates a selected key is not in the catalog.
	ErrUnknownTool = errors.New("proxy: unknown tool")

	// ErrInvocation is the sentinel matched by every *InvocationError.
	ErrInvocation = errors.New("proxy: tool invocation error")
)

// InvocationError reports a tool call that failed at the transport or
// protocol level after exhausting the provider's retry budget.
type InvocationError struct {
	// Provider and Tool identify the call.
	Provider string
	Tool     string

	// Attempts is how many times the call was tried.
	Attempts int

	// Err is the last underlying failure.
	Err error
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("proxy: calling %s:%s failed after %d attempt(s): %v",
		e.Provider, e.Tool, e.Attempts, e.Err)
}

func (e *InvocationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether this error matches ErrInvocation.
func (e *InvocationError) Is(target error) bool {
	return target == ErrInvocation
}
