package wire

import (
	"errors"
	"fmt"
)

// ErrTransport is the sentinel matched by every *TransportError.
var ErrTransport = errors.New("wire: transport error")

// TransportError reports a transport or protocol failure while talking to
// one provider. Application-level tool errors are never TransportErrors.
type TransportError struct {
	// Provider is the provider ID the failure belongs to.
	Provider string

	// Op is the operation that failed: "dial", "initialize", "list",
	// "call", or "close".
	Op string

	// Err is the underlying failure.
	Err error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("wire: provider %q: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether this error matches ErrTransport, allowing
// sentinel-style checks without losing the wrapped cause.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
