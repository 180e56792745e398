package bridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/codebridge/augment"
	"github.com/jonwraymond/codebridge/provider"
	"github.com/jonwraymond/codebridge/sandbox"
	"github.com/jonwraymond/codebridge/wire"
)

// Default configuration values.
const (
	DefaultMaxToolCalls = 100
	DefaultTimeout      = 30 * time.Second
)

// ErrOptions indicates an invalid Options value.
var ErrOptions = errors.New("bridge: invalid options")

// Options configures a Bridge instance.
type Options struct {
	// Registry holds the provider descriptors to discover and call.
	// Required.
	Registry *provider.Registry

	// Store persists augmentation entries.
	// Default: an in-memory store that lives as long as the Bridge.
	Store augment.Store

	// Dial opens provider connections. Tests substitute in-process
	// providers here.
	// Default: wire.Dial.
	Dial wire.DialFunc

	// DefaultTimeout bounds a sandbox run when RunCode is called with a
	// zero timeout.
	// Default: 30s.
	DefaultTimeout time.Duration

	// MaxToolCalls caps tool invocations per sandbox run.
	// Default: 100. Negative means unlimited.
	MaxToolCalls int

	// Logger is an optional logger for observability.
	Logger sandbox.Logger
}

// validate checks that required fields are set.
func (o *Options) validate() error {
	if o.Registry == nil {
		return fmt.Errorf("%w: Registry is required", ErrOptions)
	}
	return nil
}

// applyDefaults sets default values for unset optional fields.
func (o *Options) applyDefaults() {
	if o.Store == nil {
		o.Store = augment.NewMemoryStore()
	}
	if o.Dial == nil {
		o.Dial = wire.Dial
	}
	if o.DefaultTimeout == 0 {
		o.DefaultTimeout = DefaultTimeout
	}
	if o.MaxToolCalls == 0 {
		o.MaxToolCalls = DefaultMaxToolCalls
	}
	if o.MaxToolCalls < 0 {
		o.MaxToolCalls = 0
	}
}
