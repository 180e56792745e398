package provider

import (
	"fmt"
	"time"
)

// Kind identifies the transport a provider is reached over.
type Kind string

// Supported transport kinds.
const (
	// KindHTTP is request/response JSON-RPC over HTTP.
	KindHTTP Kind = "http"

	// KindStdio is a spawned subprocess speaking line-delimited JSON-RPC
	// on its stdin/stdout.
	KindStdio Kind = "stdio"

	// KindSocket is line-delimited JSON-RPC over a TCP connection.
	KindSocket Kind = "socket"
)

// Valid reports whether k is a known transport kind.
func (k Kind) Valid() bool {
	switch k {
	case KindHTTP, KindStdio, KindSocket:
		return true
	}
	return false
}

// Default connection settings applied when a descriptor leaves them unset.
const (
	DefaultTimeoutMS = 30_000
	DefaultRetries   = 0
)

// Descriptor describes one remote tool provider. Descriptors are immutable
// after registration; the registry hands out copies.
type Descriptor struct {
	// ID uniquely identifies the provider within a registry.
	ID string `yaml:"id" json:"id"`

	// DisplayName is the human-readable provider name used in generated
	// documentation. Defaults to ID.
	DisplayName string `yaml:"display_name,omitempty" json:"displayName,omitempty"`

	// Kind selects the transport: http, stdio, or socket.
	Kind Kind `yaml:"transport" json:"transport"`

	// URL is the JSON-RPC endpoint for http providers.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`

	// Headers are extra HTTP headers sent with every request, typically
	// credentials. Only meaningful for http providers.
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// Command is the executable launched for stdio providers.
	Command string `yaml:"command,omitempty" json:"command,omitempty"`

	// Args are passed to Command.
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`

	// Env is extra environment for the subprocess, merged over the parent
	// environment.
	Env map[string]string `yaml:"env,omitempty" json:"env,omitempty"`

	// Address is the host:port dialed for socket providers.
	Address string `yaml:"address,omitempty" json:"address,omitempty"`

	// TimeoutMS bounds every connection attempt and call to this provider.
	// Zero means DefaultTimeoutMS.
	TimeoutMS int `yaml:"timeout_ms,omitempty" json:"timeoutMs,omitempty"`

	// Retries is how many immediate retries a call adapter performs after
	// a transport failure. Zero means no retry.
	Retries int `yaml:"retries,omitempty" json:"retries,omitempty"`
}

// Timeout returns the per-call timeout as a duration, applying the default.
func (d Descriptor) Timeout() time.Duration {
	ms := d.TimeoutMS
	if ms <= 0 {
		ms = DefaultTimeoutMS
	}
	return time.Duration(ms) * time.Millisecond
}

// Label returns the display name, falling back to the ID.
func (d Descriptor) Label() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.ID
}

// validate checks the descriptor's internal consistency.
// Returned errors match ErrConfig.
func (d Descriptor) validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: provider id is required", ErrConfig)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: provider %q has unknown transport %q", ErrConfig, d.ID, d.Kind)
	}
	switch d.Kind {
	case KindHTTP:
		if d.URL == "" {
			return fmt.Errorf("%w: http provider %q requires url", ErrConfig, d.ID)
		}
	case KindStdio:
		if d.Command == "" {
			return fmt.Errorf("%w: stdio provider %q requires command", ErrConfig, d.ID)
		}
	case KindSocket:
		if d.Address == "" {
			return fmt.Errorf("%w: socket provider %q requires address", ErrConfig, d.ID)
		}
	}
	if d.TimeoutMS < 0 {
		return fmt.Errorf("%w: provider %q has negative timeout_ms", ErrConfig, d.ID)
	}
	if d.Retries < 0 {
		return fmt.Errorf("%w: provider %q has negative retries", ErrConfig, d.ID)
	}
	return nil
}

// clone returns a deep copy so registry callers cannot mutate stored state.
func (d Descriptor) clone() Descriptor {
	out := d
	out.Headers = cloneStringMap(d.Headers)
	out.Env = cloneStringMap(d.Env)
	if d.Args != nil {
		out.Args = append([]string(nil), d.Args...)
	}
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
