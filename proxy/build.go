package proxy

import (
	"fmt"

	"github.com/jonwraymond/codebridge/catalog"
	"github.com/jonwraymond/codebridge/provider"
	"github.com/jonwraymond/codebridge/signature"
	"github.com/jonwraymond/codebridge/wire"
)

// Option configures adapter construction.
type Option func(*builder)

type builder struct {
	dial wire.DialFunc
}

// WithDialFunc overrides how adapters open connections. Intended for
// tests that substitute an in-memory provider.
func WithDialFunc(dial wire.DialFunc) Option {
	return func(b *builder) {
		if dial != nil {
			b.dial = dial
		}
	}
}

// Build materializes adapters for exactly the selected tools.
//
// The returned map is keyed by function name, matching the names the
// signature package generates for the same catalog. Tools outside the
// selection are not reachable through the result; a key absent from the
// catalog or naming a provider absent from the registry fails with
// ErrUnknownTool.
func Build(keys []catalog.Key, cat *catalog.Catalog, reg *provider.Registry, opts ...Option) (map[string]*Adapter, error) {
	b := builder{dial: wire.Dial}
	for _, opt := range opts {
		opt(&b)
	}

	names := signature.Names(cat)
	out := make(map[string]*Adapter, len(keys))
	for _, key := range keys {
		tool, ok := cat.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTool, key)
		}
		desc, err := reg.Resolve(key.Provider)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnknownTool, key, err)
		}

		resolved, err := resolveInputSchema(tool.InputSchema)
		if err != nil {
			// An unusable schema degrades to unvalidated calls, the
			// same stance signature generation takes.
			resolved = nil
		}

		out[names[key]] = &Adapter{
			desc:   desc,
			tool:   tool,
			name:   names[key],
			schema: resolved,
			dial:   b.dial,
		}
	}
	return out, nil
}
