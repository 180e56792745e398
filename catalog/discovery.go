package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonwraymond/codebridge/provider"
	"github.com/jonwraymond/codebridge/wire"
)

// ErrNoProvidersReachable is returned when a discovery pass against a
// non-empty registry fails for every provider.
var ErrNoProvidersReachable = errors.New("catalog: no providers reachable")

// Discoverer runs discovery passes against a provider registry.
type Discoverer struct {
	dial wire.DialFunc
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithDialFunc overrides how connections are opened. Used by tests and
// in-process embedding; defaults to wire.Dial.
func WithDialFunc(dial wire.DialFunc) Option {
	return func(d *Discoverer) {
		if dial != nil {
			d.dial = dial
		}
	}
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(opts ...Option) *Discoverer {
	d := &Discoverer{dial: wire.Dial}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover builds a fresh catalog from every provider in the registry.
//
// Providers are contacted concurrently, each bounded by its own configured
// timeout, so one hung provider never blocks the rest. Per-provider
// failures are recorded on the catalog; Discover itself fails only when
// every provider is unreachable.
func (d *Discoverer) Discover(ctx context.Context, reg *provider.Registry) (*Catalog, error) {
	ids := reg.IDs()

	cat := &Catalog{tools: make(map[Key]Tool)}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, id := range ids {
		desc, err := reg.Resolve(id)
		if err != nil {
			// Registry contents cannot change mid-pass; treat as a failure
			// annotation anyway rather than aborting the whole pass.
			mu.Lock()
			cat.failures = append(cat.failures, ProviderError{Provider: id, Err: err})
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(desc provider.Descriptor) {
			defer wg.Done()

			tools, err := d.listProvider(ctx, desc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				cat.failures = append(cat.failures, ProviderError{Provider: desc.ID, Err: err})
				return
			}
			for _, t := range tools {
				cat.tools[t.Key()] = t
			}
		}(desc)
	}
	wg.Wait()

	if len(ids) > 0 && len(cat.failures) == len(ids) {
		errs := make([]error, 0, len(cat.failures)+1)
		errs = append(errs, ErrNoProvidersReachable)
		for i := range cat.failures {
			errs = append(errs, &cat.failures[i])
		}
		return nil, errors.Join(errs...)
	}
	return cat, nil
}

// listProvider opens a connection, enumerates tools, and closes the
// connection before returning.
func (d *Discoverer) listProvider(ctx context.Context, desc provider.Descriptor) ([]Tool, error) {
	pctx, cancel := context.WithTimeout(ctx, desc.Timeout())
	defer cancel()

	conn, err := d.dial(pctx, desc)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	listed, err := conn.ListTools(pctx)
	if err != nil {
		return nil, err
	}

	out := make([]Tool, 0, len(listed))
	for _, mt := range listed {
		if mt.Name == "" {
			return nil, fmt.Errorf("provider %q listed a tool with no name", desc.ID)
		}
		out = append(out, Tool{Tool: mt, Provider: desc.ID})
	}
	return out, nil
}
