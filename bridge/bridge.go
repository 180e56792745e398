package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/codebridge/augment"
	"github.com/jonwraymond/codebridge/catalog"
	"github.com/jonwraymond/codebridge/provider"
	"github.com/jonwraymond/codebridge/proxy"
	"github.com/jonwraymond/codebridge/sandbox"
	"github.com/jonwraymond/codebridge/signature"
	"github.com/jonwraymond/codebridge/wire"
)

// Bridge is the unified facade over discovery, signatures, call adapters,
// and sandboxed execution.
type Bridge struct {
	reg    *provider.Registry
	store  augment.Store
	dial   wire.DialFunc
	disc   *catalog.Discoverer
	engine *sandbox.Engine
	opts   Options

	mu  sync.RWMutex
	cat *catalog.Catalog
}

// New creates a Bridge with the given options.
func New(opts Options) (*Bridge, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	b := &Bridge{
		reg:   opts.Registry,
		store: opts.Store,
		dial:  opts.Dial,
		disc:  catalog.NewDiscoverer(catalog.WithDialFunc(opts.Dial)),
		opts:  opts,
	}
	b.engine = sandbox.NewEngine(sandbox.Config{
		DefaultTimeout:  opts.DefaultTimeout,
		MaxToolCalls:    opts.MaxToolCalls,
		HasAugmentation: opts.Store.Has,
		Logger:          opts.Logger,
	})
	return b, nil
}

// Discover runs a fresh discovery pass against every registered provider
// and replaces the Bridge's catalog snapshot. The returned catalog carries
// per-provider failure annotations; the call fails only when every provider
// is unreachable.
func (b *Bridge) Discover(ctx context.Context) (*catalog.Catalog, error) {
	cat, err := b.disc.Discover(ctx, b.reg)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.cat = cat
	b.mu.Unlock()
	return cat, nil
}

// Signatures generates the typed signatures and documentation for the
// selected tools, keyed by generated function name. Augmentation entries
// recorded for a tool appear in its documentation. A nil or empty selection
// returns every discovered tool.
func (b *Bridge) Signatures(ctx context.Context, keys []catalog.Key) (map[string]signature.Signature, error) {
	cat, err := b.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	all, err := signature.Generate(cat, b.store)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return all, nil
	}

	selected := make(map[catalog.Key]bool, len(keys))
	for _, k := range keys {
		selected[k] = true
	}
	out := make(map[string]signature.Signature, len(keys))
	for name, sig := range all {
		if selected[sig.Key] {
			out[name] = sig
		}
	}
	return out, nil
}

// RunCode executes agent source in a sandbox whose namespace holds exactly
// the selected tools. A zero timeout means the Bridge's default. The result
// reports the run's terminal status; see the sandbox package for how
// compile errors, timeouts, and the exploration gate are surfaced.
func (b *Bridge) RunCode(ctx context.Context, source string, keys []catalog.Key, timeout time.Duration) (sandbox.Result, error) {
	cat, err := b.snapshot(ctx)
	if err != nil {
		return sandbox.Result{}, err
	}
	adapters, err := proxy.Build(keys, cat, b.reg, proxy.WithDialFunc(b.dial))
	if err != nil {
		return sandbox.Result{}, err
	}

	bindings := make([]sandbox.Binding, 0, len(adapters))
	for name, ad := range adapters {
		key := ad.Key()
		bindings = append(bindings, sandbox.Binding{
			Name:     name,
			Provider: key.Provider,
			Tool:     key.Tool,
			Invoke:   ad.Invoke,
		})
	}

	return b.engine.Execute(ctx, sandbox.Request{
		Source:  source,
		Timeout: timeout,
	}, bindings)
}

// RecordAugmentation appends one observed-output note for a tool. Entries
// are immutable once written; corrections are made by appending another
// entry. The note shows up in the tool's documentation on the next
// Signatures call.
func (b *Bridge) RecordAugmentation(providerID, toolName, outputShape, parsingExample string) error {
	return b.store.Append(augment.Entry{
		Provider:       providerID,
		Tool:           toolName,
		OutputShape:    outputShape,
		ParsingExample: parsingExample,
	})
}

// Catalog returns the current snapshot without refreshing it, or nil when
// no discovery pass has run yet.
func (b *Bridge) Catalog() *catalog.Catalog {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cat
}

// snapshot returns the current catalog, running a discovery pass first if
// none exists yet.
func (b *Bridge) snapshot(ctx context.Context) (*catalog.Catalog, error) {
	b.mu.RLock()
	cat := b.cat
	b.mu.RUnlock()
	if cat != nil {
		return cat, nil
	}
	return b.Discover(ctx)
}
