// Package bridge is the top-level facade tying the pipeline together:
// provider registry, discovery, signature generation, call adapters,
// sandboxed execution, and the augmentation store.
//
// A [Bridge] owns a registry and an augmentation store and keeps a snapshot
// of the most recent discovery pass. The usual flow is:
//
//	reg, _ := provider.Load("providers.yaml")
//	b, _ := bridge.New(bridge.Options{Registry: reg})
//	cat, _ := b.Discover(ctx)
//	sigs, _ := b.Signatures(ctx, keys)       // pick tools to expose
//	res, _ := b.RunCode(ctx, source, keys, 5*time.Second)
//
// Tool adapters and the sandbox namespace are rebuilt on every RunCode call
// from the current snapshot, so a stale catalog can never leak a connection
// or an unselected tool into a run.
//
// Contract:
// - Concurrency: a Bridge is safe for concurrent use.
// - Context: all blocking methods honor cancellation/deadlines.
// - Errors: option failures match ErrOptions; downstream failures keep their
//   package's sentinel (catalog.ErrNoProvidersReachable, proxy.ErrUnknownTool, ...).
// - Ownership: returned catalogs, signatures, and results are caller-owned snapshots.
package bridge
