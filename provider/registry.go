package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Errors returned by registry operations.
var (
	// ErrConfig indicates a malformed or ambiguous provider configuration.
	// It is fatal at load time.
	ErrConfig = errors.New("provider: invalid configuration")

	// ErrNotFound is returned when resolving an unregistered provider ID.
	ErrNotFound = errors.New("provider: not found")
)

// Registry holds provider descriptors for the process lifetime.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Register returns ErrConfig on invalid or duplicate descriptors;
//   Resolve returns ErrNotFound for unknown IDs.
// - Ownership: descriptors are copied in and out; callers cannot mutate
//   registry state through returned values.
type Registry struct {
	mu    sync.RWMutex
	descs map[string]Descriptor
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{descs: make(map[string]Descriptor)}
}

// Register validates and stores a descriptor. It performs no network
// activity. Duplicate IDs fail with ErrConfig.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.descs[d.ID]; exists {
		return fmt.Errorf("%w: duplicate provider id %q", ErrConfig, d.ID)
	}
	r.descs[d.ID] = d.clone()
	return nil
}

// Resolve returns the descriptor registered under id.
func (r *Registry) Resolve(id string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descs[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return d.clone(), nil
}

// IDs returns all registered provider IDs sorted for deterministic output.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.descs))
	for id := range r.descs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descs)
}
