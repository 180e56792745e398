package augment

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidEntry is returned when appending an entry with missing fields.
var ErrInvalidEntry = errors.New("augment: invalid entry")

// Entry is one augmentation note for a (provider, tool) pair.
type Entry struct {
	// Provider is the owning provider's ID.
	Provider string `yaml:"provider" json:"provider"`

	// Tool is the provider-local tool name.
	Tool string `yaml:"tool" json:"tool"`

	// CreatedAt records when the note was written.
	CreatedAt time.Time `yaml:"created_at" json:"createdAt"`

	// OutputShape describes the tool's real-world output structure.
	OutputShape string `yaml:"output_shape" json:"outputShape"`

	// ParsingExample is a worked example of parsing that output.
	ParsingExample string `yaml:"parsing_example" json:"parsingExample"`
}

func (e Entry) validate() error {
	if e.Provider == "" || e.Tool == "" {
		return fmt.Errorf("%w: provider and tool are required", ErrInvalidEntry)
	}
	if e.OutputShape == "" {
		return fmt.Errorf("%w: output shape is required", ErrInvalidEntry)
	}
	return nil
}

// Store is the append-only augmentation store.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use and must
//   serialize appends to the same (provider, tool) key.
// - Errors: Append returns ErrInvalidEntry for malformed entries and always
//   succeeds otherwise; there is no update or delete operation.
// - Ownership: returned slices are caller-owned snapshots in insertion
//   order.
type Store interface {
	// Append records one entry. Entries are immutable once written.
	Append(e Entry) error

	// List returns every entry for the key in insertion order; an empty
	// slice if none exist.
	List(providerID, tool string) ([]Entry, error)

	// Has reports whether at least one entry exists for the key.
	Has(providerID, tool string) bool
}

type key struct {
	provider string
	tool     string
}

// MemoryStore keeps augmentations in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[key][]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[key][]Entry)}
}

// Append records one entry.
func (s *MemoryStore) Append(e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	k := key{provider: e.Provider, tool: e.Tool}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[k] = append(s.entries[k], e)
	return nil
}

// List returns the entries for one key in insertion order.
func (s *MemoryStore) List(providerID, tool string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries[key{provider: providerID, tool: tool}]...), nil
}

// Has reports whether any entry exists for the key.
func (s *MemoryStore) Has(providerID, tool string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[key{provider: providerID, tool: tool}]) > 0
}
