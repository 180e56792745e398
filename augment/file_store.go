package augment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// FileStore persists augmentations as one append-only YAML document stream
// per provider (<dir>/<provider>.yaml). Every entry is a separate document,
// so a file can be appended to without rewriting history and remains
// readable by humans.
//
// Appends to the same provider file are serialized by a per-provider lock;
// different providers append independently.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	mem *MemoryStore
}

// OpenFileStore opens (creating if needed) a directory-backed store and
// loads every existing provider document into memory.
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("augment: creating store dir: %w", err)
	}

	s := &FileStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
		mem:   NewMemoryStore(),
	}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

// Append validates the entry, appends it to the provider's document, and
// mirrors it in memory.
func (s *FileStore) Append(e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	lock := s.providerLock(e.Provider)
	lock.Lock()
	defer lock.Unlock()

	if err := s.appendToFile(e); err != nil {
		return err
	}
	return s.mem.Append(e)
}

// List returns the entries for one key in insertion order.
func (s *FileStore) List(providerID, tool string) ([]Entry, error) {
	return s.mem.List(providerID, tool)
}

// Has reports whether any entry exists for the key.
func (s *FileStore) Has(providerID, tool string) bool {
	return s.mem.Has(providerID, tool)
}

func (s *FileStore) providerLock(providerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[providerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[providerID] = lock
	}
	return lock
}

func (s *FileStore) appendToFile(e Entry) error {
	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("augment: encoding entry: %w", err)
	}

	path := s.providerPath(e.Provider)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("augment: opening %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(data)
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("augment: appending to %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) providerPath(providerID string) string {
	// Provider IDs must not introduce path separators into the file name.
	name := strings.ReplaceAll(providerID, string(os.PathSeparator), "_")
	return filepath.Join(s.dir, name+".yaml")
}

func (s *FileStore) loadAll() error {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("augment: scanning store dir: %w", err)
	}
	for _, path := range matches {
		if err := s.loadFile(path); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("augment: opening %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("augment: decoding %s: %w", path, err)
		}
		if e.Provider == "" && e.Tool == "" {
			continue
		}
		if err := s.mem.Append(e); err != nil {
			return fmt.Errorf("augment: loading %s: %w", path, err)
		}
	}
}
