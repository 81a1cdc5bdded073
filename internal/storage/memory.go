package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// MemoryStore keeps blobs in process memory, optionally mirrored to a single
// JSON file so state survives a restart. All stored blobs are JSON documents,
// which keeps the mirror file readable.
type MemoryStore struct {
	mu      sync.Mutex
	path    string
	entries map[string]json.RawMessage
}

// NewMemory returns an in-memory store with no file mirror.
func NewMemory() *MemoryStore {
	return &MemoryStore{entries: make(map[string]json.RawMessage)}
}

// NewMemoryFromFile loads a store mirrored at path. A missing or corrupt file
// yields an empty store rather than an error.
func NewMemoryFromFile(path string) *MemoryStore {
	s := &MemoryStore{path: path, entries: make(map[string]json.RawMessage)}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		slog.Warn("Discarding corrupt store file", "path", path, "error", err)
		s.entries = make(map[string]json.RawMessage)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(json.RawMessage, len(blob))
	copy(cp, blob)
	s.entries[key] = cp
	return s.persistLocked()
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return s.persistLocked()
}

// persistLocked writes the mirror file atomically (tmp + rename).
func (s *MemoryStore) persistLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
