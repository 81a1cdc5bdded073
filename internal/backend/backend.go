// Package backend selects and wires the configured storage implementation.
package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"piggybank/assets"
	"piggybank/internal/config"
	"piggybank/internal/log"
	"piggybank/internal/storage"
)

// Type names a storage backend.
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string { return string(t) }

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	return t == MemoryBackend || t == SQLiteBackend
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result bundles a store with its optional cleanup.
type Result struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// Open creates the store named by the configuration.
func Open(cfg *config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentBackend)
	}

	switch Type(cfg.DataBackend) {
	case MemoryBackend:
		var store *storage.MemoryStore
		if cfg.DataFile != "" {
			if err := seedDataFile(cfg.DataFile); err != nil {
				logger.Warn("could not seed demo ledger",
					log.FieldError, err,
					"data_file", cfg.DataFile)
			}
			store = storage.NewMemoryFromFile(cfg.DataFile)
		} else {
			store = storage.NewMemory()
		}
		logger.Info("Initialized memory backend",
			log.FieldBackend, MemoryBackend.String(),
			"data_file", cfg.DataFile)
		return &Result{Store: store, Cleanup: nil}, nil

	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend",
			log.FieldBackend, SQLiteBackend.String(),
			"db_path", cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}

// seedDataFile writes the demo ledger on first start. An existing data
// file is never touched.
func seedDataFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, assets.SeedData, 0o644)
}
