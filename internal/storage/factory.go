package storage

import (
	"fmt"

	"financas/internal/config"
	"financas/internal/state"
)

// Backend identifies a persistence backend.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// IsValid reports whether the backend name is known.
func (b Backend) IsValid() bool {
	return b == BackendSQLite || b == BackendMemory
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// NewRepository builds the state repository selected by the configuration
// and returns it with its cleanup function.
func NewRepository(cfg *config.Config) (state.Repository, CleanupFunc, error) {
	backend := Backend(cfg.DataBackend)
	switch backend {
	case BackendSQLite:
		repo, err := NewSQLiteRepository(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		return repo, repo.Close, nil
	case BackendMemory:
		return NewMemoryRepository(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
