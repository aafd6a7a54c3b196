package storage

import (
	"context"
	"sync"

	"financas/internal/state"
)

// MemoryRepository keeps the state blob in process memory. Used by tests
// and by runs that deliberately skip durable persistence.
type MemoryRepository struct {
	mu      sync.Mutex
	payload []byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// LoadState implements state.Repository.
func (r *MemoryRepository) LoadState(_ context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.payload == nil {
		return nil, state.ErrNoState
	}
	return append([]byte(nil), r.payload...), nil
}

// SaveState implements state.Repository.
func (r *MemoryRepository) SaveState(_ context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payload = append([]byte(nil), payload...)
	return nil
}
