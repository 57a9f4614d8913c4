package netlib

import (
	"context"
	"sync"

	"github.com/nvandessel/sirsweep/internal/graph"
)

type batchID struct {
	pIndex int
	batch  int
}

// MemoryStore implements BatchStore in memory for testing and development.
type MemoryStore struct {
	mu      sync.RWMutex
	batches map[batchID][]*graph.Graph
	loads   int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{batches: make(map[batchID][]*graph.Graph)}
}

// LoadBatch returns the stored graphs for (pIndex, batch).
func (s *MemoryStore) LoadBatch(ctx context.Context, pIndex, batch int) ([]*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	graphs, ok := s.batches[batchID{pIndex, batch}]
	if !ok {
		return nil, batchNotFound(pIndex, batch)
	}
	s.loads++
	out := make([]*graph.Graph, len(graphs))
	copy(out, graphs)
	return out, nil
}

// SaveBatch stores graphs under (pIndex, batch).
func (s *MemoryStore) SaveBatch(ctx context.Context, pIndex, batch int, graphs []*graph.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]*graph.Graph, len(graphs))
	copy(stored, graphs)
	s.batches[batchID{pIndex, batch}] = stored
	return nil
}

// Loads returns how many successful LoadBatch calls the store has served.
func (s *MemoryStore) Loads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
