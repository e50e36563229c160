package memstore

import (
	"context"
	"fmt"
	"sync"

	"semdex/internal/domain"
	"semdex/internal/vec"
)

// MemoryStore is an in-memory ChunkStore for tests and embedded use.
type MemoryStore struct {
	mu    sync.RWMutex
	dim   int
	units map[string]entry
}

type entry struct {
	unit   domain.TextUnit
	vector domain.EmbeddingVector
}

// NewMemoryStore creates an empty store enforcing canonicalDim.
func NewMemoryStore(canonicalDim int) *MemoryStore {
	return &MemoryStore{
		dim:   canonicalDim,
		units: make(map[string]entry),
	}
}

// Upsert stores a unit and its vector.
func (s *MemoryStore) Upsert(_ context.Context, unit domain.TextUnit, vector domain.EmbeddingVector) error {
	if len(vector.Values) != s.dim {
		return fmt.Errorf("%w: got %d dims, store expects %d", domain.ErrDimensionMismatch, len(vector.Values), s.dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[unit.UnitID] = entry{unit: unit, vector: vector}
	return nil
}

// Get returns a unit and its vector by ID.
func (s *MemoryStore) Get(_ context.Context, unitID string) (domain.TextUnit, domain.EmbeddingVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.units[unitID]
	if !ok {
		return domain.TextUnit{}, domain.EmbeddingVector{}, fmt.Errorf("%w: unit %s", domain.ErrNotFound, unitID)
	}
	return e.unit, e.vector, nil
}

// Search scans all stored vectors with cosine similarity.
func (s *MemoryStore) Search(_ context.Context, vector []float32, topK int) ([]domain.QueryResult, error) {
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query has %d dims, store expects %d", domain.ErrDimensionMismatch, len(vector), s.dim)
	}

	s.mu.RLock()
	candidates := make([]vec.Candidate, 0, len(s.units))
	for id, e := range s.units {
		candidates = append(candidates, vec.Candidate{
			UnitID:      id,
			DocumentID:  e.unit.DocumentID,
			Score:       vec.Cosine(vector, e.vector.Values),
			GeneratedAt: e.vector.Provenance.GeneratedAt,
		})
	}
	s.mu.RUnlock()

	ranked := vec.Rank(candidates, topK)
	results := make([]domain.QueryResult, len(ranked))
	for i, c := range ranked {
		results[i] = domain.QueryResult{
			UnitID:     c.UnitID,
			DocumentID: c.DocumentID,
			Score:      c.Score,
		}
	}
	return results, nil
}

// CountByDocument returns the number of units stored for a document.
func (s *MemoryStore) CountByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.units {
		if e.unit.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

// Count returns the total number of stored units.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.units), nil
}

// DeleteByDocument removes all units belonging to a document.
func (s *MemoryStore) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.units {
		if e.unit.DocumentID == documentID {
			delete(s.units, id)
		}
	}
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
