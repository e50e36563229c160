package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"semdex/internal/domain"
	"semdex/internal/vec"
)

var (
	bucketUnits   = []byte("units")
	bucketVectors = []byte("vectors")
)

// BoltStore is a ChunkStore backed by BoltDB. Vectors are mirrored in
// memory for brute-force cosine search; a vector index can replace
// the scan without touching the port.
type BoltStore struct {
	db  *bbolt.DB
	dim int

	mu      sync.RWMutex
	vectors map[string]memVector
}

type memVector struct {
	values      []float32
	documentID  string
	generatedAt time.Time
}

type unitRecord struct {
	DocumentID string `json:"document_id"`
	Content    string `json:"content"`
}

type vectorRecord struct {
	Values      []float32 `json:"values"`
	ProviderID  string    `json:"provider_id"`
	NativeDim   int       `json:"native_dim"`
	GeneratedAt int64     `json:"generated_at"`
}

// NewBoltStore opens or creates a BoltDB-backed store at path,
// enforcing canonicalDim on every write.
func NewBoltStore(path string, canonicalDim int) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketUnits, bucketVectors} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{
		db:      db,
		dim:     canonicalDim,
		vectors: make(map[string]memVector),
	}
	if err := s.loadVectors(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}

	return s, nil
}

// loadVectors mirrors all persisted vectors into memory for search.
func (s *BoltStore) loadVectors() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		units := tx.Bucket(bucketUnits)
		return tx.Bucket(bucketVectors).ForEach(func(k, v []byte) error {
			var rec vectorRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil // skip corrupted entries
			}
			var unit unitRecord
			if data := units.Get(k); data != nil {
				if err := json.Unmarshal(data, &unit); err != nil {
					return nil
				}
			}
			s.vectors[string(k)] = memVector{
				values:      rec.Values,
				documentID:  unit.DocumentID,
				generatedAt: time.Unix(rec.GeneratedAt, 0).UTC(),
			}
			return nil
		})
	})
}

// Upsert writes a unit and its vector in one transaction.
func (s *BoltStore) Upsert(_ context.Context, unit domain.TextUnit, vector domain.EmbeddingVector) error {
	if len(vector.Values) != s.dim {
		return fmt.Errorf("%w: got %d dims, store expects %d", domain.ErrDimensionMismatch, len(vector.Values), s.dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		unitData, err := json.Marshal(unitRecord{
			DocumentID: unit.DocumentID,
			Content:    unit.Content,
		})
		if err != nil {
			return err
		}
		vecData, err := json.Marshal(vectorRecord{
			Values:      vector.Values,
			ProviderID:  vector.Provenance.ProviderID,
			NativeDim:   vector.Provenance.NativeDim,
			GeneratedAt: vector.Provenance.GeneratedAt.Unix(),
		})
		if err != nil {
			return err
		}

		if err := tx.Bucket(bucketUnits).Put([]byte(unit.UnitID), unitData); err != nil {
			return err
		}
		return tx.Bucket(bucketVectors).Put([]byte(unit.UnitID), vecData)
	})
	if err != nil {
		return err
	}

	// Mirror at the same second precision the record persists with, so
	// recency tie-breaks rank identically before and after a reopen.
	s.vectors[unit.UnitID] = memVector{
		values:      vector.Values,
		documentID:  unit.DocumentID,
		generatedAt: time.Unix(vector.Provenance.GeneratedAt.Unix(), 0).UTC(),
	}
	return nil
}

// Get returns a unit and its vector by ID.
func (s *BoltStore) Get(_ context.Context, unitID string) (domain.TextUnit, domain.EmbeddingVector, error) {
	var unit domain.TextUnit
	var vector domain.EmbeddingVector

	err := s.db.View(func(tx *bbolt.Tx) error {
		unitData := tx.Bucket(bucketUnits).Get([]byte(unitID))
		if unitData == nil {
			return fmt.Errorf("%w: unit %s", domain.ErrNotFound, unitID)
		}
		var urec unitRecord
		if err := json.Unmarshal(unitData, &urec); err != nil {
			return err
		}
		unit = domain.TextUnit{
			UnitID:     unitID,
			DocumentID: urec.DocumentID,
			Content:    urec.Content,
		}

		vecData := tx.Bucket(bucketVectors).Get([]byte(unitID))
		if vecData == nil {
			return fmt.Errorf("%w: vector for unit %s", domain.ErrNotFound, unitID)
		}
		var vrec vectorRecord
		if err := json.Unmarshal(vecData, &vrec); err != nil {
			return err
		}
		vector = domain.EmbeddingVector{
			Values: vrec.Values,
			Provenance: domain.Provenance{
				ProviderID:  vrec.ProviderID,
				NativeDim:   vrec.NativeDim,
				GeneratedAt: time.Unix(vrec.GeneratedAt, 0).UTC(),
			},
		}
		return nil
	})

	return unit, vector, err
}

// Search scans the in-memory mirror with cosine similarity.
func (s *BoltStore) Search(_ context.Context, vector []float32, topK int) ([]domain.QueryResult, error) {
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query has %d dims, store expects %d", domain.ErrDimensionMismatch, len(vector), s.dim)
	}

	s.mu.RLock()
	candidates := make([]vec.Candidate, 0, len(s.vectors))
	for id, entry := range s.vectors {
		candidates = append(candidates, vec.Candidate{
			UnitID:      id,
			DocumentID:  entry.documentID,
			Score:       vec.Cosine(vector, entry.values),
			GeneratedAt: entry.generatedAt,
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
func (s *BoltStore) CountByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, entry := range s.vectors {
		if entry.documentID == documentID {
			count++
		}
	}
	return count, nil
}

// Count returns the total number of stored units.
func (s *BoltStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors), nil
}

// DeleteByDocument removes all units belonging to a document.
func (s *BoltStore) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, entry := range s.vectors {
		if entry.documentID == documentID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, id := range ids {
			if err := tx.Bucket(bucketUnits).Delete([]byte(id)); err != nil {
				return err
			}
			if err := tx.Bucket(bucketVectors).Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range ids {
		delete(s.vectors, id)
	}
	return nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
