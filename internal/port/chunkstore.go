package port

import (
	"context"

	"semdex/internal/domain"
)

// ChunkStore persists text units with their canonical vectors and
// supports similarity search. The store owns units once written; the
// pipeline never mutates a persisted unit.
type ChunkStore interface {
	// Get returns a unit and its vector by ID.
	// Returns an error wrapping domain.ErrNotFound for unknown IDs.
	Get(ctx context.Context, unitID string) (domain.TextUnit, domain.EmbeddingVector, error)

	// Upsert writes a unit and its vector. Rejects vectors whose
	// length differs from the store's canonical width with an error
	// wrapping domain.ErrDimensionMismatch.
	Upsert(ctx context.Context, unit domain.TextUnit, vector domain.EmbeddingVector) error

	// Search returns up to topK results ordered by descending cosine
	// similarity, ties broken by most recent generation time. An empty
	// corpus yields an empty slice, not an error.
	Search(ctx context.Context, vector []float32, topK int) ([]domain.QueryResult, error)

	// CountByDocument returns the number of units stored for a document.
	CountByDocument(ctx context.Context, documentID string) (int, error)

	// Count returns the total number of stored units.
	Count(ctx context.Context) (int, error)

	// DeleteByDocument removes all units for a document. Used to
	// supersede units on re-ingestion.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}
