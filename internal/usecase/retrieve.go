package usecase

import (
	"context"
	"fmt"
	"strings"

	"semdex/internal/domain"
	"semdex/internal/port"
)

// RetrieveUseCase ranks stored units against a query. The query is
// embedded through the same provider-chain and reconciliation path
// used at ingestion time; similarity scoring is delegated to the
// store, which returns results ordered higher-is-better.
type RetrieveUseCase struct {
	embedder *EmbedUseCase
	store    port.ChunkStore
}

// NewRetrieveUseCase creates a retrieve use case.
func NewRetrieveUseCase(embedder *EmbedUseCase, store port.ChunkStore) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder: embedder,
		store:    store,
	}
}

// Query returns up to topK results ordered by descending similarity.
// An empty corpus yields an empty result, not an error.
func (u *RetrieveUseCase) Query(ctx context.Context, text string, topK int) ([]domain.QueryResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidArgument, topK)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}

	vector, err := u.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := u.store.Search(ctx, vector.Values, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return results, nil
}
