package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"semdex/internal/adapter/cache"
	"semdex/internal/adapter/embedding"
	"semdex/internal/domain"
)

// EmbedUseCase turns text into canonical vectors: provider fallback
// chain, then dimension reconciliation, with an optional memo cache
// for repeated identical text. The same path serves ingestion and
// query embedding so stored and query vectors stay comparable.
type EmbedUseCase struct {
	chain      *embedding.FallbackChain
	reconciler *embedding.Reconciler
	texts      *cache.VectorCache
	now        func() time.Time
}

// NewEmbedUseCase creates the embedding pipeline. texts may be nil to
// disable result caching.
func NewEmbedUseCase(chain *embedding.FallbackChain, reconciler *embedding.Reconciler, texts *cache.VectorCache) *EmbedUseCase {
	return &EmbedUseCase{
		chain:      chain,
		reconciler: reconciler,
		texts:      texts,
		now:        time.Now,
	}
}

// EmbedText produces the canonical vector for text.
func (u *EmbedUseCase) EmbedText(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingVector{}, fmt.Errorf("%w: empty text", domain.ErrInvalidArgument)
	}

	chainID := u.chain.Descriptor().ID
	if u.texts != nil {
		if vector, ok := u.texts.Get(chainID, text); ok {
			return vector, nil
		}
	}

	raw, desc, err := u.chain.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingVector{}, err
	}

	vector, err := u.reconciler.Reconcile(raw, domain.Provenance{
		ProviderID:  desc.ID,
		NativeDim:   desc.NativeDim,
		GeneratedAt: u.now().UTC(),
	})
	if err != nil {
		return domain.EmbeddingVector{}, err
	}

	if u.texts != nil {
		u.texts.Put(chainID, text, vector)
	}
	return vector, nil
}

// CanonicalDim returns the width every produced vector has.
func (u *EmbedUseCase) CanonicalDim() int {
	return u.reconciler.CanonicalDim()
}
