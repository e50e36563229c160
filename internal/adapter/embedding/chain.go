package embedding

import (
	"context"
	"errors"
	"fmt"

	"semdex/internal/domain"
	"semdex/internal/port"
)

// FallbackChain tries the primary provider and, on provider failure,
// retries against the secondary exactly once per request. When every
// provider is exhausted the request fails with
// domain.ErrEmbeddingUnavailable; a zero vector is never substituted,
// since callers could not tell "no content" from "provider down".
type FallbackChain struct {
	primary   port.Embedder
	secondary port.Embedder
}

// NewFallbackChain creates a chain over primary with an optional
// secondary. secondary may be nil.
func NewFallbackChain(primary, secondary port.Embedder) *FallbackChain {
	return &FallbackChain{primary: primary, secondary: secondary}
}

// Embed returns the raw vector and the descriptor of the provider
// that actually produced it, so provenance reflects reality after a
// fallback.
func (c *FallbackChain) Embed(ctx context.Context, text string) ([]float32, domain.ProviderDescriptor, error) {
	vec, err := c.primary.Embed(ctx, text)
	if err == nil {
		return vec, c.primary.Descriptor(), nil
	}

	// Bad input and missing credentials are not provider outages:
	// no retry against the secondary can change the outcome.
	if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrSecretNotFound) {
		return nil, domain.ProviderDescriptor{}, err
	}
	if ctx.Err() != nil {
		return nil, domain.ProviderDescriptor{}, err
	}

	if c.secondary == nil {
		return nil, domain.ProviderDescriptor{}, fmt.Errorf("%w: %s: %v", domain.ErrEmbeddingUnavailable, c.primary.Descriptor().ID, err)
	}

	vec, err2 := c.secondary.Embed(ctx, text)
	if err2 == nil {
		return vec, c.secondary.Descriptor(), nil
	}
	if errors.Is(err2, domain.ErrInvalidArgument) || errors.Is(err2, domain.ErrSecretNotFound) {
		return nil, domain.ProviderDescriptor{}, err2
	}

	return nil, domain.ProviderDescriptor{}, fmt.Errorf("%w: %s: %v; %s: %v",
		domain.ErrEmbeddingUnavailable,
		c.primary.Descriptor().ID, err,
		c.secondary.Descriptor().ID, err2)
}

// Descriptor returns the primary provider's descriptor; it identifies
// the configured chain for caching purposes.
func (c *FallbackChain) Descriptor() domain.ProviderDescriptor {
	return c.primary.Descriptor()
}
