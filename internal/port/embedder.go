package port

import (
	"context"

	"semdex/internal/domain"
)

// Embedder converts text into a vector of the provider's native
// dimensionality. Implementations must be safe for concurrent use.
type Embedder interface {
	// Embed generates an embedding for the given text. The returned
	// vector has Descriptor().NativeDim entries. Failures surface as
	// errors wrapping domain.ErrProviderUnavailable; a zero vector is
	// never substituted for a failure.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Descriptor returns static metadata about this provider.
	Descriptor() domain.ProviderDescriptor
}
