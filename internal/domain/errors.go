package domain

import "errors"

// Domain errors represent pipeline failures callers are expected to
// branch on with errors.Is. Infrastructure errors wrap these at the
// adapter boundary.
var (
	// ErrNotFound indicates a requested unit does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSecretNotFound indicates neither the vault nor the static
	// configuration yielded a value for a logical secret name.
	// Surfaced immediately: no retry without new credentials can succeed.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrProviderUnavailable indicates a single embedding provider
	// failed (network, quota, or model-load failure).
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrEmbeddingUnavailable indicates every provider in the fallback
	// chain was exhausted for a request.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrDimensionMismatch indicates a vector violated the canonical
	// width after reconciliation. Persistence must reject the write.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidArgument indicates malformed caller input, such as a
	// non-positive top-k or empty text.
	ErrInvalidArgument = errors.New("invalid argument")
)
