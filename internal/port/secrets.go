package port

import "context"

// SecretSource yields credential values by logical name. Sources are
// read-only from the pipeline's perspective.
type SecretSource interface {
	// Fetch returns the value for a logical secret name. A missing
	// value surfaces as an error wrapping domain.ErrSecretNotFound;
	// any other error means the source itself failed.
	Fetch(ctx context.Context, name string) (string, error)
}
