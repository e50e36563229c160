package secrets

import (
	"context"
	"fmt"
	"os"

	"semdex/internal/domain"
)

// StaticSource serves secrets from a fixed in-memory map. Used as the
// fallback configuration source and in tests.
type StaticSource struct {
	values map[string]string
}

// NewStaticSource creates a source over the given values.
func NewStaticSource(values map[string]string) *StaticSource {
	if values == nil {
		values = make(map[string]string)
	}
	return &StaticSource{values: values}
}

// Fetch returns the configured value for name.
func (s *StaticSource) Fetch(_ context.Context, name string) (string, error) {
	v, ok := s.values[name]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrSecretNotFound, name)
	}
	return v, nil
}

// EnvSource maps logical secret names to environment variables and
// reads the environment at fetch time, so values loaded late (e.g.
// from a .env file) are still picked up.
type EnvSource struct {
	mapping map[string]string
}

// NewEnvSource creates a source over a logical-name to env-var mapping.
func NewEnvSource(mapping map[string]string) *EnvSource {
	if mapping == nil {
		mapping = make(map[string]string)
	}
	return &EnvSource{mapping: mapping}
}

// Fetch returns the environment value mapped to name.
func (s *EnvSource) Fetch(_ context.Context, name string) (string, error) {
	envVar, ok := s.mapping[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrSecretNotFound, name)
	}
	v := os.Getenv(envVar)
	if v == "" {
		return "", fmt.Errorf("%w: %s (env %s unset)", domain.ErrSecretNotFound, name, envVar)
	}
	return v, nil
}
