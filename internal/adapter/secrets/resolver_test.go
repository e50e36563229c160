package secrets

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"semdex/internal/domain"
)

type countingSource struct {
	values map[string]string
	err    error
	calls  int
}

func (s *countingSource) Fetch(_ context.Context, name string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.values[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrSecretNotFound, name)
	}
	return v, nil
}

func TestResolverPrimaryHit(t *testing.T) {
	primary := &countingSource{values: map[string]string{"api_key": "from-vault"}}
	fallback := &countingSource{values: map[string]string{"api_key": "from-static"}}
	r := NewResolver(primary, fallback, time.Minute)

	v, err := r.Resolve(context.Background(), "api_key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "from-vault" {
		t.Errorf("expected vault value, got %q", v)
	}
	if fallback.calls != 0 {
		t.Error("fallback queried despite primary success")
	}
}

func TestResolverFallsBack(t *testing.T) {
	primary := &countingSource{err: errors.New("vault unreachable")}
	fallback := &countingSource{values: map[string]string{"api_key": "from-static"}}
	r := NewResolver(primary, fallback, time.Minute)

	v, err := r.Resolve(context.Background(), "api_key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "from-static" {
		t.Errorf("expected fallback value, got %q", v)
	}
}

func TestResolverBothFail(t *testing.T) {
	primary := &countingSource{err: errors.New("vault unreachable")}
	fallback := &countingSource{}
	r := NewResolver(primary, fallback, time.Minute)

	_, err := r.Resolve(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound, got %v", err)
	}
}

func TestResolverCaches(t *testing.T) {
	primary := &countingSource{values: map[string]string{"api_key": "v1"}}
	r := NewResolver(primary, nil, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), "api_key"); err != nil {
			t.Fatal(err)
		}
	}
	if primary.calls != 1 {
		t.Errorf("expected one source fetch across repeated resolutions, got %d", primary.calls)
	}
}

func TestResolverTTLExpiry(t *testing.T) {
	primary := &countingSource{values: map[string]string{"api_key": "v1"}}
	r := NewResolver(primary, nil, time.Minute)

	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return current }

	if _, err := r.Resolve(context.Background(), "api_key"); err != nil {
		t.Fatal(err)
	}

	// Rotate server-side, then cross the TTL boundary.
	primary.values["api_key"] = "v2"
	current = current.Add(61 * time.Second)

	v, err := r.Resolve(context.Background(), "api_key")
	if err != nil {
		t.Fatal(err)
	}
	if v != "v2" {
		t.Errorf("expected re-resolved value after TTL, got %q", v)
	}
	if primary.calls != 2 {
		t.Errorf("expected a second fetch after expiry, got %d", primary.calls)
	}
}

func TestResolverClear(t *testing.T) {
	primary := &countingSource{values: map[string]string{"api_key": "v1"}}
	r := NewResolver(primary, nil, time.Minute)

	if _, err := r.Resolve(context.Background(), "api_key"); err != nil {
		t.Fatal(err)
	}

	primary.values["api_key"] = "rotated"
	r.Clear()
	if r.Size() != 0 {
		t.Error("expected empty cache after Clear")
	}

	v, err := r.Resolve(context.Background(), "api_key")
	if err != nil {
		t.Fatal(err)
	}
	if v != "rotated" {
		t.Errorf("expected fresh value after Clear, got %q", v)
	}
}

func TestResolverForget(t *testing.T) {
	primary := &countingSource{values: map[string]string{"a": "1", "b": "2"}}
	r := NewResolver(primary, nil, time.Minute)

	ctx := context.Background()
	r.Resolve(ctx, "a")
	r.Resolve(ctx, "b")

	r.Forget("a")
	if r.Size() != 1 {
		t.Errorf("expected one cached entry after Forget, got %d", r.Size())
	}

	r.Resolve(ctx, "a")
	if primary.calls != 3 {
		t.Errorf("expected forgotten name to be re-fetched, got %d calls", primary.calls)
	}
}

func TestStaticSource(t *testing.T) {
	s := NewStaticSource(map[string]string{"api_key": "value"})

	if v, err := s.Fetch(context.Background(), "api_key"); err != nil || v != "value" {
		t.Errorf("Fetch() = %q, %v", v, err)
	}
	if _, err := s.Fetch(context.Background(), "missing"); !errors.Is(err, domain.ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound, got %v", err)
	}
}

func TestEnvSource(t *testing.T) {
	t.Setenv("SEMDEX_TEST_KEY", "from-env")
	s := NewEnvSource(map[string]string{"api_key": "SEMDEX_TEST_KEY", "unset": "SEMDEX_TEST_UNSET"})

	if v, err := s.Fetch(context.Background(), "api_key"); err != nil || v != "from-env" {
		t.Errorf("Fetch() = %q, %v", v, err)
	}
	if _, err := s.Fetch(context.Background(), "unset"); !errors.Is(err, domain.ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound for unset env var, got %v", err)
	}
	if _, err := s.Fetch(context.Background(), "unmapped"); !errors.Is(err, domain.ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound for unmapped name, got %v", err)
	}
}
