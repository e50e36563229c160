package embedding

import (
	"errors"
	"testing"
	"time"

	"semdex/internal/domain"
)

func testProvenance(dim int) domain.Provenance {
	return domain.Provenance{
		ProviderID:  "test",
		NativeDim:   dim,
		GeneratedAt: time.Now(),
	}
}

func TestReconcilePassThrough(t *testing.T) {
	r := NewReconciler(4, nil)
	raw := []float32{0.1, 0.2, 0.3, 0.4}

	vec, err := r.Reconcile(raw, testProvenance(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec.Values) != 4 {
		t.Fatalf("expected 4 dims, got %d", len(vec.Values))
	}
	for i, v := range raw {
		if vec.Values[i] != v {
			t.Errorf("entry %d changed: %f != %f", i, vec.Values[i], v)
		}
	}
}

func TestReconcilePadding(t *testing.T) {
	r := NewReconciler(1536, nil)
	raw := make([]float32, 384)
	for i := range raw {
		raw[i] = float32(i+1) / 1000
	}

	vec, err := r.Reconcile(raw, testProvenance(384))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec.Values) != 1536 {
		t.Fatalf("expected 1536 dims, got %d", len(vec.Values))
	}
	for i := 0; i < 384; i++ {
		if vec.Values[i] != raw[i] {
			t.Errorf("leading entry %d changed: %f != %f", i, vec.Values[i], raw[i])
		}
	}
	for i := 384; i < 1536; i++ {
		if vec.Values[i] != 0 {
			t.Fatalf("entry %d not zero-padded: %f", i, vec.Values[i])
		}
	}
}

func TestReconcileTruncation(t *testing.T) {
	warned := false
	r := NewReconciler(4, func(format string, args ...any) { warned = true })

	raw := []float32{1, 2, 3, 4, 5, 6}
	vec, err := r.Reconcile(raw, testProvenance(6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec.Values) != 4 {
		t.Fatalf("expected 4 dims, got %d", len(vec.Values))
	}
	for i := 0; i < 4; i++ {
		if vec.Values[i] != raw[i] {
			t.Errorf("entry %d: %f != %f", i, vec.Values[i], raw[i])
		}
	}
	if !warned {
		t.Error("expected a truncation diagnostic")
	}
}

func TestReconcileEmptyInput(t *testing.T) {
	r := NewReconciler(4, nil)

	_, err := r.Reconcile(nil, testProvenance(0))
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestReconcileDoesNotAliasInput(t *testing.T) {
	r := NewReconciler(3, nil)
	raw := []float32{1, 2, 3}

	vec, err := r.Reconcile(raw, testProvenance(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw[0] = 99
	if vec.Values[0] == 99 {
		t.Error("reconciled vector aliases the input slice")
	}
}

func TestReconcileAttachesProvenance(t *testing.T) {
	r := NewReconciler(4, nil)
	prov := testProvenance(2)

	vec, err := r.Reconcile([]float32{1, 2}, prov)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec.Provenance.ProviderID != "test" || vec.Provenance.NativeDim != 2 {
		t.Errorf("provenance not attached: %+v", vec.Provenance)
	}
}
