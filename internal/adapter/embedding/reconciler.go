package embedding

import (
	"fmt"

	"semdex/internal/domain"
)

// Reconciler maps native-dimension vectors onto the canonical stored
// width. Narrower vectors are right-padded with zeros, which preserves
// direction in the leading subspace for same-provider comparisons but
// makes cross-provider similarity meaningless; callers should keep
// provenance attached and avoid mixing providers in one search.
type Reconciler struct {
	canonicalDim int
	warnf        func(format string, args ...any)
}

// NewReconciler creates a reconciler targeting canonicalDim. warnf
// receives a diagnostic whenever information is lost to truncation;
// nil disables diagnostics.
func NewReconciler(canonicalDim int, warnf func(format string, args ...any)) *Reconciler {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Reconciler{
		canonicalDim: canonicalDim,
		warnf:        warnf,
	}
}

// CanonicalDim returns the width every reconciled vector has.
func (r *Reconciler) CanonicalDim() int {
	return r.canonicalDim
}

// Reconcile maps raw onto the canonical width and attaches provenance.
// The raw slice is never aliased by the result.
func (r *Reconciler) Reconcile(raw []float32, prov domain.Provenance) (domain.EmbeddingVector, error) {
	if len(raw) == 0 {
		return domain.EmbeddingVector{}, fmt.Errorf("%w: empty raw vector from provider %s", domain.ErrInvalidArgument, prov.ProviderID)
	}

	values := make([]float32, r.canonicalDim)
	switch {
	case len(raw) == r.canonicalDim:
		copy(values, raw)
	case len(raw) < r.canonicalDim:
		copy(values, raw)
	default:
		// No provider in scope exceeds the canonical width by default;
		// information is lost here.
		r.warnf("truncating %d-dim vector from provider %s to canonical %d dims", len(raw), prov.ProviderID, r.canonicalDim)
		copy(values, raw[:r.canonicalDim])
	}

	if len(values) != r.canonicalDim {
		return domain.EmbeddingVector{}, fmt.Errorf("%w: reconciled %d dims, want %d", domain.ErrDimensionMismatch, len(values), r.canonicalDim)
	}

	return domain.EmbeddingVector{Values: values, Provenance: prov}, nil
}
