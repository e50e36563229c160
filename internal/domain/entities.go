package domain

import "time"

// TextUnit is a unit of document text with a stable identifier.
// Units are immutable: re-ingesting a document supersedes its units
// with new ones rather than mutating them in place.
type TextUnit struct {
	UnitID     string
	DocumentID string
	Content    string
}

// Provenance records which provider produced a vector and when.
type Provenance struct {
	ProviderID  string
	NativeDim   int
	GeneratedAt time.Time
}

// EmbeddingVector is a canonical-width embedding.
// Every persisted vector has exactly the configured canonical number
// of entries, regardless of which provider produced it.
type EmbeddingVector struct {
	Values     []float32
	Provenance Provenance
}

// ProviderDescriptor is static metadata about an embedding provider.
type ProviderDescriptor struct {
	ID        string
	NativeDim int
	Pooling   string
	Normalize bool
}

// QueryResult is a ranked retrieval hit. Produced transiently per
// query, never persisted.
type QueryResult struct {
	UnitID     string
	DocumentID string
	Score      float64
}
