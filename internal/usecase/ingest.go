package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"semdex/internal/adapter/chunker"
	"semdex/internal/adapter/fs"
	"semdex/internal/domain"
	"semdex/internal/port"
)

// IngestUseCase walks files, chunks them, embeds each chunk, and
// persists unit+vector pairs. A chunk whose embedding fails is not
// written at all — no partial or placeholder vector — so a later
// re-ingestion can reprocess it.
type IngestUseCase struct {
	walker   *fs.Walker
	chunker  *chunker.SentenceChunker
	embedder *EmbedUseCase
	store    port.ChunkStore

	// Progress is called once per processed file when set.
	Progress func(path string, current, total int)
}

// NewIngestUseCase creates an ingest use case.
func NewIngestUseCase(walker *fs.Walker, chunker *chunker.SentenceChunker, embedder *EmbedUseCase, store port.ChunkStore) *IngestUseCase {
	return &IngestUseCase{
		walker:   walker,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
	}
}

// IngestResult summarizes an ingestion run.
type IngestResult struct {
	FilesIngested int
	UnitsWritten  int
	UnitsFailed   int
	Errors        []string
}

// Ingest processes all matching files under root.
func (u *IngestUseCase) Ingest(ctx context.Context, root string) (*IngestResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	result := &IngestResult{}
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		content, err := fs.ReadFile(file.Path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Path, err))
			continue
		}

		relPath, err := filepath.Rel(root, file.Path)
		if err != nil {
			relPath = file.Path
		}

		docResult, err := u.IngestDocument(ctx, documentID(relPath), content)
		if err != nil {
			return result, err
		}
		result.FilesIngested++
		result.UnitsWritten += docResult.UnitsWritten
		result.UnitsFailed += docResult.UnitsFailed
		result.Errors = append(result.Errors, docResult.Errors...)

		if u.Progress != nil {
			u.Progress(relPath, i+1, len(files))
		}
	}

	return result, nil
}

// IngestDocument chunks and embeds a single document, superseding any
// previously stored units for it. Per-chunk embedding failures are
// recorded in the result and do not abort the rest of the document.
func (u *IngestUseCase) IngestDocument(ctx context.Context, docID, content string) (*IngestResult, error) {
	result := &IngestResult{}

	chunks := u.chunker.Chunk(content)
	if len(chunks) == 0 {
		return result, nil
	}

	// Embed everything before touching the store: a provider outage
	// during re-ingestion must not destroy the previously stored units.
	type stagedUnit struct {
		unit   domain.TextUnit
		vector domain.EmbeddingVector
	}
	staged := make([]stagedUnit, 0, len(chunks))
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		vector, err := u.embedder.EmbedText(ctx, chunk)
		if err != nil {
			result.UnitsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: embed failed: %v", docID, err))
			continue
		}
		staged = append(staged, stagedUnit{
			unit: domain.TextUnit{
				UnitID:     uuid.NewString(),
				DocumentID: docID,
				Content:    chunk,
			},
			vector: vector,
		})
	}

	// Every chunk failed: keep the old units so a retry can reprocess.
	if len(staged) == 0 {
		return result, nil
	}

	// Supersede: units are immutable, re-ingestion replaces them.
	if err := u.store.DeleteByDocument(ctx, docID); err != nil {
		return result, fmt.Errorf("failed to supersede document %s: %w", docID, err)
	}
	for _, s := range staged {
		if err := u.store.Upsert(ctx, s.unit, s.vector); err != nil {
			return result, fmt.Errorf("failed to store unit for %s: %w", docID, err)
		}
		result.UnitsWritten++
	}

	return result, nil
}

// documentID derives a stable document identifier from the file's
// path relative to the ingestion root.
func documentID(relPath string) string {
	hash := sha256.Sum256([]byte(filepath.ToSlash(relPath)))
	return hex.EncodeToString(hash[:8])
}
