package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"semdex/internal/adapter/store/migrations"
	"semdex/internal/domain"
	"semdex/internal/vec"
)

// SQLiteStore is a ChunkStore backed by SQLite. Vectors are stored as
// little-endian float32 blobs; similarity is a full scan in Go, which
// keeps the schema portable to stores with native vector indexing.
type SQLiteStore struct {
	db  *sql.DB
	dim int
}

// NewSQLiteStore opens or creates a SQLite-backed store at path,
// enforcing canonicalDim on every write.
func NewSQLiteStore(path string, canonicalDim int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, dim: canonicalDim}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// migrate applies all pending embedded migrations in order.
func (s *SQLiteStore) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			return fmt.Errorf("bad migration name %s: %w", name, err)
		}
		if version <= current {
			continue
		}

		sqlBytes, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(sqlBytes)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert writes a unit and its vector.
func (s *SQLiteStore) Upsert(ctx context.Context, unit domain.TextUnit, vector domain.EmbeddingVector) error {
	if len(vector.Values) != s.dim {
		return fmt.Errorf("%w: got %d dims, store expects %d", domain.ErrDimensionMismatch, len(vector.Values), s.dim)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO units (unit_id, document_id, content, embedding, provider_id, native_dim, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(unit_id) DO UPDATE SET
			document_id = excluded.document_id,
			content = excluded.content,
			embedding = excluded.embedding,
			provider_id = excluded.provider_id,
			native_dim = excluded.native_dim,
			generated_at = excluded.generated_at
	`,
		unit.UnitID, unit.DocumentID, unit.Content,
		encodeVector(vector.Values),
		vector.Provenance.ProviderID, vector.Provenance.NativeDim,
		vector.Provenance.GeneratedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert unit %s: %w", unit.UnitID, err)
	}
	return nil
}

// Get returns a unit and its vector by ID.
func (s *SQLiteStore) Get(ctx context.Context, unitID string) (domain.TextUnit, domain.EmbeddingVector, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, content, embedding, provider_id, native_dim, generated_at
		FROM units WHERE unit_id = ?
	`, unitID)

	var (
		unit      domain.TextUnit
		blob      []byte
		provider  string
		nativeDim int
		generated int64
	)
	unit.UnitID = unitID
	err := row.Scan(&unit.DocumentID, &unit.Content, &blob, &provider, &nativeDim, &generated)
	if err == sql.ErrNoRows {
		return domain.TextUnit{}, domain.EmbeddingVector{}, fmt.Errorf("%w: unit %s", domain.ErrNotFound, unitID)
	}
	if err != nil {
		return domain.TextUnit{}, domain.EmbeddingVector{}, fmt.Errorf("get unit %s: %w", unitID, err)
	}

	values, err := decodeVector(blob)
	if err != nil {
		return domain.TextUnit{}, domain.EmbeddingVector{}, fmt.Errorf("decode vector for %s: %w", unitID, err)
	}

	vector := domain.EmbeddingVector{
		Values: values,
		Provenance: domain.Provenance{
			ProviderID:  provider,
			NativeDim:   nativeDim,
			GeneratedAt: time.Unix(generated, 0).UTC(),
		},
	}
	return unit, vector, nil
}

// Search scans all stored vectors with cosine similarity.
func (s *SQLiteStore) Search(ctx context.Context, vector []float32, topK int) ([]domain.QueryResult, error) {
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query has %d dims, store expects %d", domain.ErrDimensionMismatch, len(vector), s.dim)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT unit_id, document_id, embedding, generated_at FROM units`)
	if err != nil {
		return nil, fmt.Errorf("scan units: %w", err)
	}
	defer rows.Close()

	var candidates []vec.Candidate
	for rows.Next() {
		var (
			unitID     string
			documentID string
			blob       []byte
			generated  int64
		)
		if err := rows.Scan(&unitID, &documentID, &blob, &generated); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		values, err := decodeVector(blob)
		if err != nil {
			continue // skip corrupted rows
		}
		candidates = append(candidates, vec.Candidate{
			UnitID:      unitID,
			DocumentID:  documentID,
			Score:       vec.Cosine(vector, values),
			GeneratedAt: time.Unix(generated, 0).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}

	ranked := vec.Rank(candidates, topK)
	results := make([]domain.QueryResult, len(ranked))
	for i, c := range ranked {
		results[i] = domain.QueryResult{
			UnitID:     c.UnitID,
			DocumentID: c.DocumentID,
			Score:      c.Score,
		}
	}
	return results, nil
}

// CountByDocument returns the number of units stored for a document.
func (s *SQLiteStore) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units WHERE document_id = ?`, documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count by document: %w", err)
	}
	return count, nil
}

// Count returns the total number of stored units.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count units: %w", err)
	}
	return count, nil
}

// DeleteByDocument removes all units belonging to a document.
func (s *SQLiteStore) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM units WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("delete by document: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// encodeVector packs values as little-endian float32.
func encodeVector(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector unpacks a little-endian float32 blob.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("blob length %d not a multiple of 4", len(blob))
	}
	values := make([]float32, len(blob)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return values, nil
}
