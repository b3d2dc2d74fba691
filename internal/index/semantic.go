// Package index implements the Index Layer: the semantic store (Postgres +
// pgvector) and the sparse store (bleve BM25), kept in sync by a coordinator
// that enforces the two-stores-one-truth invariant.
package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

// SemanticStore is the dense vector store: nearest-neighbour search over
// chunk embeddings with optional metadata predicates, backed by Postgres and
// the pgvector extension.
type SemanticStore struct {
	db         *pgxpool.Pool
	dimensions int
}

// Filter carries the optional metadata predicates a semantic or sparse query
// may apply.
type Filter struct {
	MinYear     int
	Regions     []string
	CaseType    string
	SectionKind domain.SectionKind
}

func NewSemanticStore(db *pgxpool.Pool, dimensions int) *SemanticStore {
	return &SemanticStore{db: db, dimensions: dimensions}
}

// EnsureSchema creates the pgvector extension and the chunks table if
// absent. It is idempotent and safe to call on every startup.
func (s *SemanticStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return domain.NewError(domain.KindIndex, "SemanticStore.EnsureSchema", err)
	}

	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS chunks (
	chunk_id TEXT PRIMARY KEY,
	case_reference TEXT NOT NULL,
	section_kind TEXT NOT NULL,
	text TEXT NOT NULL,
	token_count INTEGER NOT NULL,
	year INTEGER NOT NULL,
	region TEXT NOT NULL,
	case_type TEXT NOT NULL,
	source_type TEXT,
	embedding vector(%d) NOT NULL,
	created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_chunks_embedding_hnsw ON chunks
	USING hnsw (embedding vector_cosine_ops);
CREATE INDEX IF NOT EXISTS idx_chunks_case_reference ON chunks(case_reference);
CREATE INDEX IF NOT EXISTS idx_chunks_year ON chunks(year);
CREATE INDEX IF NOT EXISTS idx_chunks_region ON chunks(region);
`, s.dimensions)

	if _, err := s.db.Exec(ctx, schema); err != nil {
		return domain.NewError(domain.KindIndex, "SemanticStore.EnsureSchema", err)
	}
	return nil
}

func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%.8f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Upsert idempotently stores a chunk and its embedding, keyed by chunk_id.
func (s *SemanticStore) Upsert(ctx context.Context, chunk domain.DocumentChunk, embedding []float64) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO chunks (chunk_id, case_reference, section_kind, text, token_count, year, region, case_type, source_type, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::vector)
ON CONFLICT (chunk_id) DO UPDATE SET
	case_reference = EXCLUDED.case_reference,
	section_kind = EXCLUDED.section_kind,
	text = EXCLUDED.text,
	token_count = EXCLUDED.token_count,
	year = EXCLUDED.year,
	region = EXCLUDED.region,
	case_type = EXCLUDED.case_type,
	source_type = EXCLUDED.source_type,
	embedding = EXCLUDED.embedding`,
		chunk.ChunkID, chunk.CaseReference, string(chunk.SectionKind), chunk.Text, chunk.TokenCount,
		chunk.Year, chunk.Region, chunk.CaseType, string(chunk.SourceType), formatVector(embedding))
	if err != nil {
		return domain.NewError(domain.KindIndex, "SemanticStore.Upsert", err)
	}
	return nil
}

// SemanticHit is one nearest-neighbour result: the chunk and its cosine
// similarity (1 - cosine distance).
type SemanticHit struct {
	Chunk      domain.DocumentChunk
	Similarity float64
}

// Query returns up to k nearest neighbours of queryEmbedding, optionally
// restricted by filter.
func (s *SemanticStore) Query(ctx context.Context, queryEmbedding []float64, k int, filter Filter) ([]SemanticHit, error) {
	var conds []string
	args := []interface{}{formatVector(queryEmbedding)}

	if filter.MinYear > 0 {
		args = append(args, filter.MinYear)
		conds = append(conds, fmt.Sprintf("year >= $%d", len(args)))
	}
	if len(filter.Regions) > 0 {
		args = append(args, filter.Regions)
		conds = append(conds, fmt.Sprintf("region = ANY($%d)", len(args)))
	}
	if filter.CaseType != "" {
		args = append(args, filter.CaseType)
		conds = append(conds, fmt.Sprintf("case_type = $%d", len(args)))
	}
	if filter.SectionKind != "" {
		args = append(args, string(filter.SectionKind))
		conds = append(conds, fmt.Sprintf("section_kind = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, k)

	query := fmt.Sprintf(`
SELECT chunk_id, case_reference, section_kind, text, token_count, year, region, case_type, source_type,
	1 - (embedding <=> $1::vector) AS similarity
FROM chunks
%s
ORDER BY embedding <=> $1::vector
LIMIT $%d`, where, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewError(domain.KindIndex, "SemanticStore.Query", err)
	}
	defer rows.Close()

	var hits []SemanticHit
	for rows.Next() {
		var c domain.DocumentChunk
		var sectionKind, sourceType string
		var similarity float64
		if err := rows.Scan(&c.ChunkID, &c.CaseReference, &sectionKind, &c.Text, &c.TokenCount,
			&c.Year, &c.Region, &c.CaseType, &sourceType, &similarity); err != nil {
			return nil, domain.NewError(domain.KindIndex, "SemanticStore.Query", err)
		}
		c.SectionKind = domain.SectionKind(sectionKind)
		c.SourceType = domain.SourceType(sourceType)
		hits = append(hits, SemanticHit{Chunk: c, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewError(domain.KindIndex, "SemanticStore.Query", err)
	}
	return hits, nil
}

// AllChunks returns every chunk and text currently in the semantic store,
// the data rebuild_sparse_from_semantic rebuilds the sparse index from.
func (s *SemanticStore) AllChunks(ctx context.Context) ([]domain.DocumentChunk, error) {
	rows, err := s.db.Query(ctx, `SELECT chunk_id, case_reference, section_kind, text, token_count, year, region, case_type, source_type FROM chunks`)
	if err != nil {
		return nil, domain.NewError(domain.KindIndex, "SemanticStore.AllChunks", err)
	}
	defer rows.Close()

	var chunks []domain.DocumentChunk
	for rows.Next() {
		var c domain.DocumentChunk
		var sectionKind, sourceType string
		if err := rows.Scan(&c.ChunkID, &c.CaseReference, &sectionKind, &c.Text, &c.TokenCount, &c.Year, &c.Region, &c.CaseType, &sourceType); err != nil {
			return nil, domain.NewError(domain.KindIndex, "SemanticStore.AllChunks", err)
		}
		c.SectionKind = domain.SectionKind(sectionKind)
		c.SourceType = domain.SourceType(sourceType)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Count returns the number of chunks persisted in the semantic store.
func (s *SemanticStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	if err != nil {
		return 0, domain.NewError(domain.KindIndex, "SemanticStore.Count", err)
	}
	return n, nil
}

// Stats aggregates corpus-wide distributions for corpus_stats().
type Stats struct {
	Documents             int
	UniqueCases           int
	Chunks                int
	YearDistribution      map[int]int
	RegionDistribution    map[string]int
	CaseTypeDistribution  map[string]int
}

func (s *SemanticStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		YearDistribution:     map[int]int{},
		RegionDistribution:   map[string]int{},
		CaseTypeDistribution: map[string]int{},
	}

	rows, err := s.db.Query(ctx, "SELECT case_reference, year, region, case_type FROM chunks")
	if err != nil {
		return stats, domain.NewError(domain.KindIndex, "SemanticStore.Stats", err)
	}
	defer rows.Close()

	cases := map[string]bool{}
	for rows.Next() {
		var ref, region, caseType string
		var year int
		if err := rows.Scan(&ref, &year, &region, &caseType); err != nil {
			return stats, domain.NewError(domain.KindIndex, "SemanticStore.Stats", err)
		}
		stats.Chunks++
		cases[ref] = true
		stats.YearDistribution[year]++
		stats.RegionDistribution[region]++
		stats.CaseTypeDistribution[caseType]++
	}
	stats.UniqueCases = len(cases)
	stats.Documents = len(cases)
	return stats, rows.Err()
}
