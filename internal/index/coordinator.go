package index

import (
	"context"
	"fmt"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
	"github.com/tenancydeposit/tribunalrag/internal/logging"
	"github.com/tenancydeposit/tribunalrag/internal/provider"
)

// Coordinator owns both stores and writes each document's chunks to the
// semantic store and then the sparse store. Chunks written before a failed
// upsert are not rolled back (see IngestDocument).
type Coordinator struct {
	semantic *SemanticStore
	sparse   *SparseStore
	embedder provider.Embedder
	sparsePath string
	log      logging.Logger
}

func NewCoordinator(semantic *SemanticStore, sparse *SparseStore, embedder provider.Embedder, sparsePath string, log logging.Logger) *Coordinator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Coordinator{semantic: semantic, sparse: sparse, embedder: embedder, sparsePath: sparsePath, log: log}
}

// IngestDocument embeds and upserts every chunk of one document into both
// stores. All chunks are embedded before either store is written, so an
// embedding failure leaves both stores untouched. If an upsert fails, the
// chunks already upserted stay where they are and the document is reported
// as not ingested; callers must re-ingest it wholly rather than resume
// mid-document.
func (c *Coordinator) IngestDocument(ctx context.Context, chunks []domain.DocumentChunk) (chunksCreated int, embeddingTokens int, err error) {
	if len(chunks) == 0 {
		return 0, 0, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	embeddings, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, 0, domain.NewError(domain.KindIngestion, "Coordinator.IngestDocument", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, 0, domain.NewError(domain.KindIngestion, "Coordinator.IngestDocument",
			fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(chunks)))
	}

	for i, ch := range chunks {
		if err := c.semantic.Upsert(ctx, ch, embeddings[i]); err != nil {
			return 0, 0, domain.NewError(domain.KindIngestion, "Coordinator.IngestDocument", err)
		}
	}
	for _, ch := range chunks {
		if err := c.sparse.Upsert(ch); err != nil {
			return 0, 0, domain.NewError(domain.KindIngestion, "Coordinator.IngestDocument", err)
		}
	}

	for _, t := range texts {
		embeddingTokens += len(t) / 4
	}
	return len(chunks), embeddingTokens, nil
}

// RebuildSparseFromSemantic reconstructs the sparse index wholly from the
// semantic store's persisted chunk texts, the recovery path for a corrupted
// or deleted BM25 file.
func (c *Coordinator) RebuildSparseFromSemantic(ctx context.Context) (int, error) {
	chunks, err := c.semantic.AllChunks(ctx)
	if err != nil {
		return 0, domain.NewError(domain.KindIndex, "Coordinator.RebuildSparseFromSemantic", err)
	}

	if err := c.sparse.Close(); err != nil {
		c.log.Warn("sparse_close_before_rebuild_failed", logging.Err(err))
	}

	rebuilt, err := Rebuild(c.sparsePath, chunks)
	if err != nil {
		return 0, domain.NewError(domain.KindIndex, "Coordinator.RebuildSparseFromSemantic", err)
	}
	c.sparse = rebuilt
	return len(chunks), nil
}

// CheckConsistency verifies the two-stores-one-truth invariant: the semantic
// store and sparse store must hold the same chunk count. It does not fail
// closed; callers decide whether to rebuild.
func (c *Coordinator) CheckConsistency(ctx context.Context) (semanticCount int, sparseCount int, consistent bool, err error) {
	sc, err := c.semantic.Count(ctx)
	if err != nil {
		return 0, 0, false, err
	}
	bc, err := c.sparse.DocCount()
	if err != nil {
		return 0, 0, false, err
	}
	return sc, int(bc), sc == int(bc), nil
}

func (c *Coordinator) Semantic() *SemanticStore { return c.semantic }
func (c *Coordinator) Sparse() *SparseStore     { return c.sparse }

// Stats reports corpus-wide distributions for corpus_stats(), sourced from
// the semantic store (the durable source of truth per the rebuild contract).
func (c *Coordinator) Stats(ctx context.Context) (Stats, error) {
	return c.semantic.Stats(ctx)
}
