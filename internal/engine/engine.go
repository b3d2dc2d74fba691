// Package engine wires the five components into the five contracts of §6:
// ingest, retrieve, generate_prediction, corpus_stats, and
// rebuild_sparse_from_semantic. It is the only process-wide state in the
// system; its lifecycle is open(data_dir) → serve → close.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenancydeposit/tribunalrag/internal/chunker"
	"github.com/tenancydeposit/tribunalrag/internal/config"
	"github.com/tenancydeposit/tribunalrag/internal/docproc"
	"github.com/tenancydeposit/tribunalrag/internal/domain"
	"github.com/tenancydeposit/tribunalrag/internal/index"
	"github.com/tenancydeposit/tribunalrag/internal/logging"
	"github.com/tenancydeposit/tribunalrag/internal/provider"
	"github.com/tenancydeposit/tribunalrag/internal/retrieval"
	"github.com/tenancydeposit/tribunalrag/internal/store"
	"github.com/tenancydeposit/tribunalrag/internal/synth"
)

// Engine is the top-level collaborator the CLI and any future HTTP surface
// drive. It owns the Index Layer's process-wide state for its lifetime.
type Engine struct {
	cfg         config.Config
	log         logging.Logger
	db          *pgxpool.Pool
	coordinator *index.Coordinator
	chunker     *chunker.Chunker
	processor   *docproc.Processor
	retriever   *retrieval.Retriever
	synthesizer *synth.Synthesizer
	predictions *store.PredictionStore
	sparsePath  string
}

// IngestOptions mirrors §6's ingest(pdf_dir, options).
type IngestOptions struct {
	BatchSize int
}

// IngestStats mirrors ingest's return contract.
type IngestStats struct {
	DocumentsIn       int
	DocumentsOK       int
	DocumentsSkipped  int
	ChunksCreated     int
	EmbeddingTokens   int
	CostEstimate      float64
}

// Open builds every component and connects to Postgres, following the
// open(data_dir) → serve → close lifecycle §9 requires of the Index Layer.
func Open(ctx context.Context, cfg config.Config, log logging.Logger) (*Engine, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	db, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, domain.NewError(domain.KindConfig, "engine.Open", fmt.Errorf("connecting to database: %w", err))
	}

	semantic := index.NewSemanticStore(db, cfg.Embedding.Dimensions)
	if err := semantic.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	sparsePath := filepath.Join(cfg.Storage.DataDir, "embeddings", "bm25_index")
	if err := os.MkdirAll(filepath.Dir(sparsePath), 0755); err != nil {
		db.Close()
		return nil, domain.NewError(domain.KindConfig, "engine.Open", fmt.Errorf("creating embeddings directory: %w", err))
	}
	sparse, err := index.OpenSparseStore(sparsePath)
	if err != nil {
		db.Close()
		return nil, err
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	embedder := provider.NewGeminiEmbedder(apiKey, cfg.Embedding.Model, cfg.Embedding.Dimensions, cfg.Embedding.BatchSize,
		provider.WithEmbedderTimeout(cfg.Embedding.Timeout),
		provider.WithEmbedderLogger(log))

	coordinator := index.NewCoordinator(semantic, sparse, embedder, sparsePath, log)

	primary := provider.NewGeminiChatter(apiKey, cfg.LLM.PrimaryModel,
		provider.WithChatterTimeout(cfg.LLM.Timeout),
		provider.WithChatterRetries(cfg.LLM.MaxRetries, cfg.LLM.InitialBackoff),
		provider.WithChatterLogger(log))
	fallback := provider.NewGeminiChatter(apiKey, cfg.LLM.FallbackModel,
		provider.WithChatterTimeout(cfg.LLM.Timeout),
		provider.WithChatterRetries(cfg.LLM.MaxRetries, cfg.LLM.InitialBackoff),
		provider.WithChatterLogger(log))

	retriever := retrieval.New(coordinator, embedder, cfg.Retrieval, cfg.IssueKeywords, log)
	synthesizer := synth.New(retriever, primary, fallback, cfg.LLM, cfg.Disclaimer, log)

	predictions, err := store.NewPredictionStore(cfg.Storage.DataDir)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Engine{
		cfg:         cfg,
		log:         log,
		db:          db,
		coordinator: coordinator,
		chunker:     chunker.New(cfg.Chunking),
		processor:   docproc.NewProcessor(log),
		retriever:   retriever,
		synthesizer: synthesizer,
		predictions: predictions,
		sparsePath:  sparsePath,
	}, nil
}

func (e *Engine) Close() {
	e.coordinator.Sparse().Close()
	e.db.Close()
}

// Ingest walks pdfDir, extracting, chunking, embedding, and indexing each PDF
// it finds, one document at a time. A document whose embedding fails writes
// nothing to either store; a document whose upsert fails part-way is
// counted as skipped, and the chunks already written stay in place until
// the document is re-ingested.
func (e *Engine) Ingest(ctx context.Context, pdfDir string, opts IngestOptions) (IngestStats, error) {
	var stats IngestStats

	entries, err := os.ReadDir(pdfDir)
	if err != nil {
		return stats, domain.NewError(domain.KindIngestion, "Engine.Ingest", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pdf" {
			continue
		}
		stats.DocumentsIn++

		pdfPath := filepath.Join(pdfDir, entry.Name())
		sidecarPath := pdfPath[:len(pdfPath)-len(".pdf")] + ".json"

		doc, err := e.processor.Extract(pdfPath, sidecarPath)
		if err != nil {
			if err == docproc.ErrScanOnly {
				e.log.Warn("document_skipped_scan_only", logging.String("path", pdfPath))
				stats.DocumentsSkipped++
				continue
			}
			e.log.Warn("document_extraction_failed", logging.String("path", pdfPath), logging.Err(err))
			stats.DocumentsSkipped++
			continue
		}
		doc.IngestedAt = time.Now()

		chunks := e.chunker.Chunk(doc)
		created, tokens, err := e.coordinator.IngestDocument(ctx, chunks)
		if err != nil {
			e.log.Warn("document_ingestion_failed", logging.String("path", pdfPath), logging.Err(err))
			stats.DocumentsSkipped++
			continue
		}

		stats.DocumentsOK++
		stats.ChunksCreated += created
		stats.EmbeddingTokens += tokens
	}

	stats.CostEstimate = float64(stats.EmbeddingTokens) / 1_000_000 * 0.02
	return stats, nil
}

// Retrieve runs the Hybrid Retriever + Reranker for a standalone query, the
// retrieve(query_text, top_k, filters, region_hint) contract.
func (e *Engine) Retrieve(ctx context.Context, queryText string, topK int, filter index.Filter, regionHint string) (domain.RetrievalResult, error) {
	return e.retriever.Retrieve(ctx, retrieval.Query{Text: queryText, Region: regionHint, TopK: topK, Filter: filter})
}

// GeneratePrediction runs the full gate → retrieve → prompt → parse →
// cite-validate → emit state machine and persists the result (write-once).
func (e *Engine) GeneratePrediction(ctx context.Context, caseFile domain.CaseFile, opts synth.Options) (domain.Prediction, error) {
	p, err := e.synthesizer.Generate(ctx, caseFile, opts)
	if err != nil {
		return domain.Prediction{}, err
	}
	if saveErr := e.predictions.Save(ctx, p); saveErr != nil {
		e.log.Warn("prediction_persist_failed", logging.Err(saveErr))
	}
	return p, nil
}

// CorpusStats mirrors corpus_stats().
func (e *Engine) CorpusStats(ctx context.Context) (index.Stats, error) {
	return e.coordinator.Stats(ctx)
}

// RebuildSparseFromSemantic is the recovery path for a corrupted or deleted
// BM25 file: it fully reconstructs the sparse index from the semantic
// store's persisted chunk texts.
func (e *Engine) RebuildSparseFromSemantic(ctx context.Context) (int, error) {
	return e.coordinator.RebuildSparseFromSemantic(ctx)
}

// Clear removes all persisted corpus state: the semantic store's chunks and
// the sparse index. Persisted predictions and raw source PDFs are not
// removed.
func (e *Engine) Clear(ctx context.Context) error {
	if _, err := e.db.Exec(ctx, "TRUNCATE TABLE chunks"); err != nil {
		return domain.NewError(domain.KindIndex, "Engine.Clear", err)
	}
	if _, err := e.coordinator.RebuildSparseFromSemantic(ctx); err != nil {
		return err
	}
	return nil
}
