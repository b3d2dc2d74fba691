// Package config defines the engine's configuration structures and
// validation. No I/O or parsing logic lives here beyond the viper wiring in
// loader.go — this file holds plain data types.
package config

import (
	"fmt"
	"time"
)

// EmbeddingConfig controls the dense embedding provider and batching.
type EmbeddingConfig struct {
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
	BatchSize  int    `mapstructure:"batch_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ChunkingConfig controls the Legal Chunker.
type ChunkingConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	MaxChunkSize int `mapstructure:"max_chunk_size"`
}

// RetrievalConfig controls the Hybrid Retriever + Reranker.
type RetrievalConfig struct {
	InitialRetrievalK      int     `mapstructure:"initial_retrieval_k"`
	FinalTopK              int     `mapstructure:"final_top_k"`
	RRFK                   int     `mapstructure:"rrf_k"`
	SemanticWeight         float64 `mapstructure:"semantic_weight"`
	MinConfidenceThreshold float64 `mapstructure:"min_confidence_threshold"`
	MinSimilarityThreshold float64 `mapstructure:"min_similarity_threshold"`
}

// LLMConfig controls the Prediction Synthesizer's model calls.
type LLMConfig struct {
	PrimaryModel  string        `mapstructure:"primary_model"`
	FallbackModel string        `mapstructure:"fallback_model"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	GenerationBudget time.Duration `mapstructure:"generation_budget"`
}

// DatabaseConfig holds Postgres/pgvector connection parameters for the
// semantic store.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// StorageConfig locates the engine's persisted-state directories (§6).
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// Config is the root configuration structure for the engine.
type Config struct {
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	LogLevel  string          `mapstructure:"log_level"`
	LogFormat string          `mapstructure:"log_format"`

	// IssueKeywords maps an issue type to the tokens that count as a match
	// for it during reranking (Open Question (a); populated by ApplyDefaults
	// from the reranker's historical keyword dictionary unless overridden).
	IssueKeywords map[string][]string `mapstructure:"issue_keywords"`

	// RequiredFields is the ordered set of CaseFile fields that gate
	// intake-completeness. It is validated as non-empty but not consulted by
	// domain.CaseFile.MissingRequiredFields, which checks its own fixed list
	// of the same five fields.
	RequiredFields []string `mapstructure:"required_fields"`

	// Disclaimer is appended to every Prediction regardless of outcome.
	Disclaimer string `mapstructure:"disclaimer"`
}

// Validate performs semantic validation of a fully-populated Config. It
// returns the first error found; callers should treat any error as fatal.
func (c *Config) Validate() error {
	if c.Embedding.Dimensions < 1 {
		return fmt.Errorf("config: embedding.dimensions must be >= 1, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.BatchSize < 1 || c.Embedding.BatchSize > 50 {
		return fmt.Errorf("config: embedding.batch_size %d is out of range [1, 50]", c.Embedding.BatchSize)
	}
	if c.Chunking.ChunkSize < 1 {
		return fmt.Errorf("config: chunking.chunk_size must be >= 1, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("config: chunking.chunk_overlap %d must be in [0, chunk_size)", c.Chunking.ChunkOverlap)
	}
	if c.Retrieval.SemanticWeight < 0 || c.Retrieval.SemanticWeight > 1 {
		return fmt.Errorf("config: retrieval.semantic_weight %f must be in [0, 1]", c.Retrieval.SemanticWeight)
	}
	if c.Retrieval.InitialRetrievalK < 1 {
		return fmt.Errorf("config: retrieval.initial_retrieval_k must be >= 1, got %d", c.Retrieval.InitialRetrievalK)
	}
	if c.Retrieval.FinalTopK < 1 {
		return fmt.Errorf("config: retrieval.final_top_k must be >= 1, got %d", c.Retrieval.FinalTopK)
	}
	if c.LLM.PrimaryModel == "" {
		return fmt.Errorf("config: llm.primary_model is required")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("config: llm.max_retries must be >= 0, got %d", c.LLM.MaxRetries)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("config: storage.data_dir is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log_level %q is invalid; expected debug|info|warn|error", c.LogLevel)
	}
	if len(c.RequiredFields) == 0 {
		return fmt.Errorf("config: required_fields must not be empty")
	}
	return nil
}
