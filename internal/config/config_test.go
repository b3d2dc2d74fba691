package config

import "testing"

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Embedding.Dimensions != DefaultEmbeddingDimensions {
		t.Fatalf("embedding dimensions = %d, want %d", cfg.Embedding.Dimensions, DefaultEmbeddingDimensions)
	}
	if cfg.Retrieval.SemanticWeight != DefaultSemanticWeight {
		t.Fatalf("semantic weight = %f, want %f", cfg.Retrieval.SemanticWeight, DefaultSemanticWeight)
	}
	if len(cfg.IssueKeywords) == 0 {
		t.Fatal("expected issue keywords to be populated")
	}
	if _, ok := cfg.IssueKeywords["cleaning"]; !ok {
		t.Fatal("expected cleaning issue keywords to be present")
	}
	if len(cfg.RequiredFields) != 5 {
		t.Fatalf("required fields = %v, want 5 entries", cfg.RequiredFields)
	}
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Retrieval.SemanticWeight = 0.9
	ApplyDefaults(cfg)

	if cfg.Retrieval.SemanticWeight != 0.9 {
		t.Fatalf("expected explicit semantic weight to survive, got %f", cfg.Retrieval.SemanticWeight)
	}
}

func TestValidateRejectsBadChunkOverlap(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Chunking.ChunkOverlap = cfg.Chunking.ChunkSize

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error when overlap equals chunk size")
	}
}

func TestValidateRequiresPrimaryModel(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.LLM.PrimaryModel = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error when primary model is empty")
	}
}
