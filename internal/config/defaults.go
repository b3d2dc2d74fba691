package config

import "time"

// Default value constants, drawn from spec §6 and the reranker configuration
// the keyword dictionaries were migrated from (Open Question (a)).
const (
	DefaultEmbeddingModel      = "gemini-embedding-001"
	DefaultEmbeddingDimensions = 768
	DefaultEmbeddingBatchSize  = 50
	DefaultEmbeddingTimeout    = 30 * time.Second

	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultMaxChunkSize = 800

	DefaultInitialRetrievalK      = 20
	DefaultFinalTopK              = 5
	DefaultRRFK                   = 60
	DefaultSemanticWeight         = 0.7
	DefaultMinConfidenceThreshold = 0.5
	DefaultMinSimilarityThreshold = 0.3

	DefaultPrimaryModel   = "gemini-3-pro-preview"
	DefaultFallbackModel  = "gemini-2.5-flash"
	DefaultLLMTimeout     = 60 * time.Second
	DefaultLLMMaxRetries  = 5
	DefaultInitialBackoff = time.Second
	DefaultGenerationBudget = 120 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultDataDir = "./data"

	DefaultDisclaimer = "This prediction is an automated estimate based on past tribunal decisions. " +
		"It is not legal advice and does not guarantee any outcome. Consult a qualified adviser before relying on it."
)

// DefaultRequiredFields is the canonical order of the five fields that gate
// intake-completeness (§3).
var DefaultRequiredFields = []string{
	"property_address",
	"tenancy_start_date",
	"deposit_amount",
	"issues",
	"deposit_protection_status",
}

// DefaultIssueKeywords is migrated from the reranker configuration's
// deposit-issue keyword dictionary (Open Question (a)).
func DefaultIssueKeywords() map[string][]string {
	return map[string][]string{
		"deposit-protection": {
			"deposit protection", "section 213", "section 214",
			"tenancy deposit scheme", "tds", "dps", "mydeposits",
			"protected deposit", "unprotected deposit", "prescribed information",
		},
		"cleaning": {
			"cleaning", "professional clean", "end of tenancy clean",
			"cleanliness", "dirty", "filthy", "clean condition",
		},
		"damage": {
			"damage", "damages", "broken", "stain", "mark", "scratch",
			"hole", "burn", "tear", "worn", "deterioration",
		},
		"fair_wear_and_tear": {
			"fair wear and tear", "reasonable wear", "natural wear",
			"normal use", "betterment",
		},
		"inventory": {
			"inventory", "check-in", "check-out", "schedule of condition",
			"photographic evidence", "inspection report",
		},
		"rent-arrears": {
			"rent arrears", "unpaid rent", "outstanding rent",
			"rent owed", "arrears",
		},
		"garden": {
			"garden", "lawn", "grass", "overgrown", "landscaping",
			"outdoor area", "patio",
		},
		"decoration": {
			"redecoration", "painting", "redecorating", "walls",
			"paintwork", "marks on walls",
		},
	}
}

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// Fields already set by the caller are left unchanged so explicit
// configuration always wins. Must be called after unmarshalling and before
// Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = DefaultEmbeddingModel
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = DefaultEmbeddingDimensions
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = DefaultEmbeddingBatchSize
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = DefaultEmbeddingTimeout
	}

	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = DefaultChunkSize
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.Chunking.MaxChunkSize == 0 {
		cfg.Chunking.MaxChunkSize = DefaultMaxChunkSize
	}

	if cfg.Retrieval.InitialRetrievalK == 0 {
		cfg.Retrieval.InitialRetrievalK = DefaultInitialRetrievalK
	}
	if cfg.Retrieval.FinalTopK == 0 {
		cfg.Retrieval.FinalTopK = DefaultFinalTopK
	}
	if cfg.Retrieval.RRFK == 0 {
		cfg.Retrieval.RRFK = DefaultRRFK
	}
	if cfg.Retrieval.SemanticWeight == 0 {
		cfg.Retrieval.SemanticWeight = DefaultSemanticWeight
	}
	if cfg.Retrieval.MinConfidenceThreshold == 0 {
		cfg.Retrieval.MinConfidenceThreshold = DefaultMinConfidenceThreshold
	}
	if cfg.Retrieval.MinSimilarityThreshold == 0 {
		cfg.Retrieval.MinSimilarityThreshold = DefaultMinSimilarityThreshold
	}

	if cfg.LLM.PrimaryModel == "" {
		cfg.LLM.PrimaryModel = DefaultPrimaryModel
	}
	if cfg.LLM.FallbackModel == "" {
		cfg.LLM.FallbackModel = DefaultFallbackModel
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = DefaultLLMTimeout
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = DefaultLLMMaxRetries
	}
	if cfg.LLM.InitialBackoff == 0 {
		cfg.LLM.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.LLM.GenerationBudget == 0 {
		cfg.LLM.GenerationBudget = DefaultGenerationBudget
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = DefaultDataDir
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}

	if len(cfg.IssueKeywords) == 0 {
		cfg.IssueKeywords = DefaultIssueKeywords()
	}
	if len(cfg.RequiredFields) == 0 {
		cfg.RequiredFields = DefaultRequiredFields
	}
	if cfg.Disclaimer == "" {
		cfg.Disclaimer = DefaultDisclaimer
	}
}
