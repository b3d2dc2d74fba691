package domain

// ScoredChunk is one retrieved chunk carrying every score computed about it
// along the fusion/rerank pipeline, plus the human-readable explanation
// surfaced alongside it.
type ScoredChunk struct {
	Chunk DocumentChunk `json:"chunk"`

	SemanticScore float64 `json:"semantic_score"`
	SemanticRank  int     `json:"semantic_rank"`
	BM25Score     float64 `json:"bm25_score"`
	BM25Rank      int     `json:"bm25_rank"`
	RRFScore      float64 `json:"rrf_score"`
	FinalScore    float64 `json:"final_score"`

	// RelevanceNote is a short human-readable explanation of why this chunk
	// scored as it did (matched issues, temporal bucket, region match).
	RelevanceNote string `json:"relevance_note,omitempty"`
}

// RetrievalResult is the ranked output of the Hybrid Retriever + Reranker for
// one query.
type RetrievalResult struct {
	Results          []ScoredChunk `json:"results"`
	Confidence       float64       `json:"confidence"`
	IsUncertain      bool          `json:"is_uncertain"`
	UncertaintyReason string       `json:"uncertainty_reason,omitempty"`

	// SemanticHits and BM25Hits count the candidates each store returned
	// for this query. They are per-query values; the retriever keeps no
	// running counters and corpus_stats() does not report them.
	SemanticHits int `json:"semantic_hits"`
	BM25Hits     int `json:"bm25_hits"`
}

// CaseReferences returns the distinct case references actually consulted by
// this retrieval, in result order. It is the set a Prediction's citations
// must be drawn from.
func (r RetrievalResult) CaseReferences() []string {
	seen := make(map[string]bool, len(r.Results))
	var refs []string
	for _, sc := range r.Results {
		ref := sc.Chunk.CaseReference
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// Uncertainty reason tags, attached as the machine-readable half of
// UncertaintyReason.
const (
	ReasonEmptyCorpus       = "empty_corpus"
	ReasonNoFilterMatch     = "no_filter_match"
	ReasonLowSimilarity     = "low_top_similarity"
	ReasonLowConfidence     = "low_confidence"
	ReasonFewCandidates     = "insufficient_candidates"
	ReasonDegradedRetrieval = "degraded_retrieval"
)
