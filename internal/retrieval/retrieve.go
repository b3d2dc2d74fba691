// Package retrieval fuses the Index Layer's two ranked candidate lists by
// reciprocal rank fusion, reorders them by a domain-specific score, and
// attaches a calibrated confidence and uncertainty flag.
package retrieval

import (
	"context"
	"fmt"

	"github.com/tenancydeposit/tribunalrag/internal/config"
	"github.com/tenancydeposit/tribunalrag/internal/domain"
	"github.com/tenancydeposit/tribunalrag/internal/index"
	"github.com/tenancydeposit/tribunalrag/internal/logging"
	"github.com/tenancydeposit/tribunalrag/internal/provider"
)

// unrankedSentinel marks a chunk absent from one of the two ranked lists, so
// its RRF contribution from that side is effectively 0 without a special
// case in the fusion formula itself.
const unrankedSentinel = 999

// Query carries the inputs §4.4 needs beyond the raw text: the caller's
// region hint and metadata filters, used both to restrict candidates and to
// feed the domain rerank's region/issue/evidence factors.
type Query struct {
	Text       string
	Region     string
	Issues     []domain.IssueType
	Evidence   []string
	TopK       int
	Filter     index.Filter
}

type Retriever struct {
	coordinator *index.Coordinator
	embedder    provider.Embedder
	cfg         config.RetrievalConfig
	issueKeywords map[string][]string
	log         logging.Logger
}

func New(coordinator *index.Coordinator, embedder provider.Embedder, cfg config.RetrievalConfig, issueKeywords map[string][]string, log logging.Logger) *Retriever {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Retriever{coordinator: coordinator, embedder: embedder, cfg: cfg, issueKeywords: issueKeywords, log: log}
}

type candidate struct {
	chunk         domain.DocumentChunk
	semanticScore float64
	semanticRank  int
	bm25Score     float64
	bm25Rank      int
	rrfScore      float64
	finalScore    float64
	relevanceNote string
}

// Retrieve runs stage 1 (fused retrieval), stage 2 (domain rerank), and
// stage 3 (confidence/uncertainty) of the hybrid retriever.
func (r *Retriever) Retrieve(ctx context.Context, q Query) (domain.RetrievalResult, error) {
	k := q.TopK
	if k <= 0 {
		k = r.cfg.FinalTopK
	}
	initialK := r.cfg.InitialRetrievalK

	semanticHits, semanticErr := r.semanticSearch(ctx, q, initialK)
	bm25Hits, bm25Err := r.sparseSearch(q, initialK)

	if semanticErr != nil && bm25Err != nil {
		return domain.RetrievalResult{}, domain.NewError(domain.KindRetrieval, "Retriever.Retrieve",
			fmt.Errorf("both stores failed: semantic=%v bm25=%v", semanticErr, bm25Err))
	}

	degraded := semanticErr != nil || bm25Err != nil

	candidates := r.fuse(semanticHits, bm25Hits)
	if len(candidates) == 0 {
		return domain.RetrievalResult{
			IsUncertain:       true,
			UncertaintyReason: domain.ReasonEmptyCorpus,
		}, nil
	}

	r.rerank(candidates, q)

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	result := toRetrievalResult(candidates, len(semanticHits), len(bm25Hits))

	topSemantic := 0.0
	for _, c := range candidates {
		if c.semanticScore > topSemantic {
			topSemantic = c.semanticScore
		}
	}

	switch {
	case degraded:
		result.IsUncertain = true
		result.UncertaintyReason = domain.ReasonDegradedRetrieval
	case topSemantic < r.cfg.MinSimilarityThreshold:
		result.IsUncertain = true
		result.UncertaintyReason = domain.ReasonLowSimilarity
	case result.Confidence < r.cfg.MinConfidenceThreshold:
		result.IsUncertain = true
		result.UncertaintyReason = domain.ReasonLowConfidence
	case len(candidates) < 3:
		result.IsUncertain = true
		result.UncertaintyReason = domain.ReasonFewCandidates
	}

	return result, nil
}

func (r *Retriever) semanticSearch(ctx context.Context, q Query, k int) ([]index.SemanticHit, error) {
	embeddings, err := r.embedder.Embed(ctx, []string{q.Text})
	if err != nil {
		return nil, err
	}
	filter := q.Filter
	if q.Region != "" && len(filter.Regions) == 0 {
		filter.Regions = []string{q.Region}
	}
	return r.coordinator.Semantic().Query(ctx, embeddings[0], k, filter)
}

func (r *Retriever) sparseSearch(q Query, k int) ([]index.SparseHit, error) {
	return r.coordinator.Sparse().Search(q.Text, k, q.Filter)
}

func (r *Retriever) fuse(semanticHits []index.SemanticHit, bm25Hits []index.SparseHit) []*candidate {
	byID := map[string]*candidate{}
	var order []string

	for i, h := range semanticHits {
		c, ok := byID[h.Chunk.ChunkID]
		if !ok {
			c = &candidate{chunk: h.Chunk, semanticRank: unrankedSentinel, bm25Rank: unrankedSentinel}
			byID[h.Chunk.ChunkID] = c
			order = append(order, h.Chunk.ChunkID)
		}
		c.semanticScore = h.Similarity
		c.semanticRank = i + 1
	}
	for i, h := range bm25Hits {
		c, ok := byID[h.Chunk.ChunkID]
		if !ok {
			c = &candidate{chunk: h.Chunk, semanticRank: unrankedSentinel, bm25Rank: unrankedSentinel}
			byID[h.Chunk.ChunkID] = c
			order = append(order, h.Chunk.ChunkID)
		}
		c.bm25Score = h.Score
		c.bm25Rank = i + 1
	}

	k := float64(r.cfg.RRFK)
	ws := r.cfg.SemanticWeight
	wb := 1.0 - ws

	out := make([]*candidate, 0, len(order))
	for _, id := range order {
		c := byID[id]
		c.rrfScore = ws*(1.0/(k+float64(c.semanticRank))) + wb*(1.0/(k+float64(c.bm25Rank)))
		out = append(out, c)
	}
	return out
}

func toRetrievalResult(candidates []*candidate, semanticHits, bm25Hits int) domain.RetrievalResult {
	scored := make([]domain.ScoredChunk, len(candidates))
	var sum float64
	for i, c := range candidates {
		scored[i] = domain.ScoredChunk{
			Chunk:         c.chunk,
			SemanticScore: c.semanticScore,
			SemanticRank:  c.semanticRank,
			BM25Score:     c.bm25Score,
			BM25Rank:      c.bm25Rank,
			RRFScore:      c.rrfScore,
			FinalScore:    c.finalScore,
			RelevanceNote: c.relevanceNote,
		}
		sum += c.finalScore
	}
	confidence := 0.0
	if len(candidates) > 0 {
		confidence = sum / float64(len(candidates))
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return domain.RetrievalResult{
		Results:      scored,
		Confidence:   confidence,
		SemanticHits: semanticHits,
		BM25Hits:     bm25Hits,
	}
}
