package retrieval

import (
	"testing"

	"github.com/tenancydeposit/tribunalrag/internal/config"
	"github.com/tenancydeposit/tribunalrag/internal/domain"
	"github.com/tenancydeposit/tribunalrag/internal/index"
)

func testRetriever() *Retriever {
	cfg := config.RetrievalConfig{RRFK: 60, SemanticWeight: 0.7, InitialRetrievalK: 20, FinalTopK: 5,
		MinConfidenceThreshold: 0.5, MinSimilarityThreshold: 0.3}
	return New(nil, nil, cfg, map[string][]string{
		"deposit-protection": {"section 213", "protect"},
	}, nil)
}

func TestRerankRegionBoostBreaksRRFTie(t *testing.T) {
	r := testRetriever()
	candidates := []*candidate{
		{chunk: domain.DocumentChunk{ChunkID: "a", CaseReference: "LON_1", Region: "LON", Year: 2020, Text: "x"}, rrfScore: 0.5},
		{chunk: domain.DocumentChunk{ChunkID: "b", CaseReference: "CHI_1", Region: "CHI", Year: 2020, Text: "x"}, rrfScore: 0.5},
	}
	r.rerank(candidates, Query{Region: "LON"})
	if candidates[0].chunk.CaseReference != "LON_1" {
		t.Fatalf("expected LON chunk to rank first after region boost, got %s", candidates[0].chunk.CaseReference)
	}
}

func TestRerankTemporalDecayOrdersNewerFirst(t *testing.T) {
	r := testRetriever()
	candidates := []*candidate{
		{chunk: domain.DocumentChunk{ChunkID: "old", CaseReference: "LON_2013", Region: "LON", Year: 2013, Text: "x"}, rrfScore: 0.5},
		{chunk: domain.DocumentChunk{ChunkID: "new", CaseReference: "LON_2023", Region: "LON", Year: 2023, Text: "x"}, rrfScore: 0.5},
	}
	r.rerank(candidates, Query{})
	if candidates[0].chunk.Year != 2023 {
		t.Fatalf("expected 2023 chunk to rank first, got year %d", candidates[0].chunk.Year)
	}
}

func TestFuseAssignsSentinelRankToUnseenChunk(t *testing.T) {
	r := testRetriever()
	semantic := []index.SemanticHit{{Chunk: domain.DocumentChunk{ChunkID: "a"}, Similarity: 0.9}}
	bm25 := []index.SparseHit{{Chunk: domain.DocumentChunk{ChunkID: "b"}, Score: 5.0}}
	candidates := r.fuse(semantic, bm25)
	byID := map[string]*candidate{}
	for _, c := range candidates {
		byID[c.chunk.ChunkID] = c
	}
	if byID["a"].bm25Rank != unrankedSentinel {
		t.Fatalf("expected chunk absent from bm25 to carry sentinel rank, got %d", byID["a"].bm25Rank)
	}
	if byID["b"].semanticRank != unrankedSentinel {
		t.Fatalf("expected chunk absent from semantic to carry sentinel rank, got %d", byID["b"].semanticRank)
	}
}
