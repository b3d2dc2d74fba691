package chunker

import (
	"strings"
	"testing"

	"github.com/tenancydeposit/tribunalrag/internal/config"
	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

func TestChunkNeverCrossesSectionBoundaries(t *testing.T) {
	doc := domain.CaseDocument{
		CaseReference: "LON_00BK_HMF_2022_0227",
		Year:          2022,
		Region:        "LON",
		FullText: "Background\n" + strings.Repeat("intro word ", 20) +
			"\nThe Facts\n" + strings.Repeat("fact word ", 20) +
			"\nDecision\n" + strings.Repeat("order word ", 20),
	}

	c := New(config.ChunkingConfig{ChunkSize: 10, ChunkOverlap: 2, MaxChunkSize: 10})
	chunks := c.Chunk(doc)

	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	for _, ch := range chunks {
		if ch.SectionKind == domain.SectionBackground && strings.Contains(ch.Text, "fact word") {
			t.Fatalf("background chunk leaked facts text: %q", ch.Text)
		}
		if !ch.MatchesDocument(doc) {
			t.Fatalf("chunk metadata diverged from document: %+v", ch)
		}
	}
}

func TestChunkOverlapBetweenAdjacentWindows(t *testing.T) {
	doc := domain.CaseDocument{
		CaseReference: "LON_00BK_HMF_2022_0227",
		Year:          2022,
		Region:        "LON",
		FullText:      strings.Repeat("w ", 25),
	}
	c := New(config.ChunkingConfig{ChunkSize: 10, ChunkOverlap: 3, MaxChunkSize: 10})
	chunks := c.Chunk(doc)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	first := strings.Fields(chunks[0].Text)
	second := strings.Fields(chunks[1].Text)
	if len(first) < 3 || len(second) < 3 {
		t.Fatal("expected both windows to have at least 3 words to compare overlap")
	}
	for i := 0; i < 3; i++ {
		if first[len(first)-3+i] != second[i] {
			t.Fatalf("expected the last 3 words of the first window to open the second, got %v and %v", first, second)
		}
	}
}
