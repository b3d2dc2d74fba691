package index

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

func testChunks() []domain.DocumentChunk {
	return []domain.DocumentChunk{
		{
			ChunkID: "c1", CaseReference: "LON_00BK_HMF_2022_0227", SectionKind: domain.SectionReasoning,
			Text: "the landlord failed to protect the deposit within 30 days under section 213",
			Year: 2022, Region: "LON", CaseType: "HMF",
		},
		{
			ChunkID: "c2", CaseReference: "CHI_00AB_HMF_2019_0010", SectionKind: domain.SectionFacts,
			Text: "the tenant raised a cleaning dispute over the property inventory",
			Year: 2019, Region: "CHI", CaseType: "HMF",
		},
	}
}

func TestSparseStoreUpsertAndSearch(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenSparseStore(filepath.Join(dir, "bm25"))
	if err != nil {
		t.Fatalf("OpenSparseStore: %v", err)
	}
	defer store.Close()

	for _, c := range testChunks() {
		if err := store.Upsert(c); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	hits, err := store.Search("deposit section 213", 5, Filter{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one hit")
	}
	if hits[0].Chunk.ChunkID != "c1" {
		t.Fatalf("expected c1 to rank first, got %s", hits[0].Chunk.ChunkID)
	}
}

func TestRebuildAtomicSwap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bm25")

	store, err := OpenSparseStore(path)
	if err != nil {
		t.Fatalf("OpenSparseStore: %v", err)
	}
	if err := store.Upsert(testChunks()[0]); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	store.Close()

	rebuilt, err := Rebuild(path, testChunks())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	defer rebuilt.Close()

	n, err := rebuilt.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 docs after rebuild, got %d", n)
	}

	if _, err := os.Stat(path + ".staging-" + strconv.Itoa(os.Getpid())); err == nil {
		t.Fatal("staging directory should not remain after successful rebuild")
	}
}
