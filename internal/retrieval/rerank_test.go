package retrieval

import "testing"

func TestTemporalScoreDecaysLinearlyOverTenYears(t *testing.T) {
	if s := temporalScore(2023, 2023); s != 1.0 {
		t.Fatalf("current year score = %v, want 1.0", s)
	}
	if s := temporalScore(2013, 2023); s != 0.0 {
		t.Fatalf("ten-years-back score = %v, want 0.0", s)
	}
	if s := temporalScore(2003, 2023); s != 0.0 {
		t.Fatalf("twenty-years-back score = %v, want 0.0 (clipped)", s)
	}
	if s := temporalScore(2020, 2023); s <= 0 || s >= 1 {
		t.Fatalf("three-years-back score = %v, want in (0,1)", s)
	}
}

func TestRegionScoreBinary(t *testing.T) {
	if regionScore("LON", "LON") != 1 {
		t.Fatal("expected exact region match to score 1")
	}
	if regionScore("CHI", "LON") != 0 {
		t.Fatal("expected region mismatch to score 0")
	}
	if regionScore("LON", "") != 0 {
		t.Fatal("expected no query region to score 0")
	}
}

func TestFractionMatchedIsRecallNotJaccard(t *testing.T) {
	query := map[string]bool{"cleaning": true, "damage": true}
	result := map[string]bool{"cleaning": true, "inventory": true}
	// intersection=1, |query|=2 -> 0.5, NOT jaccard (1/3).
	if s := fractionMatched(query, result); s != 0.5 {
		t.Fatalf("fractionMatched = %v, want 0.5", s)
	}
}

func TestJaccardOverlap(t *testing.T) {
	a := map[string]bool{"inventory": true, "photographs": true}
	b := map[string]bool{"inventory": true}
	if s := jaccard(a, b); s != 0.5 {
		t.Fatalf("jaccard = %v, want 0.5", s)
	}
}

func TestMinMaxNormalizeHandlesFlatInput(t *testing.T) {
	if s := minMaxNormalize([]float64{0.5, 0.5, 0.5}, 0.5); s != 1 {
		t.Fatalf("flat min-max normalize = %v, want 1", s)
	}
}
