package provider

import (
	"context"
	"testing"
)

func TestEmbedReturnsConfigErrorWithoutAPIKey(t *testing.T) {
	g := NewGeminiEmbedder("", "gemini-embedding-001", 768, 50)
	_, err := g.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatal("expected error when API key is unset")
	}
}

func TestNormalizeProducesUnitVector(t *testing.T) {
	v := normalize([]float64{3, 4})
	if v[0] != 0.6 || v[1] != 0.8 {
		t.Fatalf("normalize([3,4]) = %v, want [0.6, 0.8]", v)
	}
}

func TestFakeEmbedderDeterministic(t *testing.T) {
	f := &FakeEmbedder{Dim: 8}
	a, _ := f.Embed(context.Background(), []string{"hello world"})
	b, _ := f.Embed(context.Background(), []string{"hello world"})
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("expected deterministic embeddings, got %v vs %v", a[0], b[0])
		}
	}
}
