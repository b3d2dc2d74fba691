package provider

import "context"

// FakeEmbedder is a deterministic stand-in for tests: it derives each
// vector from the text's byte length alone rather than calling a real
// provider.
type FakeEmbedder struct {
	Dim int
}

func (f *FakeEmbedder) Dimensions() int { return f.Dim }

func (f *FakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v := make([]float64, f.Dim)
		seed := float64(len(t)%97 + 1)
		for j := range v {
			v[j] = seed / float64(j+1)
		}
		out[i] = normalize(v)
	}
	return out, nil
}

// FakeChatter returns a canned response, for synthesizer tests that don't
// want a live model call.
type FakeChatter struct {
	Response string
	Err      error
	Model    string
}

func (f *FakeChatter) ModelName() string { return f.Model }

func (f *FakeChatter) Chat(_ context.Context, _ ChatRequest) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}
