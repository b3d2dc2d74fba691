package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
	"github.com/tenancydeposit/tribunalrag/internal/logging"
)

const embeddingAPIBase = "https://generativelanguage.googleapis.com/v1beta/models/"

type embeddingRequest struct {
	Model                string        `json:"model"`
	Content              embedContent  `json:"content"`
	TaskType             string        `json:"taskType"`
	OutputDimensionality int           `json:"outputDimensionality"`
}

type embedContent struct {
	Parts []embedPart `json:"parts"`
}

type embedPart struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

type batchEmbeddingRequest struct {
	Requests []embeddingRequest `json:"requests"`
}

type batchEmbeddingResponse struct {
	Embeddings []struct {
		Values []float64 `json:"values"`
	} `json:"embeddings"`
}

// GeminiEmbedder calls the gemini-embedding-001 batchEmbedContents endpoint,
// batching up to batchSize texts per request, retrying transient failures
// with exponential backoff, and L2-normalizing every returned vector.
type GeminiEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	batchSize  int
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	httpClient *http.Client
	log        logging.Logger
}

type EmbedderOption func(*GeminiEmbedder)

func WithEmbedderTimeout(d time.Duration) EmbedderOption {
	return func(g *GeminiEmbedder) { g.timeout = d }
}

func WithEmbedderRetries(maxRetries int, backoff time.Duration) EmbedderOption {
	return func(g *GeminiEmbedder) { g.maxRetries = maxRetries; g.backoff = backoff }
}

func WithEmbedderLogger(log logging.Logger) EmbedderOption {
	return func(g *GeminiEmbedder) { g.log = log }
}

// NewGeminiEmbedder constructs an Embedder against the given model and
// output dimensionality, batching at most batchSize texts per request (the
// engine never requests more than 50 per the ingestion concurrency model).
func NewGeminiEmbedder(apiKey, model string, dimensions, batchSize int, opts ...EmbedderOption) *GeminiEmbedder {
	g := &GeminiEmbedder{
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
		batchSize:  batchSize,
		timeout:    30 * time.Second,
		maxRetries: 5,
		backoff:    time.Second,
		httpClient: &http.Client{},
		log:        logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GeminiEmbedder) Dimensions() int { return g.dimensions }

// Embed computes one normalized embedding per input text. It chunks texts
// into batches of g.batchSize and issues one batchEmbedContents call per
// batch, as the index layer's bounded embedding batching requires.
func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if g.apiKey == "" {
		return nil, domain.NewError(domain.KindConfig, "provider.Embed", fmt.Errorf("GEMINI_API_KEY not set"))
	}

	var out [][]float64
	for start := 0; start < len(texts); start += g.batchSize {
		end := start + g.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := g.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (g *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	reqBody := batchEmbeddingRequest{Requests: make([]embeddingRequest, len(texts))}
	for i, t := range texts {
		reqBody.Requests[i] = embeddingRequest{
			Model:                "models/" + g.model,
			Content:              embedContent{Parts: []embedPart{{Text: t}}},
			TaskType:             "RETRIEVAL_DOCUMENT",
			OutputDimensionality: g.dimensions,
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("provider: marshaling embedding batch request: %w", err)
	}

	url := embeddingAPIBase + g.model + ":batchEmbedContents"

	var result batchEmbeddingResponse
	err = retryable(ctx, g.maxRetries, g.backoff, func(attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("provider: building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.apiKey)

		client := g.httpClient
		client.Timeout = g.timeout
		resp, err := client.Do(req)
		if err != nil {
			g.log.Warn("embedding_request_failed", logging.Int("attempt", attempt), logging.Err(err))
			return domain.NewError(domain.KindTransientProvider, "provider.embedBatch", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return domain.NewError(domain.KindConfig, "provider.embedBatch", fmt.Errorf("embedding API error: %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return domain.NewError(domain.KindTransientProvider, "provider.embedBatch", fmt.Errorf("embedding API error: %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return domain.NewError(domain.KindTransientProvider, "provider.embedBatch", fmt.Errorf("decoding response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(result.Embeddings))
	for i, e := range result.Embeddings {
		out[i] = normalize(e.Values)
	}
	return out, nil
}

// normalize L2-normalizes an embedding vector in place, returning it.
func normalize(v []float64) []float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	n := math.Sqrt(sumSq)
	if n == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}
