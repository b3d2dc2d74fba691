// Package provider defines the embedding and LLM capability interfaces the
// rest of the engine depends on, plus their Gemini-backed implementations.
// Components depend on the capability (embed/chat), never on *genai.Client
// directly, so a provider swap stays a one-file change.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

// Embedder computes fixed-dimension dense embeddings for text.
type Embedder interface {
	// Embed returns one L2-normalized embedding vector per input text, in
	// batches of at most the provider's configured batch size.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dimensions() int
}

// ChatRequest is one turn of the two-phase LLM interaction: a system
// instruction plus the user content built from the CaseFile and retrieved
// chunks.
type ChatRequest struct {
	System      string
	User        string
	Temperature float64
}

// Chatter calls a large language model and returns its raw text response.
type Chatter interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	ModelName() string
}

// retryable runs fn with exponential backoff (base=initialBackoff,
// factor=2), retrying up to maxRetries times. It does not retry when fn
// returns an error wrapping domain.KindConfig, since that indicates a
// non-transient misconfiguration (e.g. a missing API key).
func retryable(ctx context.Context, maxRetries int, initialBackoff time.Duration, fn func(attempt int) error) error {
	backoff := initialBackoff
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		var ee *domain.EngineError
		if errors.As(err, &ee) && ee.Kind == domain.KindConfig {
			return err
		}
	}
	return lastErr
}
