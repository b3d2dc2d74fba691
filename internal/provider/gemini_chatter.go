package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
	"github.com/tenancydeposit/tribunalrag/internal/logging"
)

const generationAPIBase = "https://generativelanguage.googleapis.com/v1beta/models/"

// GeminiChatter calls the generateContent endpoint for a single model. The
// Prediction Synthesizer holds two instances (primary and fallback) behind
// the Chatter interface and switches between them on hard provider errors.
type GeminiChatter struct {
	apiKey     string
	model      string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	httpClient *http.Client
	log        logging.Logger
}

type ChatterOption func(*GeminiChatter)

func WithChatterTimeout(d time.Duration) ChatterOption {
	return func(g *GeminiChatter) { g.timeout = d }
}

func WithChatterRetries(maxRetries int, backoff time.Duration) ChatterOption {
	return func(g *GeminiChatter) { g.maxRetries = maxRetries; g.backoff = backoff }
}

func WithChatterLogger(log logging.Logger) ChatterOption {
	return func(g *GeminiChatter) { g.log = log }
}

func NewGeminiChatter(apiKey, model string, opts ...ChatterOption) *GeminiChatter {
	g := &GeminiChatter{
		apiKey:     apiKey,
		model:      model,
		timeout:    60 * time.Second,
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

func (g *GeminiChatter) ModelName() string { return g.model }

// Chat sends req's system and user content as a single combined prompt (the
// v1beta generateContent endpoint has no distinct system-role field for
// every model in this family) and returns the concatenated text of every
// part of every candidate.
func (g *GeminiChatter) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if g.apiKey == "" {
		return "", domain.NewError(domain.KindConfig, "provider.Chat", fmt.Errorf("GEMINI_API_KEY not set"))
	}

	prompt := req.System + "\n\n" + req.User

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"temperature": req.Temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("provider: marshaling generation request: %w", err)
	}

	url := generationAPIBase + g.model + ":generateContent"

	var text string
	err = retryable(ctx, g.maxRetries, g.backoff, func(attempt int) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("provider: building request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-goog-api-key", g.apiKey)

		client := g.httpClient
		client.Timeout = g.timeout
		resp, err := client.Do(httpReq)
		if err != nil {
			g.log.Warn("generation_request_failed", logging.Int("attempt", attempt), logging.Err(err))
			return domain.NewError(domain.KindTransientProvider, "provider.Chat", err)
		}
		defer resp.Body.Close()

		bodyBytes, _ := io.ReadAll(resp.Body)

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return domain.NewError(domain.KindTransientProvider, "provider.Chat",
				fmt.Errorf("generation API error: %d - %s", resp.StatusCode, string(bodyBytes)))
		}
		if resp.StatusCode != http.StatusOK {
			return domain.NewError(domain.KindSynthesis, "provider.Chat",
				fmt.Errorf("generation API error: %d - %s", resp.StatusCode, string(bodyBytes)))
		}

		var apiResp struct {
			Candidates []struct {
				Content struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"content"`
				FinishReason string `json:"finishReason,omitempty"`
			} `json:"candidates"`
			PromptFeedback struct {
				BlockReason string `json:"blockReason,omitempty"`
			} `json:"promptFeedback,omitempty"`
			Error struct {
				Code    int    `json:"code,omitempty"`
				Message string `json:"message,omitempty"`
			} `json:"error,omitempty"`
		}
		if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
			return domain.NewError(domain.KindSynthesis, "provider.Chat", fmt.Errorf("decoding response: %w", err))
		}

		if apiResp.Error.Message != "" {
			return domain.NewError(domain.KindSynthesis, "provider.Chat",
				fmt.Errorf("generation API error: %s (code %d)", apiResp.Error.Message, apiResp.Error.Code))
		}
		if apiResp.PromptFeedback.BlockReason != "" {
			return domain.NewError(domain.KindSynthesis, "provider.Chat",
				fmt.Errorf("generation API blocked prompt: %s", apiResp.PromptFeedback.BlockReason))
		}
		if len(apiResp.Candidates) == 0 {
			return domain.NewError(domain.KindTransientProvider, "provider.Chat", fmt.Errorf("generation API returned no candidates"))
		}

		var sb strings.Builder
		for _, c := range apiResp.Candidates {
			for _, p := range c.Content.Parts {
				sb.WriteString(p.Text)
			}
		}
		if sb.Len() == 0 {
			return domain.NewError(domain.KindSynthesis, "provider.Chat", fmt.Errorf("generation API returned empty content"))
		}
		text = sb.String()
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}
