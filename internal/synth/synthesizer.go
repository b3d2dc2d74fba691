// Package synth implements the Prediction Synthesizer: the completeness
// gate, query construction, two-phase LLM prompting, cite-or-abstain
// validation, and the retry/fallback state machine that turns a CaseFile and
// a RetrievalResult into a Prediction.
package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tenancydeposit/tribunalrag/internal/config"
	"github.com/tenancydeposit/tribunalrag/internal/domain"
	"github.com/tenancydeposit/tribunalrag/internal/logging"
	"github.com/tenancydeposit/tribunalrag/internal/provider"
	"github.com/tenancydeposit/tribunalrag/internal/retrieval"
)

// Options mirror §6's generate_prediction options.
type Options struct {
	IncludeReasoning bool
	MaxCases         int
}

type Synthesizer struct {
	retriever *retrieval.Retriever
	primary   provider.Chatter
	fallback  provider.Chatter
	cfg       config.LLMConfig
	disclaimer string
	log       logging.Logger
}

func New(retriever *retrieval.Retriever, primary, fallback provider.Chatter, cfg config.LLMConfig, disclaimer string, log logging.Logger) *Synthesizer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Synthesizer{retriever: retriever, primary: primary, fallback: fallback, cfg: cfg, disclaimer: disclaimer, log: log}
}

// BuildQuery constructs the compact textual query §4.5 feeds into the Hybrid
// Retriever + Reranker.
func BuildQuery(c domain.CaseFile) string {
	var parts []string
	parts = append(parts, string(c.UserRole))
	for _, i := range c.Issues {
		parts = append(parts, string(i))
	}
	parts = append(parts, fmt.Sprintf("deposit %.2f", c.Tenancy.DepositAmount))
	if c.DepositProtectionKnown {
		if c.Tenancy.DepositProtected {
			parts = append(parts, "deposit protected")
		} else {
			parts = append(parts, "deposit not protected")
		}
	}
	for _, ev := range c.Evidence {
		parts = append(parts, ev.Type)
	}
	if c.Property.Region != "" {
		parts = append(parts, c.Property.Region)
	}
	narrative := c.Narrative
	const maxNarrativeTokens = 200
	words := strings.Fields(narrative)
	if len(words) > maxNarrativeTokens {
		words = words[:maxNarrativeTokens]
	}
	parts = append(parts, strings.Join(words, " "))
	return strings.Join(parts, " ")
}

// Generate runs the full state machine: gate → retrieve → prompt → parse →
// cite-validate → (ok | retry | downgrade) → emit.
func (s *Synthesizer) Generate(ctx context.Context, caseFile domain.CaseFile, opts Options) (domain.Prediction, error) {
	deadline := time.Now().Add(s.cfg.GenerationBudget)
	if s.cfg.GenerationBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	var result domain.Prediction

	if missing := caseFile.MissingRequiredFields(); len(missing) > 0 {
		result = s.refusal(caseFile, missing)
		return trimReasoning(result, opts), nil
	}

	query := BuildQuery(caseFile)
	maxCases := opts.MaxCases
	if maxCases <= 0 {
		maxCases = 5
	}

	rr, err := s.retriever.Retrieve(ctx, retrieval.Query{
		Text:     query,
		Region:   caseFile.Property.Region,
		Issues:   caseFile.Issues,
		Evidence: evidenceTypeNames(caseFile),
		TopK:     maxCases,
	})
	if err != nil {
		result = s.uncertain(caseFile, "retrieval_failed: "+err.Error(), domain.RetrievalResult{})
		return trimReasoning(result, opts), nil
	}

	if rr.IsUncertain {
		result = s.uncertain(caseFile, rr.UncertaintyReason, rr)
		return trimReasoning(result, opts), nil
	}

	prediction, err := s.synthesize(ctx, caseFile, rr)
	if err != nil {
		if ctx.Err() != nil {
			result = s.uncertain(caseFile, "timeout", rr)
		} else {
			result = s.uncertain(caseFile, "synthesis_failed: "+err.Error(), rr)
		}
		return trimReasoning(result, opts), nil
	}
	return trimReasoning(prediction, opts), nil
}

// trimReasoning drops the reasoning trace for callers that only want the
// final outcome. Citation validation has already run by this point, so
// trimming here never affects cite-or-abstain correctness — it only
// affects what a caller sees.
func trimReasoning(p domain.Prediction, opts Options) domain.Prediction {
	if !opts.IncludeReasoning {
		p.Reasoning = nil
	}
	return p
}

func evidenceTypeNames(c domain.CaseFile) []string {
	var out []string
	for _, e := range c.Evidence {
		out = append(out, e.Type)
	}
	return out
}

func (s *Synthesizer) synthesize(ctx context.Context, caseFile domain.CaseFile, rr domain.RetrievalResult) (domain.Prediction, error) {
	userPrompt := buildUserPrompt(caseFile, rr.Results)

	text, chatter, err := s.chatWithFallback(ctx, systemPrompt, userPrompt)
	if err != nil {
		return domain.Prediction{}, err
	}

	rp, parseErr := parseRawPrediction(text)
	if parseErr != nil {
		s.log.Warn("prediction_json_parse_failed", logging.Err(parseErr))
		text, _, err = s.chatWithFallback(ctx, systemPrompt+strictJSONNudge, userPrompt)
		if err == nil {
			rp, parseErr = parseRawPrediction(text)
		}
	}
	if parseErr != nil {
		return s.fallbackPrediction(caseFile, text), nil
	}

	prediction := buildPrediction(caseFile, rp, rr, chatter.ModelName(), s.disclaimer)
	prediction = applyCiteOrAbstain(prediction, rr)
	return prediction, nil
}

// chatWithFallback tries the primary chatter, then the fallback on any
// KindTransientProvider error, per §4.5's single-retry-on-hard-error policy.
func (s *Synthesizer) chatWithFallback(ctx context.Context, system, user string) (string, provider.Chatter, error) {
	req := provider.ChatRequest{System: system, User: user, Temperature: 0.3}
	text, err := s.primary.Chat(ctx, req)
	if err == nil {
		return text, s.primary, nil
	}
	var ee *domain.EngineError
	if s.fallback == nil || !errors.As(err, &ee) || ee.Kind != domain.KindTransientProvider {
		return "", nil, err
	}
	s.log.Warn("primary_model_failed_falling_back", logging.Err(err))
	text, err = s.fallback.Chat(ctx, req)
	if err != nil {
		return "", nil, err
	}
	return text, s.fallback, nil
}

func (s *Synthesizer) refusal(caseFile domain.CaseFile, missing []string) domain.Prediction {
	return domain.Prediction{
		PredictionID:    uuid.NewString(),
		CaseID:          caseFile.CaseID,
		GeneratedAt:     time.Now(),
		OverallOutcome:  domain.OutcomeUncertain,
		MissingInfo:     missing,
		Uncertainties:   []string{"intake incomplete: " + strings.Join(missing, ", ")},
		Reasoning: []domain.ReasoningStep{{
			Category: "gate",
			Text:     "CaseFile is missing required fields; no model call was made: " + strings.Join(missing, ", "),
		}},
		Disclaimer: s.disclaimer,
	}
}

func (s *Synthesizer) uncertain(caseFile domain.CaseFile, reason string, rr domain.RetrievalResult) domain.Prediction {
	return domain.Prediction{
		PredictionID:   uuid.NewString(),
		CaseID:         caseFile.CaseID,
		GeneratedAt:    time.Now(),
		OverallOutcome: domain.OutcomeUncertain,
		Uncertainties:  []string{reason},
		Reasoning: []domain.ReasoningStep{{
			Category: "retrieval",
			Text:     "retrieval did not support a confident prediction: " + reason,
		}},
		CasesConsulted: rr.CaseReferences(),
		RAGConfidence:  rr.Confidence,
		Disclaimer:     s.disclaimer,
	}
}

// fallbackPrediction is the terminal state when two JSON-parse attempts both
// fail: the raw model text is preserved in the reasoning trace rather than
// discarded.
func (s *Synthesizer) fallbackPrediction(caseFile domain.CaseFile, rawResponse string) domain.Prediction {
	raw := rawResponse
	const maxRaw = 2000
	if len(raw) > maxRaw {
		raw = raw[:maxRaw]
	}
	return domain.Prediction{
		PredictionID:   uuid.NewString(),
		CaseID:         caseFile.CaseID,
		GeneratedAt:    time.Now(),
		OverallOutcome: domain.OutcomeUncertain,
		OverallConfidence: 0.3,
		Reasoning: []domain.ReasoningStep{{
			Category: "synthesis_failure",
			Text:     "unable to parse a structured prediction from the model response; raw output retained below:\n" + raw,
		}},
		Uncertainties: []string{"failed to parse structured prediction format"},
		Disclaimer:    s.disclaimer,
	}
}
