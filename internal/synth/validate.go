package synth

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

func buildPrediction(caseFile domain.CaseFile, rp rawPrediction, rr domain.RetrievalResult, modelVersion, disclaimer string) domain.Prediction {
	issues := make([]domain.IssuePrediction, 0, len(rp.IssuePredictions))
	for _, ip := range rp.IssuePredictions {
		issues = append(issues, domain.IssuePrediction{
			Issue:      domain.IssueType(ip.IssueType),
			Outcome:    parseOutcome(ip.PredictedOutcome),
			Amount:     toAmountRange(ip.PredictedAmount, ip.AmountRange),
			Confidence: clip01(ip.Confidence),
			KeyFactors: ip.KeyFactors,
			Citations:  toCitations(ip.SupportingCases),
		})
	}

	reasoning := make([]domain.ReasoningStep, 0, len(rp.ReasoningTrace))
	for _, step := range rp.ReasoningTrace {
		reasoning = append(reasoning, domain.ReasoningStep{
			Category:  step.Category,
			Text:      step.Content,
			Citations: toCitations(step.Citations),
		})
	}

	ragConfidence := rr.Confidence
	if rp.RAGConfidence != nil {
		ragConfidence = *rp.RAGConfidence
	}

	return domain.Prediction{
		PredictionID:      uuid.NewString(),
		CaseID:            caseFile.CaseID,
		OverallOutcome:    parseOutcome(rp.OverallOutcome),
		OverallConfidence: clip01(rp.OverallConfidence),
		Issues:            issues,
		Reasoning:         reasoning,
		KeyStrengths:      rp.KeyStrengths,
		KeyWeaknesses:     rp.KeyWeaknesses,
		Uncertainties:     rp.Uncertainties,
		Assumptions:       rp.AssumptionsMade,
		MissingInfo:       nil,
		CasesConsulted:    rr.CaseReferences(),
		Disclaimer:        disclaimer,
		TenantRecoveryAmount:   derefOr(rp.TenantRecoveryAmount, 0),
		LandlordRecoveryAmount: derefOr(rp.LandlordRecoveryAmount, 0),
		PredictedSettlementRange: toAmountRange(nil, rp.PredictedSettlementRange),
		ModelVersion:      firstNonEmpty(rp.ModelVersion, modelVersion),
		RAGConfidence:      ragConfidence,
	}
}

func parseOutcome(s string) domain.Outcome {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(domain.OutcomeTenantFavored):
		return domain.OutcomeTenantFavored
	case string(domain.OutcomeLandlordFavored):
		return domain.OutcomeLandlordFavored
	case string(domain.OutcomeSplit):
		return domain.OutcomeSplit
	default:
		return domain.OutcomeUncertain
	}
}

func toAmountRange(amount *float64, r *rawAmountRange) domain.AmountRange {
	var out domain.AmountRange
	if amount != nil {
		out.Amount = *amount
	}
	if r != nil {
		out.Low = r.Low
		out.High = r.High
	}
	return out
}

func toCitations(raw []rawCitation) []domain.Citation {
	out := make([]domain.Citation, 0, len(raw))
	for _, c := range raw {
		out = append(out, domain.Citation{
			CaseReference: c.CaseReference,
			Year:          c.Year,
			Quote:         c.Quote,
			RelevanceNote: c.Relevance,
		})
	}
	return out
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func derefOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// applyCiteOrAbstain walks every issue prediction and reasoning step,
// dropping citations that do not refer to a chunk in rr and downgrading the
// overall outcome to uncertain when a load-bearing claim loses its only
// citation, per the cite-or-abstain rule.
func applyCiteOrAbstain(p domain.Prediction, rr domain.RetrievalResult) domain.Prediction {
	validRefs := map[string]bool{}
	for _, ref := range rr.CaseReferences() {
		validRefs[ref] = true
	}
	quotesByCase := map[string][]string{}
	for _, sc := range rr.Results {
		quotesByCase[sc.Chunk.CaseReference] = append(quotesByCase[sc.Chunk.CaseReference], sc.Chunk.Text)
	}

	downgrade := false

	for i := range p.Issues {
		kept := filterCitations(p.Issues[i].Citations, validRefs, quotesByCase)
		if len(p.Issues[i].Citations) > 0 && len(kept) == 0 {
			downgrade = true
			p.Reasoning = append(p.Reasoning, domain.ReasoningStep{
				Category: "uncited_claim_removed",
				Text:     "all citations for issue " + string(p.Issues[i].Issue) + " failed cite-or-abstain validation; the issue prediction is no longer supported",
			})
		}
		p.Issues[i].Citations = kept
	}

	for i := range p.Reasoning {
		if len(p.Reasoning[i].Citations) == 0 {
			continue
		}
		kept := filterCitations(p.Reasoning[i].Citations, validRefs, quotesByCase)
		if len(kept) == 0 {
			downgrade = true
		}
		p.Reasoning[i].Citations = kept
	}

	if downgrade {
		p.OverallOutcome = domain.OutcomeUncertain
	}
	return p
}

func filterCitations(citations []domain.Citation, validRefs map[string]bool, quotesByCase map[string][]string) []domain.Citation {
	kept := make([]domain.Citation, 0, len(citations))
	for _, c := range citations {
		if !validRefs[c.CaseReference] {
			continue
		}
		if !quoteAppears(c.Quote, quotesByCase[c.CaseReference]) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// quoteAppears reports whether quote is a substring of some chunk's text
// after whitespace normalization, per the cite-or-abstain substring check.
func quoteAppears(quote string, texts []string) bool {
	if quote == "" {
		return false
	}
	normalizedQuote := normalizeWhitespace(quote)
	for _, t := range texts {
		if strings.Contains(normalizeWhitespace(t), normalizedQuote) {
			return true
		}
	}
	return false
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
