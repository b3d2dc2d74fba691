package synth

import (
	"fmt"
	"strings"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

// systemPrompt is Phase A of the two-phase prompt: the role contract, the
// cite-or-abstain rule, and the strict output schema the model must fill.
const systemPrompt = `You are a legal-analysis assistant predicting the likely outcome of a UK tenancy deposit dispute before the First-tier Tribunal (Property Chamber), based only on the retrieved case excerpts supplied below.

Rules:
- You are not providing legal advice. Every prediction must carry a disclaimer.
- Cite-or-abstain: every factual or legal claim you assert must cite a case_reference that appears in the retrieved cases below, with a short verbatim quote drawn from that case's text. Never cite a case not supplied to you. Never invent a quote.
- If the retrieved cases do not support a confident prediction, set overall_outcome to "uncertain" rather than guessing.

Respond with a single JSON object matching exactly this schema, and nothing else (no markdown fences, no commentary):

{
  "overall_outcome": "tenant_favored" | "landlord_favored" | "split" | "uncertain",
  "overall_confidence": number in [0,1],
  "issue_predictions": [
    {
      "issue_type": string,
      "predicted_outcome": "tenant_favored" | "landlord_favored" | "split" | "uncertain",
      "predicted_amount": number | null,
      "amount_range": {"low": number, "high": number} | null,
      "confidence": number in [0,1],
      "key_factors": [string, ...],
      "supporting_cases": [{"case_reference": string, "year": number, "quote": string, "relevance": string}, ...]
    }
  ],
  "reasoning_trace": [
    {
      "category": string,
      "content": string,
      "citations": [{"case_reference": string, "year": number, "quote": string, "relevance": string}, ...]
    }
  ],
  "key_strengths": [string, ...],
  "key_weaknesses": [string, ...],
  "uncertainties": [string, ...],
  "assumptions_made": [string, ...],
  "tenant_recovery_amount": number | null,
  "landlord_recovery_amount": number | null,
  "predicted_settlement_range": {"low": number, "high": number} | null,
  "model_version": string | null,
  "rag_confidence": number | null
}`

// strictJSONNudge is appended to systemPrompt on the single re-prompt after a
// malformed-JSON failure.
const strictJSONNudge = "\n\nYour previous response was not valid JSON. Return ONLY the JSON object described above, with no surrounding text or markdown fences."

func buildUserPrompt(caseFile domain.CaseFile, chunks []domain.ScoredChunk) string {
	var sb strings.Builder
	sb.WriteString("CASE FACTS:\n")
	sb.WriteString(formatCaseFacts(caseFile))
	sb.WriteString("\n\nRETRIEVED CASES:\n")
	if len(chunks) == 0 {
		sb.WriteString("No similar cases retrieved. Predict based on general legal principles only and favor an uncertain outcome.\n")
	} else {
		sb.WriteString(formatPrecedents(chunks))
	}
	return sb.String()
}

func formatCaseFacts(c domain.CaseFile) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("User role: %s", c.UserRole))
	if c.Property.Address != "" {
		lines = append(lines, fmt.Sprintf("Property: %s", c.Property.Address))
	}
	if c.Property.Region != "" {
		lines = append(lines, fmt.Sprintf("Region: %s", c.Property.Region))
	}
	if c.Tenancy.StartDate != "" {
		lines = append(lines, fmt.Sprintf("Tenancy start: %s", c.Tenancy.StartDate))
	}
	if c.Tenancy.EndDate != "" {
		lines = append(lines, fmt.Sprintf("Tenancy end: %s", c.Tenancy.EndDate))
	}
	lines = append(lines, fmt.Sprintf("Deposit amount: £%.2f", c.Tenancy.DepositAmount))
	if c.DepositProtectionKnown {
		status := "NOT protected"
		if c.Tenancy.DepositProtected {
			status = "protected"
		}
		lines = append(lines, fmt.Sprintf("Deposit protection status: %s", status))
		if c.Tenancy.ProtectionScheme != "" {
			lines = append(lines, fmt.Sprintf("Protection scheme: %s", c.Tenancy.ProtectionScheme))
		}
	}
	if len(c.Issues) > 0 {
		var issues []string
		for _, i := range c.Issues {
			issues = append(issues, string(i))
		}
		lines = append(lines, "Disputed issues: "+strings.Join(issues, ", "))
	}
	if len(c.Claims) > 0 {
		lines = append(lines, "Claims:")
		for _, claim := range c.Claims {
			lines = append(lines, fmt.Sprintf("  - %s: £%.2f", claim.Issue, claim.Amount))
		}
	}
	if len(c.Evidence) > 0 {
		lines = append(lines, "Evidence available:")
		for _, ev := range c.Evidence {
			lines = append(lines, fmt.Sprintf("  - %s: %s", ev.Type, ev.Description))
		}
	}
	if c.Narrative != "" {
		narrative := c.Narrative
		const maxNarrative = 800
		if len(narrative) > maxNarrative {
			narrative = narrative[:maxNarrative]
		}
		lines = append(lines, "Narrative:\n"+narrative)
	}
	return strings.Join(lines, "\n")
}

func formatPrecedents(chunks []domain.ScoredChunk) string {
	var sb strings.Builder
	for i, sc := range chunks {
		text := sc.Chunk.Text
		const maxChunkChars = 1500
		if len(text) > maxChunkChars {
			text = text[:maxChunkChars] + "..."
		}
		fmt.Fprintf(&sb, "\nCASE %d: %s (%d), section=%s, final_score=%.3f\n%s\nText:\n%s\n---\n",
			i+1, sc.Chunk.CaseReference, sc.Chunk.Year, sc.Chunk.SectionKind, sc.FinalScore, sc.RelevanceNote, text)
	}
	return sb.String()
}
