package synth

import (
	"encoding/json"
	"strings"
)

// rawCitation and rawPrediction mirror the JSON schema set out in
// systemPrompt; fields are parsed permissively (missing fields zero-value)
// since the model is the only producer and cite-validation is the real gate.
type rawCitation struct {
	CaseReference string `json:"case_reference"`
	Year          int    `json:"year"`
	Quote         string `json:"quote"`
	Relevance     string `json:"relevance"`
}

type rawAmountRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

type rawIssuePrediction struct {
	IssueType        string          `json:"issue_type"`
	PredictedOutcome string          `json:"predicted_outcome"`
	PredictedAmount  *float64        `json:"predicted_amount"`
	AmountRange      *rawAmountRange `json:"amount_range"`
	Confidence       float64         `json:"confidence"`
	KeyFactors       []string        `json:"key_factors"`
	SupportingCases  []rawCitation   `json:"supporting_cases"`
}

type rawReasoningStep struct {
	Category  string        `json:"category"`
	Content   string        `json:"content"`
	Citations []rawCitation `json:"citations"`
}

type rawPrediction struct {
	OverallOutcome           string               `json:"overall_outcome"`
	OverallConfidence        float64              `json:"overall_confidence"`
	IssuePredictions         []rawIssuePrediction `json:"issue_predictions"`
	ReasoningTrace           []rawReasoningStep   `json:"reasoning_trace"`
	KeyStrengths             []string             `json:"key_strengths"`
	KeyWeaknesses            []string             `json:"key_weaknesses"`
	Uncertainties            []string             `json:"uncertainties"`
	AssumptionsMade          []string             `json:"assumptions_made"`
	TenantRecoveryAmount     *float64             `json:"tenant_recovery_amount"`
	LandlordRecoveryAmount   *float64             `json:"landlord_recovery_amount"`
	PredictedSettlementRange *rawAmountRange      `json:"predicted_settlement_range"`
	ModelVersion             string               `json:"model_version"`
	RAGConfidence            *float64             `json:"rag_confidence"`
}

// extractJSON strips a leading/trailing markdown code fence if the model
// wrapped its JSON in one, the way raw LLM responses commonly do.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)
	if idx := strings.Index(response, "```json"); idx != -1 {
		rest := response[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if idx := strings.Index(response, "```"); idx != -1 {
		rest := response[idx+3:]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}
	return response
}

func parseRawPrediction(response string) (rawPrediction, error) {
	var rp rawPrediction
	if err := json.Unmarshal([]byte(extractJSON(response)), &rp); err != nil {
		return rawPrediction{}, err
	}
	return rp, nil
}
