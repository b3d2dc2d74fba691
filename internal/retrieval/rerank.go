package retrieval

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

// evidenceKeywords classifies a chunk's evidence-type mentions, grounded on
// the reranker's historical keyword table; unlike the issue-keyword
// dictionary this one is fixed (not part of user config) since it never
// varies across migrations.
var evidenceKeywords = map[string][]string{
	"inventory":       {"inventory", "schedule of condition", "check-in report", "check-out report"},
	"photographs":     {"photograph", "photo", "picture", "image"},
	"receipts":        {"receipt", "invoice", "quotation", "quote", "estimate"},
	"correspondence":  {"email", "letter", "text message", "whatsapp", "correspondence"},
	"witness":         {"witness", "testimony", "statement"},
	"contract":        {"tenancy agreement", "contract", "lease"},
}

func detectEvidenceTypes(text string) map[string]bool {
	out := map[string]bool{}
	if text == "" {
		return out
	}
	lower := strings.ToLower(text)
	for kind, keywords := range evidenceKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				out[kind] = true
				break
			}
		}
	}
	return out
}

func detectIssues(text string, issueKeywords map[string][]string) map[string]bool {
	out := map[string]bool{}
	if text == "" {
		return out
	}
	lower := strings.ToLower(text)
	for issue, keywords := range issueKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				out[issue] = true
				break
			}
		}
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection, union := 0, 0
	seen := map[string]bool{}
	for k := range a {
		seen[k] = true
		union++
		if b[k] {
			intersection++
		}
	}
	for k := range b {
		if !seen[k] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// temporalScore linearly decays from 1.0 at the current year to 0.0 ten
// years back, clipped to [0,1], per the normative formula.
func temporalScore(year, currentYear int) float64 {
	age := currentYear - year
	score := 1.0 - float64(age)/10.0
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func regionScore(chunkRegion, queryRegion string) float64 {
	if queryRegion == "" {
		return 0
	}
	if strings.EqualFold(chunkRegion, queryRegion) {
		return 1
	}
	return 0
}

func minMaxNormalize(values []float64, v float64) float64 {
	min, max := values[0], values[0]
	for _, x := range values {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	if max == min {
		return 1
	}
	return (v - min) / (max - min)
}

// rerank applies stage 2 (domain rerank) in place, sorting candidates by the
// spec's exact weighted formula and breaking ties by (higher year, then
// lower case_reference lexicographic).
func (r *Retriever) rerank(candidates []*candidate, q Query) {
	currentYear := time.Now().Year()

	queryIssues := map[string]bool{}
	for _, issue := range q.Issues {
		queryIssues[string(issue)] = true
	}
	queryEvidence := map[string]bool{}
	for _, e := range q.Evidence {
		queryEvidence[strings.ToLower(e)] = true
	}

	rrfScores := make([]float64, len(candidates))
	for i, c := range candidates {
		rrfScores[i] = c.rrfScore
	}

	for _, c := range candidates {
		resultIssues := detectIssues(c.chunk.Text, r.issueKeywords)
		resultEvidence := detectEvidenceTypes(c.chunk.Text)

		issueMatch := fractionMatched(queryIssues, resultIssues)
		temporal := temporalScore(c.chunk.Year, currentYear)
		region := regionScore(c.chunk.Region, q.Region)
		evidence := jaccard(queryEvidence, resultEvidence)
		rrfNorm := minMaxNormalize(rrfScores, c.rrfScore)

		c.finalScore = 0.4*issueMatch + 0.2*temporal + 0.1*region + 0.2*evidence + 0.1*rrfNorm
		c.relevanceNote = explain(resultIssues, queryIssues, temporal, region, c.chunk)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.finalScore != b.finalScore {
			return a.finalScore > b.finalScore
		}
		if a.chunk.Year != b.chunk.Year {
			return a.chunk.Year > b.chunk.Year
		}
		return a.chunk.CaseReference < b.chunk.CaseReference
	})
}

// fractionMatched is the issue_match factor: the fraction of the query's
// tagged issue types whose keywords also appear in the chunk. A query with
// no tagged issues has nothing to match, so the factor is 0 rather than
// undefined.
func fractionMatched(query, result map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	hit := 0
	for issue := range query {
		if result[issue] {
			hit++
		}
	}
	return float64(hit) / float64(len(query))
}

func explain(resultIssues, queryIssues map[string]bool, temporal, region float64, chunk domain.DocumentChunk) string {
	var parts []string
	var matched []string
	for issue := range resultIssues {
		if queryIssues[issue] {
			matched = append(matched, strings.ReplaceAll(issue, "_", " "))
		}
	}
	if len(matched) > 0 {
		sort.Strings(matched)
		parts = append(parts, "matches issues: "+strings.Join(matched, ", "))
	}
	if temporal >= 0.9 {
		parts = append(parts, "recent case ("+strconv.Itoa(chunk.Year)+")")
	} else if temporal >= 0.7 {
		parts = append(parts, "relatively recent ("+strconv.Itoa(chunk.Year)+")")
	}
	if region >= 1 {
		parts = append(parts, "same region ("+chunk.Region+")")
	}
	if len(parts) == 0 {
		return "general relevance"
	}
	return strings.Join(parts, "; ")
}
