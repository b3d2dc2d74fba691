package synth

import (
	"context"
	"strings"
	"testing"

	"github.com/tenancydeposit/tribunalrag/internal/config"
	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

func completeCaseFile() domain.CaseFile {
	return domain.CaseFile{
		CaseID:   "case-1",
		UserRole: domain.RoleTenant,
		Property: domain.Property{Address: "1 Example Street", Region: "LON"},
		Tenancy:  domain.Tenancy{StartDate: "2023-01-01", DepositAmount: 1500},
		Issues:   []domain.IssueType{domain.IssueDepositProtection},
		DepositProtectionKnown: true,
	}
}

func TestGenerateReturnsRefusalOnIncompleteIntake(t *testing.T) {
	s := New(nil, nil, nil, config.LLMConfig{}, "disclaimer", nil)
	cf := domain.CaseFile{CaseID: "case-2", UserRole: domain.RoleTenant}
	p, err := s.Generate(context.Background(), cf, Options{})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if p.OverallOutcome != domain.OutcomeUncertain {
		t.Fatalf("expected uncertain outcome on incomplete intake, got %s", p.OverallOutcome)
	}
	if len(p.MissingInfo) == 0 {
		t.Fatal("expected missing fields to be reported")
	}
}

func TestApplyCiteOrAbstainDropsUnretrievedCitation(t *testing.T) {
	rr := domain.RetrievalResult{
		Results: []domain.ScoredChunk{
			{Chunk: domain.DocumentChunk{CaseReference: "LON_00BK_HMF_2022_0227", Text: "the landlord failed to protect the deposit"}},
		},
	}
	p := domain.Prediction{
		OverallOutcome: domain.OutcomeTenantFavored,
		Issues: []domain.IssuePrediction{
			{
				Issue: domain.IssueDepositProtection,
				Citations: []domain.Citation{
					{CaseReference: "LON_00BK_HMF_2099_9999", Quote: "invented quote"},
				},
			},
		},
	}
	out := applyCiteOrAbstain(p, rr)
	if len(out.Issues[0].Citations) != 0 {
		t.Fatal("expected unretrieved citation to be dropped")
	}
	if out.OverallOutcome != domain.OutcomeUncertain {
		t.Fatalf("expected downgrade to uncertain when the only citation is dropped, got %s", out.OverallOutcome)
	}
}

func TestApplyCiteOrAbstainKeepsValidQuote(t *testing.T) {
	rr := domain.RetrievalResult{
		Results: []domain.ScoredChunk{
			{Chunk: domain.DocumentChunk{CaseReference: "LON_00BK_HMF_2022_0227", Text: "the landlord failed to protect the deposit within 30 days"}},
		},
	}
	p := domain.Prediction{
		OverallOutcome: domain.OutcomeTenantFavored,
		Issues: []domain.IssuePrediction{
			{
				Issue: domain.IssueDepositProtection,
				Citations: []domain.Citation{
					{CaseReference: "LON_00BK_HMF_2022_0227", Quote: "failed to protect the deposit"},
				},
			},
		},
	}
	out := applyCiteOrAbstain(p, rr)
	if len(out.Issues[0].Citations) != 1 {
		t.Fatal("expected valid citation to survive")
	}
	if out.OverallOutcome != domain.OutcomeTenantFavored {
		t.Fatalf("expected outcome to remain unchanged, got %s", out.OverallOutcome)
	}
}

func TestBuildQueryIncludesRoleIssuesAndRegion(t *testing.T) {
	q := BuildQuery(completeCaseFile())
	if q == "" {
		t.Fatal("expected non-empty query")
	}
	for _, want := range []string{"tenant", "deposit-protection", "LON"} {
		if !strings.Contains(q, want) {
			t.Fatalf("expected query to contain %q, got %q", want, q)
		}
	}
}
