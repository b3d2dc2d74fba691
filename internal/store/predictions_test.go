package store

import (
	"context"
	"testing"
	"time"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

func TestSaveThenGetRoundTrips(t *testing.T) {
	s, err := NewPredictionStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewPredictionStore: %v", err)
	}
	p := domain.Prediction{PredictionID: "p1", CaseID: "c1", GeneratedAt: time.Now(), OverallOutcome: domain.OutcomeUncertain}
	if err := s.Save(context.Background(), p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CaseID != "c1" {
		t.Fatalf("got CaseID %q, want c1", got.CaseID)
	}
}

func TestSaveRefusesOverwrite(t *testing.T) {
	s, err := NewPredictionStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewPredictionStore: %v", err)
	}
	p := domain.Prediction{PredictionID: "p1", CaseID: "c1"}
	if err := s.Save(context.Background(), p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(context.Background(), p); err == nil {
		t.Fatal("expected second Save of the same prediction id to fail")
	}
}
