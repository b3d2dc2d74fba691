// Package store implements the Prediction store: a write-once, file-backed
// record per generation request under <data>/predictions/<prediction_id>,
// adapted from the teacher's local filesystem storage collaborator.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

// PredictionStore persists Prediction records. The engine writes once and
// never mutates; Save refuses to overwrite an existing record.
type PredictionStore struct {
	dir string
}

func NewPredictionStore(dataDir string) (*PredictionStore, error) {
	dir := filepath.Join(dataDir, "predictions")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, domain.NewError(domain.KindConfig, "NewPredictionStore", fmt.Errorf("creating predictions directory: %w", err))
	}
	return &PredictionStore{dir: dir}, nil
}

func (s *PredictionStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save persists p under its PredictionID. It is an error to call Save twice
// for the same id; Predictions are immutable once written.
func (s *PredictionStore) Save(_ context.Context, p domain.Prediction) error {
	if p.PredictionID == "" {
		return domain.NewError(domain.KindConfig, "PredictionStore.Save", fmt.Errorf("prediction id is required"))
	}
	path := s.path(p.PredictionID)
	if _, err := os.Stat(path); err == nil {
		return domain.NewError(domain.KindConfig, "PredictionStore.Save", fmt.Errorf("prediction %s already persisted; predictions are write-once", p.PredictionID))
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshaling prediction: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return domain.NewError(domain.KindConfig, "PredictionStore.Save", fmt.Errorf("writing prediction: %w", err))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return domain.NewError(domain.KindConfig, "PredictionStore.Save", fmt.Errorf("finalizing prediction: %w", err))
	}
	return nil
}

// Get loads a persisted Prediction by id.
func (s *PredictionStore) Get(_ context.Context, id string) (domain.Prediction, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Prediction{}, domain.NewError(domain.KindConfig, "PredictionStore.Get", fmt.Errorf("prediction %s not found", id))
		}
		return domain.Prediction{}, fmt.Errorf("store: reading prediction: %w", err)
	}
	var p domain.Prediction
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Prediction{}, fmt.Errorf("store: unmarshaling prediction: %w", err)
	}
	return p, nil
}
