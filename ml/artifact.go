// Package ml trains, persists and serves the wildfire risk classifier.
package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrModelUnavailable means the artifact is missing or unreadable.
// Serving stays up in a degraded state when this happens.
var ErrModelUnavailable = errors.New("model artifact unavailable")

const modelTypeGradientBoosting = "gradient_boosting"

// Artifact bundles the fitted classifier with the exact ordered column
// list it was trained on. Inference alignment reads FeatureColumns
// from here, never by introspecting the model.
type Artifact struct {
	ModelType      string            `json:"model_type"`
	FeatureColumns []string          `json:"feature_columns"`
	TrainedAt      time.Time         `json:"trained_at"`
	Model          *GradientBoosting `json:"model"`
}

// NewArtifact wraps a fitted model with its training-time column order.
func NewArtifact(model *GradientBoosting, featureColumns []string) *Artifact {
	columns := make([]string, len(featureColumns))
	copy(columns, featureColumns)
	return &Artifact{
		ModelType:      modelTypeGradientBoosting,
		FeatureColumns: columns,
		TrainedAt:      time.Now().UTC(),
		Model:          model,
	}
}

// Save serializes the artifact to path as JSON.
func (a *Artifact) Save(path string) error {
	if a.Model == nil || len(a.Model.Trees) == 0 {
		return errors.New("model not trained")
	}
	if len(a.FeatureColumns) == 0 {
		return errors.New("feature columns missing")
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// LoadArtifact reads an artifact from path. Any failure maps to
// ErrModelUnavailable so the caller can turn it into the degraded
// serving state.
func LoadArtifact(path string) (*Artifact, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if artifact.ModelType != modelTypeGradientBoosting {
		return nil, fmt.Errorf("%w: unsupported model type %q", ErrModelUnavailable, artifact.ModelType)
	}
	if artifact.Model == nil || len(artifact.Model.Trees) == 0 {
		return nil, fmt.Errorf("%w: empty model", ErrModelUnavailable)
	}
	if len(artifact.FeatureColumns) == 0 {
		return nil, fmt.Errorf("%w: no feature columns", ErrModelUnavailable)
	}
	return &artifact, nil
}

// PredictProba aligns the input row against the training-time columns
// and returns the positive-class probability.
func (a *Artifact) PredictProba(input map[string]float64) (float64, error) {
	if a.Model == nil {
		return 0, ErrModelUnavailable
	}
	return a.Model.PredictProba(AlignFeatures(input, a.FeatureColumns))
}
