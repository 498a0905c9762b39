package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
)

// Axis identifies which of the two independent classifiers an adapter
// wraps. The axis also determines the artifact file names.
type Axis string

const (
	AxisSentiment    Axis = "sentiment"
	AxisAuthenticity Axis = "authenticity"
)

var (
	// ErrModelUnavailable means a required model artifact is missing or
	// corrupt. Fatal at startup: the service must not serve without both
	// classifiers.
	ErrModelUnavailable = errors.New("model artifact unavailable")

	// ErrUnexpectedClassCount means a loaded model does not have exactly
	// two classes. The label mapping is a closed two-class enum per axis,
	// so anything else must fail fast rather than mis-map.
	ErrUnexpectedClassCount = errors.New("model does not have exactly two classes")
)

// Adapter binds a fitted feature transformer and classifier pair behind a
// text -> (label, confidence) contract. Adapters are immutable after Load
// and safe for concurrent use by multiple requests.
type Adapter struct {
	axis  Axis
	vec   *Vectorizer
	model *Model
}

// Load reads the vectorizer and model artifacts for one axis from
// modelsDir. Returns ErrModelUnavailable if either artifact cannot be
// loaded, ErrUnexpectedClassCount if the model is not binary.
func Load(modelsDir string, axis Axis) (*Adapter, error) {
	var vec Vectorizer
	vecPath := filepath.Join(modelsDir, fmt.Sprintf("%s_vectorizer.json", axis))
	if err := readArtifact(vecPath, &vec); err != nil {
		return nil, err
	}

	var model Model
	modelPath := filepath.Join(modelsDir, fmt.Sprintf("%s_model.json", axis))
	if err := readArtifact(modelPath, &model); err != nil {
		return nil, err
	}

	adapter, err := NewAdapter(axis, &vec, &model)
	if err != nil {
		return nil, err
	}

	logger.Info("Model loaded",
		zap.String("axis", string(axis)),
		zap.Int("features", vec.NumFeatures()),
		zap.Strings("classes", model.Classes),
	)

	return adapter, nil
}

// NewAdapter validates a vectorizer/model pair and binds them to an axis.
func NewAdapter(axis Axis, vec *Vectorizer, model *Model) (*Adapter, error) {
	if len(model.Classes) != 2 {
		return nil, fmt.Errorf("%w: axis %s has %d classes",
			ErrUnexpectedClassCount, axis, len(model.Classes))
	}
	if len(vec.Vocabulary) != len(vec.IDF) {
		return nil, fmt.Errorf("%w: axis %s vocabulary size %d does not match idf size %d",
			ErrModelUnavailable, axis, len(vec.Vocabulary), len(vec.IDF))
	}
	if len(model.Weights) != len(vec.IDF) {
		return nil, fmt.Errorf("%w: axis %s weight count %d does not match feature count %d",
			ErrModelUnavailable, axis, len(model.Weights), len(vec.IDF))
	}

	return &Adapter{axis: axis, vec: vec, model: model}, nil
}

// Axis returns the axis this adapter classifies.
func (a *Adapter) Axis() Axis {
	return a.axis
}

// Classify transforms raw text into the fitted feature space, scores both
// classes, and returns the winning label with its probability expressed as
// a percentage. The winner is the argmax of two classes, so the confidence
// is always at least 50.
func (a *Adapter) Classify(text string) (models.Label, float64) {
	vec := a.vec.Transform(text)
	probs := a.model.PredictProba(vec)

	idx := 0
	if probs[1] > probs[0] {
		idx = 1
	}

	return a.displayLabel(a.model.Classes[idx]), probs[idx] * 100
}

// displayLabel maps a raw training-time class name to the caller-facing
// label for this axis.
func (a *Adapter) displayLabel(raw string) models.Label {
	switch raw {
	case "positive":
		return models.LabelPositive
	case "genuine":
		return models.LabelGenuine
	}
	if a.axis == AxisSentiment {
		return models.LabelNegative
	}
	return models.LabelFake
}

func readArtifact(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelUnavailable, path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelUnavailable, path, err)
	}
	return nil
}

// SaveArtifacts writes the vectorizer and model for one axis into dir,
// creating it if needed. The trainer uses this; the file names match what
// Load expects.
func SaveArtifacts(dir string, axis Axis, vec *Vectorizer, model *Model) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create models dir: %w", err)
	}

	files := []struct {
		name string
		data interface{}
	}{
		{fmt.Sprintf("%s_vectorizer.json", axis), vec},
		{fmt.Sprintf("%s_model.json", axis), model},
	}

	for _, f := range files {
		data, err := json.Marshal(f.data)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	return nil
}
