package classifier

import (
	"errors"
	"os"
	"testing"

	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testArtifacts() (*Vectorizer, *Model) {
	vec := &Vectorizer{
		NgramMin:   1,
		NgramMax:   2,
		Vocabulary: map[string]int{"bad": 0, "good": 1, "good screen": 2, "screen": 3},
		IDF:        []float64{1.2, 1.0, 1.7, 1.3},
	}
	model := &Model{
		Classes:   []string{"negative", "positive"},
		Weights:   []float64{-3.0, 3.0, 1.0, 0.2},
		Intercept: 0.0,
	}
	return vec, model
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	vec, model := testArtifacts()

	if err := SaveArtifacts(dir, AxisSentiment, vec, model); err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}

	adapter, err := Load(dir, AxisSentiment)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if adapter.Axis() != AxisSentiment {
		t.Errorf("axis = %s, want sentiment", adapter.Axis())
	}

	label, prob := adapter.Classify("good screen")
	if label != models.LabelPositive {
		t.Errorf("label = %s, want positive", label)
	}
	if prob < 50 || prob > 100 {
		t.Errorf("confidence = %f, want within (50, 100]", prob)
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := Load(t.TempDir(), AxisSentiment)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestLoadCorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	vec, model := testArtifacts()
	if err := SaveArtifacts(dir, AxisAuthenticity, vec, model); err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}
	if err := os.WriteFile(dir+"/authenticity_model.json", []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir, AxisAuthenticity)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestNewAdapterValidation(t *testing.T) {
	vec, model := testArtifacts()

	three := &Model{
		Classes: []string{"negative", "neutral", "positive"},
		Weights: model.Weights,
	}
	if _, err := NewAdapter(AxisSentiment, vec, three); !errors.Is(err, ErrUnexpectedClassCount) {
		t.Errorf("three classes: expected ErrUnexpectedClassCount, got %v", err)
	}

	short := &Model{
		Classes: []string{"negative", "positive"},
		Weights: []float64{1.0},
	}
	if _, err := NewAdapter(AxisSentiment, vec, short); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("weight mismatch: expected ErrModelUnavailable, got %v", err)
	}

	badVec := &Vectorizer{
		Vocabulary: map[string]int{"good": 0},
		IDF:        []float64{1.0, 2.0},
	}
	if _, err := NewAdapter(AxisSentiment, badVec, model); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("vocabulary mismatch: expected ErrModelUnavailable, got %v", err)
	}
}

func TestClassifyLabelMapping(t *testing.T) {
	vec := &Vectorizer{
		NgramMin:   1,
		NgramMax:   1,
		Vocabulary: map[string]int{"bad": 0, "good": 1},
		IDF:        []float64{1.0, 1.0},
	}
	model := &Model{
		Classes: []string{"negative", "positive"},
		Weights: []float64{-4.0, 4.0},
	}

	sentiment, err := NewAdapter(AxisSentiment, vec, model)
	if err != nil {
		t.Fatal(err)
	}

	if label, _ := sentiment.Classify("good"); label != models.LabelPositive {
		t.Errorf("sentiment 'good' = %s, want positive", label)
	}
	if label, _ := sentiment.Classify("bad"); label != models.LabelNegative {
		t.Errorf("sentiment 'bad' = %s, want negative", label)
	}

	authModel := &Model{
		Classes: []string{"fake", "genuine"},
		Weights: []float64{-4.0, 4.0},
	}
	authenticity, err := NewAdapter(AxisAuthenticity, vec, authModel)
	if err != nil {
		t.Fatal(err)
	}

	if label, _ := authenticity.Classify("good"); label != models.LabelGenuine {
		t.Errorf("authenticity 'good' = %s, want genuine", label)
	}
	if label, _ := authenticity.Classify("bad"); label != models.LabelFake {
		t.Errorf("authenticity 'bad' = %s, want fake", label)
	}
}

func TestClassifyConfidenceFloor(t *testing.T) {
	vec, model := testArtifacts()
	adapter, err := NewAdapter(AxisSentiment, vec, model)
	if err != nil {
		t.Fatal(err)
	}

	// Even on text with no vocabulary hits the argmax winner carries at
	// least 50 percent.
	_, prob := adapter.Classify("zzz qqq")
	if prob < 50 {
		t.Errorf("confidence = %f, want >= 50", prob)
	}
}
