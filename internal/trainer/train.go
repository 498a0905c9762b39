package trainer

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/classifier"
	"github.com/reviewlens/backend/pkg/logger"
)

// Options control the TF-IDF fit and the logistic regression descent.
type Options struct {
	NgramMax     int
	MinDF        int
	MaxFeatures  int
	Epochs       int
	LearningRate float64
	TestFraction float64
	Seed         int64
}

func DefaultOptions() Options {
	return Options{
		NgramMax:     2,
		MinDF:        2,
		MaxFeatures:  20000,
		Epochs:       300,
		LearningRate: 0.5,
		TestFraction: 0.2,
		Seed:         42,
	}
}

// Report summarizes one fitted axis.
type Report struct {
	Axis      classifier.Axis
	Classes   []string
	TrainSize int
	TestSize  int
	Accuracy  float64
}

// Fit builds a TF-IDF vectorizer over docs and fits a binary logistic
// regression by gradient descent, with inverse-frequency class weights to
// absorb imbalance. positiveClass names the label scored by the decision
// function; the remaining label becomes the negative class. Accuracy is
// measured on a held-out split.
func Fit(docs, labels []string, positiveClass string, axis classifier.Axis, opts Options) (*classifier.Vectorizer, *classifier.Model, Report, error) {
	if len(docs) != len(labels) {
		return nil, nil, Report{}, fmt.Errorf("doc count %d does not match label count %d", len(docs), len(labels))
	}

	negativeClass, err := findNegativeClass(labels, positiveClass)
	if err != nil {
		return nil, nil, Report{}, fmt.Errorf("axis %s: %w", axis, err)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	perm := rng.Perm(len(docs))

	testSize := int(float64(len(docs)) * opts.TestFraction)
	testIdx := perm[:testSize]
	trainIdx := perm[testSize:]
	if len(trainIdx) == 0 {
		return nil, nil, Report{}, fmt.Errorf("axis %s: no training documents", axis)
	}

	vec := fitVectorizer(pick(docs, trainIdx), opts)

	y := make([]float64, len(docs))
	var nPos, nNeg float64
	for _, i := range trainIdx {
		if labels[i] == positiveClass {
			y[i] = 1
			nPos++
		} else {
			nNeg++
		}
	}
	for _, i := range testIdx {
		if labels[i] == positiveClass {
			y[i] = 1
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil, nil, Report{}, fmt.Errorf("axis %s: training split has only one class", axis)
	}

	// Balanced class weights, n / (2 * class count).
	n := nPos + nNeg
	wPos := n / (2 * nPos)
	wNeg := n / (2 * nNeg)

	features := make([]map[int]float64, len(docs))
	for _, i := range append(append([]int{}, trainIdx...), testIdx...) {
		features[i] = vec.Transform(docs[i])
	}

	model := &classifier.Model{
		Classes: []string{negativeClass, positiveClass},
		Weights: make([]float64, vec.NumFeatures()),
	}

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for _, i := range trainIdx {
			score := model.Intercept
			for idx, val := range features[i] {
				score += model.Weights[idx] * val
			}
			p := 1.0 / (1.0 + math.Exp(-score))

			grad := p - y[i]
			if y[i] == 1 {
				grad *= wPos
			} else {
				grad *= wNeg
			}

			for idx, val := range features[i] {
				model.Weights[idx] -= opts.LearningRate * grad * val
			}
			model.Intercept -= opts.LearningRate * grad
		}
	}

	correct := 0
	for _, i := range testIdx {
		probs := model.PredictProba(features[i])
		predicted := 0.0
		if probs[1] > probs[0] {
			predicted = 1
		}
		if predicted == y[i] {
			correct++
		}
	}

	report := Report{
		Axis:      axis,
		Classes:   model.Classes,
		TrainSize: len(trainIdx),
		TestSize:  len(testIdx),
	}
	if len(testIdx) > 0 {
		report.Accuracy = float64(correct) / float64(len(testIdx))
	}

	logger.Info("Axis fitted",
		zap.String("axis", string(axis)),
		zap.Int("features", vec.NumFeatures()),
		zap.Int("train_size", report.TrainSize),
		zap.Int("test_size", report.TestSize),
		zap.Float64("accuracy", report.Accuracy),
	)

	return vec, model, report, nil
}

// fitVectorizer builds the n-gram vocabulary and smoothed IDF weights
// from the training documents only, so the held-out split stays honest.
func fitVectorizer(docs []string, opts Options) *classifier.Vectorizer {
	vec := &classifier.Vectorizer{
		NgramMin: 1,
		NgramMax: opts.NgramMax,
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range vec.Analyze(doc) {
			if _, dup := seen[term]; !dup {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count >= opts.MinDF {
			terms = append(terms, term)
		}
	}

	if opts.MaxFeatures > 0 && len(terms) > opts.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if df[terms[i]] != df[terms[j]] {
				return df[terms[i]] > df[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:opts.MaxFeatures]
	}
	sort.Strings(terms)

	vec.Vocabulary = make(map[string]int, len(terms))
	vec.IDF = make([]float64, len(terms))
	nDocs := float64(len(docs))
	for i, term := range terms {
		vec.Vocabulary[term] = i
		vec.IDF[i] = math.Log((1+nDocs)/(1+float64(df[term]))) + 1
	}

	return vec
}

func findNegativeClass(labels []string, positiveClass string) (string, error) {
	negative := ""
	for _, l := range labels {
		if l == positiveClass {
			continue
		}
		if negative == "" {
			negative = l
		} else if l != negative {
			return "", fmt.Errorf("more than two classes in labels: %q, %q, %q", positiveClass, negative, l)
		}
	}
	if negative == "" {
		return "", fmt.Errorf("labels contain only class %q", positiveClass)
	}
	return negative, nil
}

func pick(docs []string, idx []int) []string {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, docs[i])
	}
	return out
}
