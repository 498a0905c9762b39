package classifier

import "math"

// Model is a fitted binary logistic regression. Weights are indexed by the
// vectorizer's feature space; Classes lists the two outcomes in fixed order,
// where the decision function scores Classes[1].
type Model struct {
	Classes   []string  `json:"classes"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// PredictProba returns the probability of each class for a sparse feature
// vector, in the same order as Classes.
func (m *Model) PredictProba(vec map[int]float64) [2]float64 {
	score := m.Intercept
	for idx, val := range vec {
		score += m.Weights[idx] * val
	}

	p1 := sigmoid(score)
	return [2]float64{1 - p1, p1}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
