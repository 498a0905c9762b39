package classifier

import (
	"math"
	"regexp"
	"strings"
)

// termPattern matches the tokens the vectorizer was fitted on: runs of
// letters and digits, at least two characters long.
var termPattern = regexp.MustCompile(`[a-z0-9]{2,}`)

// Vectorizer is a fitted TF-IDF feature transformer. The vocabulary maps
// each n-gram to a feature index; IDF holds one weight per index.
// A loaded Vectorizer is read-only and safe for concurrent use.
type Vectorizer struct {
	NgramMin   int            `json:"ngram_min"`
	NgramMax   int            `json:"ngram_max"`
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// Analyze lowercases text and expands it into the n-gram terms the
// vocabulary is keyed by. Bigrams and above join their words with a space.
func (v *Vectorizer) Analyze(text string) []string {
	words := termPattern.FindAllString(strings.ToLower(text), -1)

	var terms []string
	for n := v.NgramMin; n <= v.NgramMax; n++ {
		if n <= 0 {
			continue
		}
		for i := 0; i+n <= len(words); i++ {
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}
	return terms
}

// Transform converts text into a sparse L2-normalized TF-IDF vector keyed
// by feature index. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(text string) map[int]float64 {
	counts := make(map[int]int)
	for _, term := range v.Analyze(text) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := make(map[int]float64, len(counts))
	var sumSquares float64
	for idx, count := range counts {
		w := float64(count) * v.IDF[idx]
		vec[idx] = w
		sumSquares += w * w
	}

	if sumSquares > 0 {
		norm := math.Sqrt(sumSquares)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

// NumFeatures returns the dimensionality of the fitted feature space.
func (v *Vectorizer) NumFeatures() int {
	return len(v.IDF)
}
