package trainer

import (
	"strings"

	"github.com/jonreiter/govader"

	"github.com/reviewlens/backend/internal/models"
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

// Compound-score cutoffs for the VADER sentiment seed. Reviews scoring
// between the two fall back to their star rating, and are dropped when
// the rating is missing or a neutral 3.
const (
	positiveCompound = 0.25
	negativeCompound = -0.25
)

// promoPhrases are the stock phrases that flood incentivized reviews on
// the source site.
var promoPhrases = []string{
	"must buy",
	"value for money",
	"awesome product",
	"highly recommended",
	"best product",
}

// BootstrapLabels synthesizes training labels for scraped reviews:
// sentiment from a VADER lexicon score with a star-rating fallback, and
// an authenticity seed from promotional-style heuristics. Reviews with no
// usable sentiment signal are dropped.
func BootstrapLabels(reviews []models.ScrapedReview) []models.LabeledReview {
	labeled := make([]models.LabeledReview, 0, len(reviews))

	for _, r := range reviews {
		sentiment, ok := sentimentLabel(r)
		if !ok {
			continue
		}

		labeled = append(labeled, models.LabeledReview{
			Body:         r.Body,
			Sentiment:    sentiment,
			Authenticity: authenticityLabel(r.Body),
		})
	}

	return labeled
}

func sentimentLabel(r models.ScrapedReview) (string, bool) {
	compound := analyzer.PolarityScores(r.Body).Compound

	switch {
	case compound >= positiveCompound:
		return "positive", true
	case compound <= negativeCompound:
		return "negative", true
	case r.Rating >= 4:
		return "positive", true
	case r.Rating >= 1 && r.Rating <= 2:
		return "negative", true
	}
	return "", false
}

// authenticityLabel marks reviews that look like promotional filler:
// very short, stuffed with stock praise phrases, or shouting with
// repeated exclamation marks.
func authenticityLabel(body string) string {
	lower := strings.ToLower(body)

	if len(strings.Fields(lower)) <= 6 {
		return "fake"
	}
	for _, phrase := range promoPhrases {
		if strings.Contains(lower, phrase) {
			return "fake"
		}
	}
	if strings.Count(body, "!") >= 3 {
		return "fake"
	}
	return "genuine"
}
