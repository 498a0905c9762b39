package trainer

import (
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

func TestSentimentLabel(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		rating int
		want   string
		wantOK bool
	}{
		{
			name:   "clearly positive text",
			body:   "I love this phone, it is absolutely amazing and wonderful",
			rating: 0,
			want:   "positive",
			wantOK: true,
		},
		{
			name:   "clearly negative text",
			body:   "This is terrible, awful and a horrible waste of money",
			rating: 0,
			want:   "negative",
			wantOK: true,
		},
		{
			name:   "neutral text falls back to high rating",
			body:   "It arrived on tuesday inside a cardboard box",
			rating: 5,
			want:   "positive",
			wantOK: true,
		},
		{
			name:   "neutral text falls back to low rating",
			body:   "It arrived on tuesday inside a cardboard box",
			rating: 1,
			want:   "negative",
			wantOK: true,
		},
		{
			name:   "neutral text with neutral rating dropped",
			body:   "It arrived on tuesday inside a cardboard box",
			rating: 3,
			wantOK: false,
		},
		{
			name:   "neutral text with missing rating dropped",
			body:   "It arrived on tuesday inside a cardboard box",
			rating: 0,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sentimentLabel(models.ScrapedReview{Body: tt.body, Rating: tt.rating})
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("label = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthenticityLabel(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "very short review is fake",
			body: "nice product good",
			want: "fake",
		},
		{
			name: "stock promo phrase is fake",
			body: "This is a must buy item for everyone looking at this category",
			want: "fake",
		},
		{
			name: "promo phrase matched case insensitively",
			body: "Truly an Awesome Product in every way you could possibly imagine",
			want: "fake",
		},
		{
			name: "repeated exclamation marks are fake",
			body: "Cannot believe how nice this looks!!! Everyone should see it today",
			want: "fake",
		},
		{
			name: "ordinary detailed review is genuine",
			body: "The screen is bright and the speakers are loud enough for a small room",
			want: "genuine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authenticityLabel(tt.body); got != tt.want {
				t.Errorf("authenticityLabel(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestBootstrapLabelsDropsUnlabelable(t *testing.T) {
	reviews := []models.ScrapedReview{
		{Body: "I love this phone, it is absolutely amazing and wonderful", Rating: 5},
		{Body: "It arrived on tuesday inside a cardboard box", Rating: 3},
	}

	labeled := BootstrapLabels(reviews)
	if len(labeled) != 1 {
		t.Fatalf("expected 1 labeled review, got %d", len(labeled))
	}
	if labeled[0].Sentiment != "positive" {
		t.Errorf("sentiment = %q, want positive", labeled[0].Sentiment)
	}
	if labeled[0].Authenticity != "genuine" {
		t.Errorf("authenticity = %q, want genuine", labeled[0].Authenticity)
	}
}
