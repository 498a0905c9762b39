package models

import "time"

// Label is one outcome of a two-class review classifier. Each axis is a
// closed set: sentiment is Positive/Negative, authenticity is Genuine/Fake.
type Label string

const (
	LabelPositive Label = "Positive"
	LabelNegative Label = "Negative"
	LabelGenuine  Label = "Genuine"
	LabelFake     Label = "Fake"
)

// AnalysisRecord is one classified review. Records are immutable once
// created and are appended to the history log exactly once.
type AnalysisRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	Review           string    `json:"review"`
	Sentiment        Label     `json:"sentiment"`
	SentimentProb    float64   `json:"sentiment_prob"`
	Authenticity     Label     `json:"authenticity"`
	AuthenticityProb float64   `json:"authenticity_prob"`
}

// WordBucketEntry is one ranked word in a word cloud. Size is relative to
// the most frequent word in the same bucket.
type WordBucketEntry struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
	Size  string `json:"size"`
}

// ScrapedReview is one raw review pulled from a product page by the
// offline scraper, before any labeling.
type ScrapedReview struct {
	ID          string    `json:"id"`
	SourceURL   string    `json:"source_url"`
	Rating      int       `json:"rating"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Author      string    `json:"author"`
	ReviewDate  string    `json:"review_date"`
	ContentHash string    `json:"content_hash"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// LabeledReview is one training example with both axis labels assigned.
type LabeledReview struct {
	Body         string `json:"body"`
	Sentiment    string `json:"sentiment"`    // "positive" or "negative"
	Authenticity string `json:"authenticity"` // "genuine" or "fake"
}
