package wordcloud

import (
	"fmt"
	"sort"

	"github.com/reviewlens/backend/internal/history"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/internal/textutil"
)

const maxWordsPerBucket = 30

// Clouds holds the ranked word lists for all four label buckets.
type Clouds struct {
	Positive []models.WordBucketEntry `json:"positive"`
	Negative []models.WordBucketEntry `json:"negative"`
	Genuine  []models.WordBucketEntry `json:"genuine"`
	Fake     []models.WordBucketEntry `json:"fake"`
}

// counter tracks word frequencies while remembering first-seen order, so
// ties between equal counts rank deterministically.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) update(words []string) {
	for _, w := range words {
		if _, seen := c.counts[w]; !seen {
			c.order = append(c.order, w)
		}
		c.counts[w]++
	}
}

// Engine derives word clouds from the full history log. Results are
// recomputed on every call, never cached; concurrent appends may make two
// consecutive builds differ.
type Engine struct {
	store *history.Store
}

func NewEngine(store *history.Store) *Engine {
	return &Engine{store: store}
}

// Build scans the whole history log and produces one ranked,
// size-annotated word list per label bucket. Each review's words count
// toward exactly one sentiment bucket and one authenticity bucket.
// Buckets with no matching records come back empty, not nil.
func (e *Engine) Build() (Clouds, error) {
	records, err := e.store.ReadAll()
	if err != nil {
		return Clouds{}, fmt.Errorf("failed to read history: %w", err)
	}

	positive := newCounter()
	negative := newCounter()
	genuine := newCounter()
	fake := newCounter()

	for _, rec := range records {
		words := textutil.Tokenize(rec.Review)

		switch rec.Sentiment {
		case models.LabelPositive:
			positive.update(words)
		case models.LabelNegative:
			negative.update(words)
		}

		switch rec.Authenticity {
		case models.LabelGenuine:
			genuine.update(words)
		case models.LabelFake:
			fake.update(words)
		}
	}

	return Clouds{
		Positive: makeCloud(positive, maxWordsPerBucket),
		Negative: makeCloud(negative, maxWordsPerBucket),
		Genuine:  makeCloud(genuine, maxWordsPerBucket),
		Fake:     makeCloud(fake, maxWordsPerBucket),
	}, nil
}

// makeCloud ranks a bucket's words by count descending and annotates each
// entry with a relative size. The thresholds are strict: a count at
// exactly 66% or 33% of the max falls into the lower size class.
func makeCloud(c *counter, limit int) []models.WordBucketEntry {
	entries := make([]models.WordBucketEntry, 0, len(c.order))
	for _, w := range c.order {
		entries = append(entries, models.WordBucketEntry{Word: w, Count: c.counts[w]})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return entries
	}

	maxCount := entries[0].Count
	for i := range entries {
		ratio := float64(entries[i].Count) / float64(maxCount)
		switch {
		case ratio > 0.66:
			entries[i].Size = "large"
		case ratio > 0.33:
			entries[i].Size = "medium"
		default:
			entries[i].Size = "small"
		}
	}
	return entries
}
