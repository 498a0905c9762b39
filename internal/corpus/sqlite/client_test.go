package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })

	if err := c.InitSchema(); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestInsertScrapedReviewDeduplicates(t *testing.T) {
	c := testClient(t)

	r := models.ScrapedReview{
		ID:          "id-1",
		SourceURL:   "https://example.com/p?page=1",
		Rating:      5,
		Title:       "Great",
		Body:        "The camera is excellent and the battery lasts two days",
		Author:      "Asha",
		ContentHash: "hash-1",
		ScrapedAt:   time.Now(),
	}

	inserted, err := c.InsertScrapedReview(&r)
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Error("first insert should report a new row")
	}

	dup := r
	dup.ID = "id-2"
	inserted, err = c.InsertScrapedReview(&dup)
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Error("duplicate content hash should be ignored")
	}

	n, err := c.CountScrapedReviews()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestListScrapedReviewsRoundtrip(t *testing.T) {
	c := testClient(t)

	want := models.ScrapedReview{
		ID:          "id-1",
		SourceURL:   "https://example.com/p",
		Rating:      4,
		Title:       "Decent",
		Body:        "Works as described, delivery took a while though",
		Author:      "Rahul",
		ReviewDate:  "Aug 2026",
		ContentHash: "hash-abc",
		ScrapedAt:   time.Unix(1756200000, 0),
	}
	if _, err := c.InsertScrapedReview(&want); err != nil {
		t.Fatal(err)
	}

	got, err := c.ListScrapedReviews()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 review, got %d", len(got))
	}
	if got[0].Body != want.Body || got[0].Rating != want.Rating || got[0].ContentHash != want.ContentHash {
		t.Errorf("roundtrip mismatch: %+v", got[0])
	}
	if !got[0].ScrapedAt.Equal(want.ScrapedAt) {
		t.Errorf("scraped_at = %v, want %v", got[0].ScrapedAt, want.ScrapedAt)
	}
}

func TestReplaceLabeledReviews(t *testing.T) {
	c := testClient(t)

	first := []models.LabeledReview{
		{Body: "old snapshot", Sentiment: "positive", Authenticity: "genuine"},
	}
	if err := c.ReplaceLabeledReviews(first); err != nil {
		t.Fatal(err)
	}

	second := []models.LabeledReview{
		{Body: "good phone overall", Sentiment: "positive", Authenticity: "genuine"},
		{Body: "must buy", Sentiment: "positive", Authenticity: "fake"},
	}
	if err := c.ReplaceLabeledReviews(second); err != nil {
		t.Fatal(err)
	}

	got, err := c.ListLabeledReviews()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected snapshot replacement to leave 2 rows, got %d", len(got))
	}
	if got[0].Body != "good phone overall" || got[1].Authenticity != "fake" {
		t.Errorf("unexpected rows: %+v", got)
	}
}

func TestInitSchemaIdempotent(t *testing.T) {
	c := testClient(t)
	if err := c.InitSchema(); err != nil {
		t.Errorf("second InitSchema should succeed: %v", err)
	}
}
