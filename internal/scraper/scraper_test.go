package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/reviewlens/backend/pkg/config"
	"github.com/reviewlens/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testScraper() *Scraper {
	return New(config.ScraperConfig{
		Pages:      1,
		SleepSec:   0,
		TimeoutSec: 5,
		UserAgent:  "test-agent",
	})
}

func TestNormalizePageURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		page int
		want string
	}{
		{
			name: "no query string",
			base: "https://example.com/product/reviews",
			page: 1,
			want: "https://example.com/product/reviews?page=1",
		},
		{
			name: "existing query string",
			base: "https://example.com/product/reviews?sort=recent",
			page: 2,
			want: "https://example.com/product/reviews?sort=recent&page=2",
		},
		{
			name: "existing page parameter replaced",
			base: "https://example.com/product/reviews?page=1&sort=recent",
			page: 5,
			want: "https://example.com/product/reviews?page=5&sort=recent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePageURL(tt.base, tt.page); got != tt.want {
				t.Errorf("normalizePageURL(%q, %d) = %q, want %q", tt.base, tt.page, got, tt.want)
			}
		})
	}
}

const reviewPageHTML = `
<html><body>
  <div class="review-card">
    <div class="_3LWZlK">5</div>
    <p class="review-title">Terrific value</p>
    <p class="review-body">The camera is excellent and the battery lasts two days easily.READ MORE</p>
    <p class="author">Asha</p>
  </div>
  <div class="review-card">
    <div class="_3LWZlK">1</div>
    <p class="review-title">Disappointed</p>
    <p class="review-body">Stopped working within a week, support was unhelpful.</p>
    <p class="author">Rahul</p>
  </div>
  <div class="review-card">
    <p class="review-body">Too short</p>
  </div>
</body></html>`

func TestExtractReviews(t *testing.T) {
	reviews := extractReviews(reviewPageHTML, "https://example.com/p?page=1")

	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews (short body filtered), got %d", len(reviews))
	}

	first := reviews[0]
	if first.Rating != 5 {
		t.Errorf("rating = %d, want 5", first.Rating)
	}
	if first.Title != "Terrific value" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Author != "Asha" {
		t.Errorf("author = %q", first.Author)
	}
	if first.Body != "The camera is excellent and the battery lasts two days easily." {
		t.Errorf("READ MORE suffix not stripped: %q", first.Body)
	}
	if first.ContentHash == "" || first.ID == "" {
		t.Error("content hash and id must be set")
	}
	if first.SourceURL != "https://example.com/p?page=1" {
		t.Errorf("source url = %q", first.SourceURL)
	}

	if reviews[1].Rating != 1 {
		t.Errorf("second rating = %d, want 1", reviews[1].Rating)
	}
	if first.ContentHash == reviews[1].ContentHash {
		t.Error("different bodies must hash differently")
	}
}

func TestExtractReviewsNoCards(t *testing.T) {
	reviews := extractReviews("<html><body><p>no reviews here</p></body></html>", "https://example.com")
	if len(reviews) != 0 {
		t.Errorf("expected no reviews, got %d", len(reviews))
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  spaced   out\n text ", "spaced out text"},
		{"Great phoneREAD MORE", "Great phone"},
		{"Great phoneread more", "Great phone"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanText(tt.in); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"5", 5},
		{"4.5 stars", 4},
		{"★ 3", 3},
		{"no digits", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseRating(tt.in); got != tt.want {
			t.Errorf("parseRating(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFetchOnce(t *testing.T) {
	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte("page body"))
	}))
	defer srv.Close()

	s := testScraper()
	body, err := s.fetchOnce(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetchOnce: %v", err)
	}
	if body != "page body" {
		t.Errorf("body = %q", body)
	}
	if gotUserAgent != "test-agent" {
		t.Errorf("user agent = %q, want test-agent", gotUserAgent)
	}
}

func TestFetchOnceServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testScraper().fetchOnce(context.Background(), srv.URL)
	if !errors.Is(err, errTransient) {
		t.Errorf("5xx should be transient, got %v", err)
	}
}

func TestFetchOnceClientErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testScraper().fetchOnce(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if errors.Is(err, errTransient) {
		t.Error("4xx must not be retried")
	}
}

func TestScrapeProductDeduplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Every page serves the same reviews; page 2 must contribute nothing.
		w.Write([]byte(reviewPageHTML))
	}))
	defer srv.Close()

	reviews, err := testScraper().ScrapeProduct(context.Background(), srv.URL, 2)
	if err != nil {
		t.Fatalf("ScrapeProduct: %v", err)
	}
	if len(reviews) != 2 {
		t.Errorf("expected 2 unique reviews across duplicate pages, got %d", len(reviews))
	}
}
