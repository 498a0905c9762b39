package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/circuitbreaker"
	"github.com/reviewlens/backend/pkg/config"
	"github.com/reviewlens/backend/pkg/logger"
	"github.com/reviewlens/backend/pkg/retry"
	"github.com/reviewlens/backend/pkg/utils"
)

// errTransient marks fetch failures worth retrying: network errors and
// 5xx responses. 4xx responses are permanent.
var errTransient = errors.New("transient fetch error")

var (
	pageParamPattern = regexp.MustCompile(`page=\d+`)
	readMorePattern  = regexp.MustCompile(`(?i)READ MORE`)
	whitespace       = regexp.MustCompile(`\s+`)
	digitPattern     = regexp.MustCompile(`\d`)
)

// cardSelectors are tried in order until one matches. The target site
// rotates its class names frequently, so older layouts stay as fallbacks.
var cardSelectors = []string{
	`div[class*="ZmyHeo"]`,
	`div._27M-vq`,
	`div[class*="review-card"]`,
}

// minBodyLength filters out truncated or empty review cards.
const minBodyLength = 15

// Scraper pulls product review pages from a shopping site and extracts
// the individual reviews. Fetches go through a retry policy and a circuit
// breaker so a blocking or failing site is backed off rather than hammered.
type Scraper struct {
	client    *http.Client
	userAgent string
	sleep     time.Duration
	breaker   *circuitbreaker.CircuitBreaker
}

func New(cfg config.ScraperConfig) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		userAgent: cfg.UserAgent,
		sleep:     time.Duration(cfg.SleepSec * float64(time.Second)),
		breaker: circuitbreaker.New("scraper", circuitbreaker.Config{
			FailureThreshold: 5,
			CooldownPeriod:   2 * time.Minute,
			Logger:           logger.Log,
		}),
	}
}

// ScrapeProduct fetches up to pages review pages starting from baseURL
// and returns the extracted reviews, deduplicated by body hash. Pages
// that fail after retries are skipped; the error is only returned when
// every page fails.
func (s *Scraper) ScrapeProduct(ctx context.Context, baseURL string, pages int) ([]models.ScrapedReview, error) {
	var reviews []models.ScrapedReview
	seen := make(map[string]struct{})
	failed := 0

	for page := 1; page <= pages; page++ {
		pageURL := normalizePageURL(baseURL, page)

		html, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			failed++
			metrics.ReviewsScraped.WithLabelValues("page_failed").Inc()
			logger.Warn("Failed to fetch review page",
				zap.String("url", pageURL), zap.Error(err))
			if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, context.Canceled) {
				break
			}
			continue
		}

		extracted := extractReviews(html, pageURL)
		logger.Info("Review page scraped",
			zap.String("url", pageURL), zap.Int("reviews", len(extracted)))

		for _, r := range extracted {
			if _, dup := seen[r.ContentHash]; dup {
				metrics.ReviewsScraped.WithLabelValues("duplicate").Inc()
				continue
			}
			seen[r.ContentHash] = struct{}{}
			reviews = append(reviews, r)
			metrics.ReviewsScraped.WithLabelValues("ok").Inc()
		}

		if page < pages {
			select {
			case <-ctx.Done():
				return reviews, ctx.Err()
			case <-time.After(s.sleep):
			}
		}
	}

	if failed == pages {
		return nil, fmt.Errorf("all %d pages failed for %s", pages, baseURL)
	}
	return reviews, nil
}

func (s *Scraper) fetchPage(ctx context.Context, pageURL string) (string, error) {
	var html string

	err := s.breaker.Execute(func() error {
		return retry.Do(ctx, retry.Config{
			MaxAttempts:     5,
			InitialDelay:    700 * time.Millisecond,
			RetryableErrors: []error{errTransient},
			Logger:          logger.Log,
		}, func() error {
			body, err := s.fetchOnce(ctx, pageURL)
			if err != nil {
				return err
			}
			html = body
			return nil
		})
	})

	return html, err
}

func (s *Scraper) fetchOnce(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en-US;q=0.9,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: status %d", errTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errTransient, err)
	}
	return string(body), nil
}

// normalizePageURL sets or replaces the page query parameter.
func normalizePageURL(baseURL string, page int) string {
	if pageParamPattern.MatchString(baseURL) {
		return pageParamPattern.ReplaceAllString(baseURL, fmt.Sprintf("page=%d", page))
	}
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", baseURL, sep, page)
}

// extractReviews pulls review cards out of one page of HTML, trying each
// known card selector until one matches.
func extractReviews(html, sourceURL string) []models.ScrapedReview {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("Failed to parse review page HTML", zap.Error(err))
		return nil
	}

	var cards *goquery.Selection
	for _, sel := range cardSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			cards = found
			break
		}
	}
	if cards == nil {
		return nil
	}

	var reviews []models.ScrapedReview
	cards.Each(func(_ int, card *goquery.Selection) {
		body := cleanText(firstText(card,
			`div[class*="ZmyHeo"] div`, `div.t-ZTKy div`, `div._6K-7Co`, `p[class*="review-body"]`))
		if len(body) <= minBodyLength {
			return
		}

		reviews = append(reviews, models.ScrapedReview{
			ID:        uuid.New().String(),
			SourceURL: sourceURL,
			Rating: parseRating(firstText(card,
				`div[class*="XQDdHH"]`, `div._3LWZlK`, `[class*="rating"]`)),
			Title: cleanText(firstText(card,
				`p[class*="z9E0IG"]`, `p._2-N8zT`, `p[class*="review-title"]`)),
			Body: body,
			Author: cleanText(firstText(card,
				`p[class*="MztJPv"]`, `p._2sc7ZR`, `p[class*="author"]`)),
			ReviewDate:  cleanText(firstText(card, `p[class*="review-date"]`)),
			ContentHash: utils.HashString(body),
			ScrapedAt:   time.Now(),
		})
	})

	return reviews
}

// firstText returns the text of the first selector that matches anything.
func firstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if found := s.Find(sel); found.Length() > 0 {
			return found.First().Text()
		}
	}
	return ""
}

func cleanText(text string) string {
	text = readMorePattern.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// parseRating extracts the leading digit of a rating badge like "4" or
// "4.5 ★". Unknown ratings come back as 0.
func parseRating(text string) int {
	d := digitPattern.FindString(text)
	if d == "" {
		return 0
	}
	return int(d[0] - '0')
}
