package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
)

// Client stores the scraped-review corpus the trainer learns from.
// Scraped rows are deduplicated by content hash; labeled rows are the
// bootstrapped training snapshot derived from them.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create corpus dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("Corpus client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scraped_reviews (
		id TEXT PRIMARY KEY,
		source_url TEXT NOT NULL,
		rating INTEGER NOT NULL DEFAULT 0,
		title TEXT,
		body TEXT NOT NULL,
		author TEXT,
		review_date TEXT,
		content_hash TEXT UNIQUE NOT NULL,
		scraped_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scraped_hash ON scraped_reviews(content_hash);
	CREATE INDEX IF NOT EXISTS idx_scraped_rating ON scraped_reviews(rating);

	CREATE TABLE IF NOT EXISTS labeled_reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		body TEXT NOT NULL,
		sentiment TEXT NOT NULL,
		authenticity TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Corpus schema initialized")
	return nil
}

// InsertScrapedReview adds one scraped review, skipping duplicates by
// content hash. Returns whether a new row was inserted.
func (c *Client) InsertScrapedReview(r *models.ScrapedReview) (bool, error) {
	query := `
		INSERT OR IGNORE INTO scraped_reviews
			(id, source_url, rating, title, body, author, review_date, content_hash, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := c.db.Exec(
		query,
		r.ID,
		r.SourceURL,
		r.Rating,
		r.Title,
		r.Body,
		r.Author,
		r.ReviewDate,
		r.ContentHash,
		r.ScrapedAt.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert scraped review: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check insert result: %w", err)
	}
	return n > 0, nil
}

func (c *Client) ListScrapedReviews() ([]models.ScrapedReview, error) {
	query := `
		SELECT id, source_url, rating, title, body, author, review_date, content_hash, scraped_at
		FROM scraped_reviews
		ORDER BY scraped_at
	`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scraped reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.ScrapedReview
	for rows.Next() {
		var r models.ScrapedReview
		var scrapedAt int64

		err := rows.Scan(&r.ID, &r.SourceURL, &r.Rating, &r.Title, &r.Body,
			&r.Author, &r.ReviewDate, &r.ContentHash, &scrapedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.ScrapedAt = time.Unix(scrapedAt, 0)
		reviews = append(reviews, r)
	}

	return reviews, rows.Err()
}

func (c *Client) CountScrapedReviews() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM scraped_reviews`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count scraped reviews: %w", err)
	}
	return n, nil
}

// ReplaceLabeledReviews swaps in a freshly bootstrapped training snapshot.
func (c *Client) ReplaceLabeledReviews(reviews []models.LabeledReview) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM labeled_reviews`); err != nil {
		return fmt.Errorf("failed to clear labeled reviews: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO labeled_reviews (body, sentiment, authenticity, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, r := range reviews {
		if _, err := stmt.Exec(r.Body, r.Sentiment, r.Authenticity, now); err != nil {
			return fmt.Errorf("failed to insert labeled review: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit labeled reviews: %w", err)
	}

	logger.Info("Labeled corpus replaced", zap.Int("rows", len(reviews)))
	return nil
}

func (c *Client) ListLabeledReviews() ([]models.LabeledReview, error) {
	rows, err := c.db.Query(`SELECT body, sentiment, authenticity FROM labeled_reviews ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list labeled reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.LabeledReview
	for rows.Next() {
		var r models.LabeledReview
		if err := rows.Scan(&r.Body, &r.Sentiment, &r.Authenticity); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		reviews = append(reviews, r)
	}

	return reviews, rows.Err()
}
