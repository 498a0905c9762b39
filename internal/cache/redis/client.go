package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/pkg/logger"
)

// Client caches classification results keyed by review-text hash.
// Classification is a pure function of text and the loaded models, so a
// cached result is always identical to a recomputed one. The cache is
// strictly optional: the analysis path works without it.
type Client struct {
	client *redis.Client
}

// CachedClassification is both axis outcomes for one review text.
type CachedClassification struct {
	Sentiment        string  `json:"sentiment"`
	SentimentProb    float64 `json:"sentiment_prob"`
	Authenticity     string  `json:"authenticity"`
	AuthenticityProb float64 `json:"authenticity_prob"`
}

func NewClient(addr, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", addr))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetClassification caches the classification for one text hash.
func (c *Client) SetClassification(ctx context.Context, textHash string, result *CachedClassification, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal classification: %w", err)
	}

	if err := c.client.Set(ctx, classificationKey(textHash), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set classification cache: %w", err)
	}

	logger.Debug("Classification cached", zap.String("text_hash", textHash))
	return nil
}

// GetClassification returns the cached classification for a text hash, or
// false if there is none.
func (c *Client) GetClassification(ctx context.Context, textHash string) (*CachedClassification, bool, error) {
	data, err := c.client.Get(ctx, classificationKey(textHash)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get classification cache: %w", err)
	}

	var result CachedClassification
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal classification: %w", err)
	}

	logger.Debug("Classification cache hit", zap.String("text_hash", textHash))
	return &result, true, nil
}

func classificationKey(textHash string) string {
	return fmt.Sprintf("classify:%s", textHash)
}
