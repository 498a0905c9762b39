package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/cache/redis"
	"github.com/reviewlens/backend/internal/classifier"
	"github.com/reviewlens/backend/internal/history"
	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
	"github.com/reviewlens/backend/pkg/utils"
)

var (
	// ErrEmptyInput means the submitted review was blank or whitespace
	// only. Nothing is classified or persisted; the caller should
	// re-prompt.
	ErrEmptyInput = errors.New("review text is empty")

	// ErrPersistenceFailure means the record could not be appended to the
	// history log. The classification result is still returned alongside
	// this error; the record is simply not durably logged.
	ErrPersistenceFailure = errors.New("failed to persist analysis record")
)

// Service orchestrates the two classification adapters over one review and
// appends the result to the history store. The adapters are read-only, so
// a single Service is safe for concurrent requests.
type Service struct {
	sentiment    *classifier.Adapter
	authenticity *classifier.Adapter
	store        *history.Store
	cache        *redis.Client
	cacheTTL     time.Duration
}

// NewService wires the two adapters and the history store together. cache
// may be nil, in which case every classification is computed directly.
func NewService(sentiment, authenticity *classifier.Adapter, store *history.Store) *Service {
	return &Service{
		sentiment:    sentiment,
		authenticity: authenticity,
		store:        store,
	}
}

// WithCache enables the optional classification cache.
func (s *Service) WithCache(cache *redis.Client, ttl time.Duration) *Service {
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// Analyze classifies one review on both axes, assembles a timestamped
// record, and appends it to the history log. On append failure the
// assembled record is returned together with an error wrapping
// ErrPersistenceFailure: logging is best-effort, not transactional.
func (s *Service) Analyze(ctx context.Context, text string) (*models.AnalysisRecord, error) {
	start := time.Now()

	text = strings.TrimSpace(text)
	if text == "" {
		metrics.AnalysesTotal.WithLabelValues("empty_input").Inc()
		return nil, ErrEmptyInput
	}

	sentiment, sentimentProb, authenticity, authenticityProb := s.classify(ctx, text)

	rec := &models.AnalysisRecord{
		Timestamp:        time.Now().Truncate(time.Minute),
		Review:           text,
		Sentiment:        sentiment,
		SentimentProb:    sentimentProb,
		Authenticity:     authenticity,
		AuthenticityProb: authenticityProb,
	}

	metrics.ClassificationConfidence.WithLabelValues("sentiment").Observe(sentimentProb)
	metrics.ClassificationConfidence.WithLabelValues("authenticity").Observe(authenticityProb)
	metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())

	if err := s.store.Append(rec); err != nil {
		metrics.AnalysesTotal.WithLabelValues("persist_failed").Inc()
		metrics.HistoryAppendsFailed.Inc()
		logger.Error("Failed to append analysis record",
			zap.String("path", s.store.Path()), zap.Error(err))
		return rec, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	logger.Info("Review analyzed",
		zap.String("sentiment", string(sentiment)),
		zap.Float64("sentiment_prob", sentimentProb),
		zap.String("authenticity", string(authenticity)),
		zap.Float64("authenticity_prob", authenticityProb),
	)

	return rec, nil
}

// classify runs both adapters, consulting the cache first when enabled.
// The two adapter calls are independent; neither sees the other's result.
func (s *Service) classify(ctx context.Context, text string) (models.Label, float64, models.Label, float64) {
	var textHash string
	if s.cache != nil {
		textHash = utils.HashString(text)
		cached, found, err := s.cache.GetClassification(ctx, textHash)
		if err != nil {
			logger.Warn("Classification cache lookup failed", zap.Error(err))
		} else if found {
			metrics.CacheHits.Inc()
			return models.Label(cached.Sentiment), cached.SentimentProb,
				models.Label(cached.Authenticity), cached.AuthenticityProb
		}
		metrics.CacheMisses.Inc()
	}

	sentiment, sentimentProb := s.sentiment.Classify(text)
	authenticity, authenticityProb := s.authenticity.Classify(text)

	if s.cache != nil {
		err := s.cache.SetClassification(ctx, textHash, &redis.CachedClassification{
			Sentiment:        string(sentiment),
			SentimentProb:    sentimentProb,
			Authenticity:     string(authenticity),
			AuthenticityProb: authenticityProb,
		}, s.cacheTTL)
		if err != nil {
			logger.Warn("Failed to cache classification", zap.Error(err))
		}
	}

	return sentiment, sentimentProb, authenticity, authenticityProb
}
