package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalyzeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reviewlens_analyze_duration_seconds",
			Help:    "Review analysis duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_analyses_total",
			Help: "Total number of reviews analyzed",
		},
		[]string{"status"},
	)

	ClassificationConfidence = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reviewlens_classification_confidence",
			Help:    "Winning-class confidence per axis, as a percentage",
			Buckets: []float64{50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 100},
		},
		[]string{"axis"},
	)

	HistoryAppendsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewlens_history_appends_failed_total",
			Help: "Analysis records that could not be durably appended",
		},
	)

	HistoryRowsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewlens_history_rows_skipped_total",
			Help: "Malformed history rows skipped during reads",
		},
	)

	WordCloudBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reviewlens_wordcloud_build_duration_seconds",
			Help:    "Word cloud aggregation duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewlens_classification_cache_hits_total",
			Help: "Classification results served from cache",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewlens_classification_cache_misses_total",
			Help: "Classification results computed on cache miss",
		},
	)

	WebsocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reviewlens_websocket_clients",
			Help: "Currently connected live-feed websocket clients",
		},
	)

	ReviewsScraped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_reviews_scraped_total",
			Help: "Reviews pulled by the offline scraper",
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(AnalyzeDuration)
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(ClassificationConfidence)
	prometheus.MustRegister(HistoryAppendsFailed)
	prometheus.MustRegister(HistoryRowsSkipped)
	prometheus.MustRegister(WordCloudBuildDuration)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(WebsocketClients)
	prometheus.MustRegister(ReviewsScraped)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
