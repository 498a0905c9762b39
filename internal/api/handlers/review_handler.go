package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/reviewlens/backend/internal/analysis"
	"github.com/reviewlens/backend/internal/history"
	"github.com/reviewlens/backend/internal/metrics"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/internal/wordcloud"
	"github.com/reviewlens/backend/pkg/logger"
)

type ReviewHandler struct {
	service *analysis.Service
	store   *history.Store
	clouds  *wordcloud.Engine
	hub     *Hub
}

func NewReviewHandler(service *analysis.Service, store *history.Store, clouds *wordcloud.Engine, hub *Hub) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		store:   store,
		clouds:  clouds,
		hub:     hub,
	}
}

// AnalyzeReview classifies one submitted review on both axes. A
// persistence failure still returns the classification, flagged with
// persisted=false.
func (h *ReviewHandler) AnalyzeReview(c *fiber.Ctx) error {
	var req struct {
		Review string `json:"review"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	rec, err := h.service.Analyze(c.Context(), req.Review)
	if err != nil {
		if errors.Is(err, analysis.ErrEmptyInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Please enter a review before analyzing",
			})
		}
		if errors.Is(err, analysis.ErrPersistenceFailure) {
			h.hub.Broadcast(rec)
			return c.JSON(fiber.Map{
				"result":    rec,
				"persisted": false,
			})
		}
		logger.Error("Failed to analyze review", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze review",
		})
	}

	h.hub.Broadcast(rec)

	return c.JSON(fiber.Map{
		"result":    rec,
		"persisted": true,
	})
}

// GetHistory returns every recorded analysis, newest first.
func (h *ReviewHandler) GetHistory(c *fiber.Ctx) error {
	records, err := h.store.ReadAllReversed()
	if err != nil {
		logger.Error("Failed to read history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read history",
		})
	}

	if records == nil {
		records = []models.AnalysisRecord{}
	}

	return c.JSON(fiber.Map{
		"reviews": records,
		"count":   len(records),
	})
}

// GetWordClouds rebuilds the four word clouds from the full history log.
func (h *ReviewHandler) GetWordClouds(c *fiber.Ctx) error {
	start := time.Now()

	clouds, err := h.clouds.Build()
	if err != nil {
		logger.Error("Failed to build word clouds", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build word clouds",
		})
	}

	metrics.WordCloudBuildDuration.Observe(time.Since(start).Seconds())

	return c.JSON(clouds)
}
