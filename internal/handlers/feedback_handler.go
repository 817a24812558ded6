package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/services"
)

type FeedbackHandler struct {
	tracker services.FeedbackTracker
}

func NewFeedbackHandler(tracker services.FeedbackTracker) *FeedbackHandler {
	return &FeedbackHandler{tracker: tracker}
}

// HandleSubmitFeedback handles POST /feedback
func (h *FeedbackHandler) HandleSubmitFeedback(c *fiber.Ctx) error {
	var req models.FeedbackRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.MatchResultID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "match_result_id is required",
		})
	}

	if req.FeedbackBy == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "feedback_by is required",
		})
	}

	matchResultID, err := uuid.Parse(req.MatchResultID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid match_result_id format",
		})
	}

	outcome, err := h.tracker.SubmitFeedback(
		matchResultID,
		models.FeedbackType(req.FeedbackType),
		req.FeedbackBy,
		req.Notes,
	)
	if err != nil {
		if errors.Is(err, models.ErrInvalidFeedback) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "feedback_type must be 'positive' or 'negative'",
			})
		}
		if errors.Is(err, models.ErrMatchResultNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Match result not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit feedback",
		})
	}

	return c.JSON(models.FeedbackResponse{
		Multiplier:   outcome.Multiplier,
		OverallScore: outcome.OverallScore,
	})
}
