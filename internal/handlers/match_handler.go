package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/services"
)

type MatchHandler struct {
	matcher services.MatcherService
}

func NewMatchHandler(matcher services.MatcherService) *MatchHandler {
	return &MatchHandler{matcher: matcher}
}

// HandleRunMatch handles POST /match/run
func (h *MatchHandler) HandleRunMatch(c *fiber.Ctx) error {
	var req models.MatchRunRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.JobID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_id is required",
		})
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job_id format",
		})
	}

	candidateIDs := make([]uuid.UUID, 0, len(req.CandidateIDs))
	for _, raw := range req.CandidateIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid candidate id format: " + raw,
			})
		}
		candidateIDs = append(candidateIDs, id)
	}

	if req.MinScore != nil && (*req.MinScore < 0 || *req.MinScore > 100) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "min_score must be between 0 and 100",
		})
	}

	summary, err := h.matcher.RunMatch(c.Context(), jobID, candidateIDs, req.MinScore)
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job profile not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to run match",
		})
	}

	return c.JSON(models.MatchRunResponse{
		Results:          summary.Results,
		UsedSemanticPath: summary.UsedSemanticPath,
		Count:            summary.Count,
	})
}
