package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/services"
)

type EmbeddingHandler struct {
	embedder services.ProfileEmbedder
}

func NewEmbeddingHandler(embedder services.ProfileEmbedder) *EmbeddingHandler {
	return &EmbeddingHandler{embedder: embedder}
}

// HandleRefreshEmbedding handles POST /embeddings/refresh
func (h *EmbeddingHandler) HandleRefreshEmbedding(c *fiber.Ctx) error {
	var req models.EmbeddingRefreshRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	entityID, err := uuid.Parse(req.EntityID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entity_id format",
		})
	}

	switch req.EntityType {
	case services.EntityTypeCandidate:
		err = h.embedder.RefreshCandidate(c.Context(), entityID)
	case services.EntityTypeJob:
		err = h.embedder.RefreshJob(c.Context(), entityID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "entity_type must be 'candidate' or 'job'",
		})
	}

	if err != nil {
		if errors.Is(err, models.ErrCandidateNotFound) || errors.Is(err, models.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Profile not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to refresh embedding",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Embedding refreshed",
	})
}
