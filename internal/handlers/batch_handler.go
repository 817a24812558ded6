package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
	"alfredoptarigan/talent-matcher/internal/services"
)

type BatchHandler struct {
	queueRepo repositories.ProcessingQueueRepository
	processor services.BatchProcessor
}

func NewBatchHandler(
	queueRepo repositories.ProcessingQueueRepository,
	processor services.BatchProcessor,
) *BatchHandler {
	return &BatchHandler{
		queueRepo: queueRepo,
		processor: processor,
	}
}

// HandleStartBatch handles POST /batch
func (h *BatchHandler) HandleStartBatch(c *fiber.Ctx) error {
	var req models.BatchStartRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "items must not be empty",
		})
	}

	if req.Threshold < 0 || req.Threshold > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "threshold must be between 0 and 100",
		})
	}

	items := make([]models.QueueItem, 0, len(req.Items))
	for i, item := range req.Items {
		jobID, err := uuid.Parse(item.JobID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid job_id format in items",
			})
		}

		candidateIDs := make([]uuid.UUID, 0, len(item.CandidateIDs))
		for _, raw := range item.CandidateIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid candidate id format in items",
				})
			}
			candidateIDs = append(candidateIDs, id)
		}

		items = append(items, models.QueueItem{
			ID:           uuid.New(),
			Position:     i,
			JobID:        jobID,
			CandidateIDs: candidateIDs,
			Status:       models.ItemPending,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		})
	}

	queue := &models.ProcessingQueue{
		ID:         uuid.New(),
		Status:     models.QueueQueued,
		TotalItems: len(items),
		Threshold:  req.Threshold,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := h.queueRepo.Create(queue, items); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create batch queue",
		})
	}

	h.processor.EnqueueQueue(queue.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.BatchStartResponse{
		QueueID:    queue.ID.String(),
		TotalItems: queue.TotalItems,
	})
}

// HandleBatchProgress handles GET /batch/:id
func (h *BatchHandler) HandleBatchProgress(c *fiber.Ctx) error {
	queueID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid queue ID format",
		})
	}

	queue, err := h.queueRepo.FindByID(queueID)
	if err != nil {
		if errors.Is(err, models.ErrQueueNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Queue not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load queue",
		})
	}

	return c.JSON(models.BatchProgressResponse{
		Status:         string(queue.Status),
		TotalItems:     queue.TotalItems,
		Processed:      queue.ProcessedCount,
		Succeeded:      queue.SucceededCount,
		ReviewRequired: queue.ReviewRequiredCount,
		Failed:         queue.FailedCount,
		CurrentItem:    queue.CurrentItem,
	})
}

// HandleCancelBatch handles POST /batch/:id/cancel
func (h *BatchHandler) HandleCancelBatch(c *fiber.Ctx) error {
	queueID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid queue ID format",
		})
	}

	if err := h.processor.Cancel(queueID); err != nil {
		if errors.Is(err, models.ErrQueueNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Queue not found",
			})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Cancellation requested",
	})
}
