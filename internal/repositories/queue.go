package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talent-matcher/internal/models"
)

type ProcessingQueueRepository interface {
	Create(queue *models.ProcessingQueue, items []models.QueueItem) error
	FindByID(id uuid.UUID) (*models.ProcessingQueue, error)
	FindItems(queueID uuid.UUID) ([]models.QueueItem, error)
	FindQueued(limit int) ([]models.ProcessingQueue, error)
	UpdateStatus(id uuid.UUID, status models.QueueStatus) error
	// TryMarkProcessing atomically claims a queued queue for processing.
	// Returns false when another worker claimed it first.
	TryMarkProcessing(id uuid.UUID) (bool, error)
	SetCurrentItem(id uuid.UUID, currentItem string) error
	RecordItemOutcome(queueID, itemID uuid.UUID, status models.QueueItemStatus, errorMsg *string) error
	CountPendingItems(queueID uuid.UUID) (int64, error)
}

type processingQueueRepository struct {
	db *gorm.DB
}

func NewProcessingQueueRepository(db *gorm.DB) ProcessingQueueRepository {
	return &processingQueueRepository{db: db}
}

// Create implements ProcessingQueueRepository. Queue and items land in one
// transaction so a crash cannot leave a queue without its items.
func (r *processingQueueRepository) Create(queue *models.ProcessingQueue, items []models.QueueItem) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(queue).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].QueueID = queue.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create processing queue: %w", err)
	}

	return nil
}

// FindByID implements ProcessingQueueRepository.
func (r *processingQueueRepository) FindByID(id uuid.UUID) (*models.ProcessingQueue, error) {
	var queue models.ProcessingQueue
	if err := r.db.Where("id = ?", id).First(&queue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrQueueNotFound
		}
		return nil, fmt.Errorf("failed to find queue: %w", err)
	}

	return &queue, nil
}

// FindItems implements ProcessingQueueRepository.
func (r *processingQueueRepository) FindItems(queueID uuid.UUID) ([]models.QueueItem, error) {
	var items []models.QueueItem
	err := r.db.
		Where("queue_id = ?", queueID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find queue items: %w", err)
	}

	return items, nil
}

// FindQueued implements ProcessingQueueRepository. Used by the poller to
// pick up queues that were accepted before a restart.
func (r *processingQueueRepository) FindQueued(limit int) ([]models.ProcessingQueue, error) {
	var queues []models.ProcessingQueue
	err := r.db.
		Where("status = ?", models.QueueQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&queues).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find queued batches: %w", err)
	}

	return queues, nil
}

// UpdateStatus implements ProcessingQueueRepository.
func (r *processingQueueRepository) UpdateStatus(id uuid.UUID, status models.QueueStatus) error {
	result := r.db.Model(&models.ProcessingQueue{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update queue status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrQueueNotFound
	}

	return nil
}

// TryMarkProcessing implements ProcessingQueueRepository. The status guard
// in the WHERE clause makes the claim a single conditional write.
func (r *processingQueueRepository) TryMarkProcessing(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.ProcessingQueue{}).
		Where("id = ? AND status = ?", id, models.QueueQueued).
		Updates(map[string]interface{}{
			"status":     models.QueueProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim queue: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// SetCurrentItem implements ProcessingQueueRepository.
func (r *processingQueueRepository) SetCurrentItem(id uuid.UUID, currentItem string) error {
	result := r.db.Model(&models.ProcessingQueue{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_item": currentItem,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to set current item: %w", result.Error)
	}

	return nil
}

// RecordItemOutcome implements ProcessingQueueRepository. The item update
// and the counter bumps run in one transaction, and every counter bump is a
// single SQL increment, so progress counters never suffer read-then-write
// races and stay monotonic for pollers.
func (r *processingQueueRepository) RecordItemOutcome(queueID, itemID uuid.UUID, status models.QueueItemStatus, errorMsg *string) error {
	counterColumn := ""
	switch status {
	case models.ItemSucceeded:
		counterColumn = "succeeded_count"
	case models.ItemReviewRequired:
		counterColumn = "review_required_count"
	case models.ItemFailed:
		counterColumn = "failed_count"
	default:
		return fmt.Errorf("status %q is not a terminal item state", status)
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		itemUpdates := map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}
		if errorMsg != nil {
			itemUpdates["error_message"] = *errorMsg
		}

		result := tx.Model(&models.QueueItem{}).
			Where("id = ? AND queue_id = ?", itemID, queueID).
			Updates(itemUpdates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("queue item not found")
		}

		return tx.Model(&models.ProcessingQueue{}).
			Where("id = ?", queueID).
			Updates(map[string]interface{}{
				"processed_count": gorm.Expr("processed_count + 1"),
				counterColumn:     gorm.Expr(counterColumn + " + 1"),
				"updated_at":      time.Now(),
			}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record item outcome: %w", err)
	}

	return nil
}

// CountPendingItems implements ProcessingQueueRepository.
func (r *processingQueueRepository) CountPendingItems(queueID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.QueueItem{}).
		Where("queue_id = ? AND status = ?", queueID, models.ItemPending).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending items: %w", err)
	}

	return count, nil
}
