package models

import (
	"time"

	"github.com/google/uuid"
)

type QueueStatus string

const (
	QueueQueued     QueueStatus = "queued"
	QueueProcessing QueueStatus = "processing"
	QueueCompleted  QueueStatus = "completed"
	QueuePartial    QueueStatus = "partial"
	QueueFailed     QueueStatus = "failed"
)

type QueueItemStatus string

const (
	ItemPending        QueueItemStatus = "pending"
	ItemSucceeded      QueueItemStatus = "succeeded"
	ItemReviewRequired QueueItemStatus = "review_required"
	ItemFailed         QueueItemStatus = "failed"
)

// ProcessingQueue tracks one batch run of matching over many items. Counter
// invariants: ProcessedCount <= TotalItems, and SucceededCount +
// ReviewRequiredCount + FailedCount <= ProcessedCount at all times.
type ProcessingQueue struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Status              QueueStatus `gorm:"type:text;not null;default:'queued'" json:"status"`
	TotalItems          int         `gorm:"not null" json:"total_items"`
	ProcessedCount      int         `gorm:"not null;default:0" json:"processed_count"`
	SucceededCount      int         `gorm:"not null;default:0" json:"succeeded_count"`
	ReviewRequiredCount int         `gorm:"not null;default:0" json:"review_required_count"`
	FailedCount         int         `gorm:"not null;default:0" json:"failed_count"`
	CurrentItem         string      `gorm:"type:text" json:"current_item"`
	Threshold           float64     `gorm:"type:decimal(5,2);default:0" json:"threshold"`
	CreatedAt           time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ProcessingQueue) TableName() string {
	return "processing_queues"
}

type QueueItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	QueueID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"queue_id"`
	Position     int             `gorm:"not null" json:"position"`
	JobID        uuid.UUID       `gorm:"type:uuid;not null" json:"job_id"`
	CandidateIDs []uuid.UUID     `gorm:"type:jsonb;serializer:json" json:"candidate_ids,omitempty"`
	Status       QueueItemStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (QueueItem) TableName() string {
	return "queue_items"
}
