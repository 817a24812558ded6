package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talent-matcher/internal/models"
)

type FeedbackRepository interface {
	Create(feedback *models.MatchFeedback) error
	// FindStanding returns the non-retracted feedback history for a match
	// result in chronological order. The multiplier is always a fold over
	// this list.
	FindStanding(matchResultID uuid.UUID) ([]models.MatchFeedback, error)
	Retract(id uuid.UUID) error
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Create implements FeedbackRepository.
func (r *feedbackRepository) Create(feedback *models.MatchFeedback) error {
	if err := r.db.Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	return nil
}

// FindStanding implements FeedbackRepository.
func (r *feedbackRepository) FindStanding(matchResultID uuid.UUID) ([]models.MatchFeedback, error) {
	var feedbacks []models.MatchFeedback
	err := r.db.
		Where("match_result_id = ? AND retracted = ?", matchResultID, false).
		Order("feedback_at ASC").
		Find(&feedbacks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find feedback history: %w", err)
	}

	return feedbacks, nil
}

// Retract implements FeedbackRepository. Events are never deleted; a
// superseded event is flagged so recomputation skips it but the audit trail
// survives.
func (r *feedbackRepository) Retract(id uuid.UUID) error {
	result := r.db.Model(&models.MatchFeedback{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"retracted": true,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to retract feedback: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("feedback event not found")
	}

	return nil
}
