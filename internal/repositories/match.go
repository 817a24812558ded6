package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/talent-matcher/internal/models"
)

type MatchResultRepository interface {
	Upsert(result *models.MatchResult) error
	FindByID(id uuid.UUID) (*models.MatchResult, error)
	FindByPair(candidateID, jobID uuid.UUID) (*models.MatchResult, error)
	FindByJob(jobID uuid.UUID) ([]models.MatchResult, error)
	UpdateFeedback(id uuid.UUID, multiplier, overallScore float64, tier models.TriageTier) error
}

type matchResultRepository struct {
	db *gorm.DB
}

func NewMatchResultRepository(db *gorm.DB) MatchResultRepository {
	return &matchResultRepository{db: db}
}

// Upsert implements MatchResultRepository. The write is a single
// INSERT ... ON CONFLICT (candidate_id, job_id) DO UPDATE, so concurrent
// runs for the same pair serialize at the database and can never create a
// second row or interleave a partial update.
func (r *matchResultRepository) Upsert(result *models.MatchResult) error {
	result.UpdatedAt = time.Now()

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "candidate_id"}, {Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"semantic_score",
			"criteria_score",
			"feedback_multiplier",
			"overall_score",
			"triage_tier",
			"score_breakdown",
			"used_semantic_path",
			"updated_at",
		}),
	}).Create(result).Error
	if err != nil {
		return fmt.Errorf("failed to upsert match result: %w", err)
	}

	return nil
}

// FindByID implements MatchResultRepository.
func (r *matchResultRepository) FindByID(id uuid.UUID) (*models.MatchResult, error) {
	var result models.MatchResult
	if err := r.db.Where("id = ?", id).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrMatchResultNotFound
		}
		return nil, fmt.Errorf("failed to find match result: %w", err)
	}

	return &result, nil
}

// FindByPair implements MatchResultRepository.
func (r *matchResultRepository) FindByPair(candidateID, jobID uuid.UUID) (*models.MatchResult, error) {
	var result models.MatchResult
	err := r.db.
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrMatchResultNotFound
		}
		return nil, fmt.Errorf("failed to find match result: %w", err)
	}

	return &result, nil
}

// FindByJob implements MatchResultRepository.
func (r *matchResultRepository) FindByJob(jobID uuid.UUID) ([]models.MatchResult, error) {
	var results []models.MatchResult
	err := r.db.
		Where("job_id = ?", jobID).
		Order("overall_score DESC, candidate_id ASC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}

	return results, nil
}

// UpdateFeedback implements MatchResultRepository. Called after a multiplier
// recompute; marks the result reviewed.
func (r *matchResultRepository) UpdateFeedback(id uuid.UUID, multiplier, overallScore float64, tier models.TriageTier) error {
	result := r.db.Model(&models.MatchResult{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"feedback_multiplier": multiplier,
			"overall_score":       overallScore,
			"triage_tier":         tier,
			"review_status":       models.ReviewReviewed,
			"updated_at":          time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update match feedback: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrMatchResultNotFound
	}

	return nil
}
