package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talent-matcher/internal/models"
)

type JobRepository interface {
	FindByID(id uuid.UUID) (*models.JobProfile, error)
	ListEmbeddingStale(limit int) ([]models.JobProfile, error)
	MarkEmbeddingFresh(id uuid.UUID, generatedAt time.Time) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// FindByID implements JobRepository.
func (r *jobRepository) FindByID(id uuid.UUID) (*models.JobProfile, error) {
	var job models.JobProfile
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to find job: %w", err)
	}

	return &job, nil
}

// ListEmbeddingStale implements JobRepository.
func (r *jobRepository) ListEmbeddingStale(limit int) ([]models.JobProfile, error) {
	var jobs []models.JobProfile
	err := r.db.
		Where("embedding_stale = ?", true).
		Order("updated_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale jobs: %w", err)
	}

	return jobs, nil
}

// MarkEmbeddingFresh implements JobRepository.
func (r *jobRepository) MarkEmbeddingFresh(id uuid.UUID, generatedAt time.Time) error {
	result := r.db.Model(&models.JobProfile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"embedding_stale":        false,
			"embedding_generated_at": generatedAt,
			"updated_at":             time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark job embedding fresh: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrJobNotFound
	}

	return nil
}
