package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/talent-matcher/internal/models"
)

type CandidateRepository interface {
	FindByID(id uuid.UUID) (*models.CandidateProfile, error)
	FindByIDs(ids []uuid.UUID) ([]models.CandidateProfile, error)
	ListActive(limit int) ([]models.CandidateProfile, error)
	ListEmbeddingStale(limit int) ([]models.CandidateProfile, error)
	MarkEmbeddingFresh(id uuid.UUID, generatedAt time.Time) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

// FindByID implements CandidateRepository.
func (r *candidateRepository) FindByID(id uuid.UUID) (*models.CandidateProfile, error) {
	var candidate models.CandidateProfile
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}

	return &candidate, nil
}

// FindByIDs implements CandidateRepository. Unknown ids are silently
// skipped; the caller treats a missing candidate as a per-candidate failure,
// not a run failure.
func (r *candidateRepository) FindByIDs(ids []uuid.UUID) ([]models.CandidateProfile, error) {
	var candidates []models.CandidateProfile
	if err := r.db.Where("id IN ?", ids).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}

	return candidates, nil
}

// ListActive implements CandidateRepository.
func (r *candidateRepository) ListActive(limit int) ([]models.CandidateProfile, error) {
	var candidates []models.CandidateProfile
	err := r.db.
		Where("active = ?", true).
		Order("created_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active candidates: %w", err)
	}

	return candidates, nil
}

// ListEmbeddingStale implements CandidateRepository.
func (r *candidateRepository) ListEmbeddingStale(limit int) ([]models.CandidateProfile, error) {
	var candidates []models.CandidateProfile
	err := r.db.
		Where("active = ? AND embedding_stale = ?", true, true).
		Order("updated_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale candidates: %w", err)
	}

	return candidates, nil
}

// MarkEmbeddingFresh implements CandidateRepository. The stale flag is
// cleared only here, after a fresh embedding has been stored.
func (r *candidateRepository) MarkEmbeddingFresh(id uuid.UUID, generatedAt time.Time) error {
	result := r.db.Model(&models.CandidateProfile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"embedding_stale":        false,
			"embedding_generated_at": generatedAt,
			"updated_at":             time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark candidate embedding fresh: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrCandidateNotFound
	}

	return nil
}
