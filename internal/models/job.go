package models

import (
	"time"

	"github.com/google/uuid"
)

type JobProfile struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title                string     `gorm:"type:text" json:"title"`
	RequiredSkills       []string   `gorm:"type:jsonb;serializer:json" json:"required_skills"`
	MinExperienceYears   float64    `gorm:"type:decimal(5,2);default:0" json:"min_experience_years"`
	EducationRequirement string     `gorm:"type:text" json:"education_requirement"`
	Location             string     `gorm:"type:text" json:"location"`
	RemoteOK             bool       `gorm:"default:false" json:"remote_ok"`
	EmbeddingGeneratedAt *time.Time `gorm:"type:timestamp" json:"embedding_generated_at,omitempty"`
	EmbeddingStale       bool       `gorm:"default:true" json:"embedding_stale"`
	CreatedAt            time.Time  `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (j *JobProfile) TableName() string {
	return "job_profiles"
}

// HasEmbedding reports whether the job carries a usable, non-stale embedding
// in the vector store.
func (j *JobProfile) HasEmbedding() bool {
	return j.EmbeddingGeneratedAt != nil && !j.EmbeddingStale
}
