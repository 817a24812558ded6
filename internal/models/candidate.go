package models

import (
	"time"

	"github.com/google/uuid"
)

type CandidateProfile struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName             string     `gorm:"type:text" json:"full_name"`
	Skills               []string   `gorm:"type:jsonb;serializer:json" json:"skills"`
	ExperienceYears      float64    `gorm:"type:decimal(5,2);default:0" json:"experience_years"`
	EducationLevel       string     `gorm:"type:text" json:"education_level"`
	Location             string     `gorm:"type:text" json:"location"`
	RemoteOK             bool       `gorm:"default:false" json:"remote_ok"`
	Active               bool       `gorm:"default:true" json:"active"`
	EmbeddingGeneratedAt *time.Time `gorm:"type:timestamp" json:"embedding_generated_at,omitempty"`
	EmbeddingStale       bool       `gorm:"default:true" json:"embedding_stale"`
	CreatedAt            time.Time  `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (c *CandidateProfile) TableName() string {
	return "candidate_profiles"
}

// HasEmbedding reports whether the candidate carries a usable, non-stale
// embedding in the vector store.
func (c *CandidateProfile) HasEmbedding() bool {
	return c.EmbeddingGeneratedAt != nil && !c.EmbeddingStale
}
