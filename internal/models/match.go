package models

import (
	"time"

	"github.com/google/uuid"
)

type TriageTier string

const (
	TierHot  TriageTier = "hot"
	TierWarm TriageTier = "warm"
	TierCold TriageTier = "cold"
)

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewReviewed ReviewStatus = "reviewed"
)

// TriageTierFor buckets an overall score for prioritized review.
func TriageTierFor(overallScore float64) TriageTier {
	switch {
	case overallScore >= 80:
		return TierHot
	case overallScore >= 50:
		return TierWarm
	default:
		return TierCold
	}
}

// CriterionScore is one named part of a criteria breakdown. Score is on a
// 0-100 scale before weighting. A criterion with no underlying data keeps
// Score 0 and Available false; it is never omitted from the breakdown.
type CriterionScore struct {
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Available bool    `json:"available"`
}

// ScoreBreakdown is the full explanation of an overall score. The displayed
// total must be reconstructable from it: overall = clamp(BaseScore *
// FeedbackMultiplier, 0, 100), and the criteria total is the weighted sum of
// exactly the four named parts.
type ScoreBreakdown struct {
	BaseScore     float64        `json:"base_score"`
	SemanticScore *float64       `json:"semantic_score,omitempty"`
	CriteriaScore float64        `json:"criteria_score"`
	Skills        CriterionScore `json:"skills"`
	Experience    CriterionScore `json:"experience"`
	Education     CriterionScore `json:"education"`
	Location      CriterionScore `json:"location"`
	MatchedSkills []string       `json:"matched_skills"`
	MissingSkills []string       `json:"missing_skills"`
}

type MatchResult struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_match_results_pair" json:"candidate_id"`
	JobID              uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_match_results_pair" json:"job_id"`
	SemanticScore      *float64       `gorm:"type:decimal(5,2)" json:"semantic_score,omitempty"`
	CriteriaScore      *float64       `gorm:"type:decimal(5,2)" json:"criteria_score,omitempty"`
	FeedbackMultiplier float64        `gorm:"type:decimal(4,2);default:1.0" json:"feedback_multiplier"`
	OverallScore       float64        `gorm:"type:decimal(5,2);not null" json:"overall_score"`
	TriageTier         TriageTier     `gorm:"type:text;not null" json:"triage_tier"`
	ScoreBreakdown     ScoreBreakdown `gorm:"type:jsonb;serializer:json" json:"score_breakdown"`
	ReviewStatus       ReviewStatus   `gorm:"type:text;not null;default:'pending'" json:"review_status"`
	UsedSemanticPath   bool           `gorm:"default:false" json:"used_semantic_path"`
	CreatedAt          time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (MatchResult) TableName() string {
	return "match_results"
}

// BaseScore returns the pre-multiplier score the overall score was derived
// from: the semantic score when the semantic path produced one, the criteria
// score otherwise.
func (m *MatchResult) BaseScore() float64 {
	return m.ScoreBreakdown.BaseScore
}

type FeedbackType string

const (
	FeedbackPositive FeedbackType = "positive"
	FeedbackNegative FeedbackType = "negative"
)

// Valid reports whether the feedback type is one of the accepted values.
func (t FeedbackType) Valid() bool {
	return t == FeedbackPositive || t == FeedbackNegative
}

// MatchFeedback is append-only. A superseded event is marked Retracted and
// kept; the multiplier is always recomputed from the standing history, never
// nudged in place.
type MatchFeedback struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MatchResultID uuid.UUID    `gorm:"type:uuid;not null;index" json:"match_result_id"`
	FeedbackType  FeedbackType `gorm:"type:text;not null" json:"feedback_type"`
	FeedbackBy    string       `gorm:"type:text;not null" json:"feedback_by"`
	FeedbackAt    time.Time    `gorm:"type:timestamp;default:now()" json:"feedback_at"`
	Notes         *string      `gorm:"type:text" json:"notes,omitempty"`
	Retracted     bool         `gorm:"default:false" json:"retracted"`
}

func (MatchFeedback) TableName() string {
	return "match_feedbacks"
}
