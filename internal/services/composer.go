package services

import (
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
)

// ScoreComposer merges the semantic and criteria signals into a single
// MatchResult draft. When both signals are present the semantic score is the
// numeric base (it captures synonymy that exact criteria matching misses)
// and the criteria result contributes only to the explanatory breakdown. On
// the fallback path the criteria score is the base.
type ScoreComposer interface {
	Compose(candidateID, jobID uuid.UUID, semantic *SemanticMatch, criteria *CriteriaResult, multiplier float64) *models.MatchResult
}

type scoreComposer struct{}

func NewScoreComposer() ScoreComposer {
	return &scoreComposer{}
}

// Compose implements ScoreComposer. The returned draft always has the same
// field set regardless of path; the fallback path just leaves SemanticScore
// nil and UsedSemanticPath false.
func (c *scoreComposer) Compose(candidateID, jobID uuid.UUID, semantic *SemanticMatch, criteria *CriteriaResult, multiplier float64) *models.MatchResult {
	now := time.Now()

	result := &models.MatchResult{
		ID:                 uuid.New(),
		CandidateID:        candidateID,
		JobID:              jobID,
		FeedbackMultiplier: multiplier,
		ReviewStatus:       models.ReviewPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	breakdown := models.ScoreBreakdown{}

	if criteria != nil {
		criteriaScore := criteria.Score
		result.CriteriaScore = &criteriaScore
		breakdown.CriteriaScore = criteria.Score
		breakdown.Skills = criteria.Skills
		breakdown.Experience = criteria.Experience
		breakdown.Education = criteria.Education
		breakdown.Location = criteria.Location
		breakdown.MatchedSkills = criteria.MatchedSkills
		breakdown.MissingSkills = criteria.MissingSkills
	}

	if semantic != nil {
		semanticScore := semantic.Score
		result.SemanticScore = &semanticScore
		result.UsedSemanticPath = true
		breakdown.SemanticScore = &semanticScore
		breakdown.BaseScore = semantic.Score
	} else if criteria != nil {
		breakdown.BaseScore = criteria.Score
	}

	result.ScoreBreakdown = breakdown
	result.OverallScore = ClampScore(breakdown.BaseScore * multiplier)
	result.TriageTier = models.TriageTierFor(result.OverallScore)

	return result
}

// ClampScore bounds a score to the displayable 0-100 range.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
