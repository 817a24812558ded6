package services

import (
	"strings"

	"alfredoptarigan/talent-matcher/internal/config"
	"alfredoptarigan/talent-matcher/internal/models"
)

// CriteriaScorer computes a rule-based 0-100 score from explicit candidate
// and job attributes. It is pure: no I/O, no clock, same inputs always give
// the same result.
type CriteriaScorer interface {
	Score(candidate *models.CandidateProfile, job *models.JobProfile) *CriteriaResult
}

// CriteriaResult carries the total plus the four named parts the total is a
// weighted sum of. A part with no underlying data stays at score 0 with
// Available false; it is never dropped from the result.
type CriteriaResult struct {
	Score         float64
	Skills        models.CriterionScore
	Experience    models.CriterionScore
	Education     models.CriterionScore
	Location      models.CriterionScore
	MatchedSkills []string
	MissingSkills []string
}

type criteriaScorer struct {
	weights config.MatchingConfig
}

func NewCriteriaScorer(weights config.MatchingConfig) CriteriaScorer {
	return &criteriaScorer{weights: weights}
}

// educationRanks orders education levels for the ordinal comparison.
var educationRanks = map[string]int{
	"high_school": 1,
	"associate":   2,
	"bachelor":    3,
	"bachelors":   3,
	"master":      4,
	"masters":     4,
	"doctorate":   5,
	"phd":         5,
}

// Score implements CriteriaScorer.
func (s *criteriaScorer) Score(candidate *models.CandidateProfile, job *models.JobProfile) *CriteriaResult {
	result := &CriteriaResult{
		Skills:     models.CriterionScore{Weight: s.weights.SkillsWeight},
		Experience: models.CriterionScore{Weight: s.weights.ExperienceWeight},
		Education:  models.CriterionScore{Weight: s.weights.EducationWeight},
		Location:   models.CriterionScore{Weight: s.weights.LocationWeight},
	}

	s.scoreSkills(candidate, job, result)
	s.scoreExperience(candidate, job, result)
	s.scoreEducation(candidate, job, result)
	s.scoreLocation(candidate, job, result)

	result.Score = result.Skills.Score*result.Skills.Weight/100 +
		result.Experience.Score*result.Experience.Weight/100 +
		result.Education.Score*result.Education.Weight/100 +
		result.Location.Score*result.Location.Weight/100

	return result
}

// scoreSkills credits the matched/required ratio. Matching is exact and
// case-insensitive; extra candidate skills are ignored.
func (s *criteriaScorer) scoreSkills(candidate *models.CandidateProfile, job *models.JobProfile, result *CriteriaResult) {
	if len(job.RequiredSkills) == 0 {
		return
	}

	candidateSkills := make(map[string]bool, len(candidate.Skills))
	for _, skill := range candidate.Skills {
		candidateSkills[normalizeSkill(skill)] = true
	}

	for _, required := range job.RequiredSkills {
		if candidateSkills[normalizeSkill(required)] {
			result.MatchedSkills = append(result.MatchedSkills, required)
		} else {
			result.MissingSkills = append(result.MissingSkills, required)
		}
	}

	if len(candidate.Skills) == 0 {
		// Nothing known about the candidate's skills: zero contribution,
		// flagged unavailable rather than treated as a confirmed miss.
		return
	}

	result.Skills.Available = true
	result.Skills.Score = float64(len(result.MatchedSkills)) / float64(len(job.RequiredSkills)) * 100
}

// scoreExperience gives linear credit up to the required years and full
// credit above.
func (s *criteriaScorer) scoreExperience(candidate *models.CandidateProfile, job *models.JobProfile, result *CriteriaResult) {
	if job.MinExperienceYears <= 0 {
		return
	}

	result.Experience.Available = true
	ratio := candidate.ExperienceYears / job.MinExperienceYears
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	result.Experience.Score = ratio * 100
}

// scoreEducation compares ordinal levels: meets-or-exceeds earns full
// credit, below earns none.
func (s *criteriaScorer) scoreEducation(candidate *models.CandidateProfile, job *models.JobProfile, result *CriteriaResult) {
	requiredRank, ok := educationRanks[normalizeEducation(job.EducationRequirement)]
	if !ok {
		return
	}
	candidateRank, ok := educationRanks[normalizeEducation(candidate.EducationLevel)]
	if !ok {
		return
	}

	result.Education.Available = true
	if candidateRank >= requiredRank {
		result.Education.Score = 100
	}
}

// scoreLocation is binary: remote compatibility or an exact
// case-insensitive location match earns full credit.
func (s *criteriaScorer) scoreLocation(candidate *models.CandidateProfile, job *models.JobProfile, result *CriteriaResult) {
	if job.RemoteOK || candidate.RemoteOK {
		result.Location.Available = true
		result.Location.Score = 100
		return
	}

	if job.Location == "" || candidate.Location == "" {
		return
	}

	result.Location.Available = true
	if strings.EqualFold(strings.TrimSpace(candidate.Location), strings.TrimSpace(job.Location)) {
		result.Location.Score = 100
	}
}

func normalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

func normalizeEducation(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	return strings.ReplaceAll(level, " ", "_")
}
