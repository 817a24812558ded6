package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
)

// MatchRunSummary is the outcome of one match run. UsedSemanticPath tells
// the caller whether results came from embedding retrieval or the
// lower-confidence criteria-only fallback.
type MatchRunSummary struct {
	Results          []models.MatchResult
	UsedSemanticPath bool
	Count            int
}

// MatcherService is the top-level entry point of the matching core. It
// coordinates retrieval, scoring, fallback selection, persistence, and
// ranking for a job's candidate pool.
type MatcherService interface {
	RunMatch(ctx context.Context, jobID uuid.UUID, candidateIDs []uuid.UUID, minScore *float64) (*MatchRunSummary, error)
}

type matcherService struct {
	jobRepo      repositories.JobRepository
	candRepo     repositories.CandidateRepository
	matchRepo    repositories.MatchResultRepository
	retriever    SemanticRetriever
	criteria     CriteriaScorer
	composer     ScoreComposer
	notifier     Notifier
	candidateCap int
}

func NewMatcherService(
	jobRepo repositories.JobRepository,
	candRepo repositories.CandidateRepository,
	matchRepo repositories.MatchResultRepository,
	retriever SemanticRetriever,
	criteria CriteriaScorer,
	composer ScoreComposer,
	notifier Notifier,
	candidateCap int,
) MatcherService {
	return &matcherService{
		jobRepo:      jobRepo,
		candRepo:     candRepo,
		matchRepo:    matchRepo,
		retriever:    retriever,
		criteria:     criteria,
		composer:     composer,
		notifier:     notifier,
		candidateCap: candidateCap,
	}
}

// RunMatch implements MatcherService.
//
// The semantic path is attempted when the job has a fresh embedding.
// Candidates the semantic path does not cover — including everyone when the
// retriever comes back empty or the vector store is unreachable — are
// scored through the criteria-only fallback, producing structurally
// identical results. A single candidate's failure is logged and excluded;
// it never aborts the run.
func (s *matcherService) RunMatch(ctx context.Context, jobID uuid.UUID, candidateIDs []uuid.UUID, minScore *float64) (*MatchRunSummary, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.loadScope(candidateIDs)
	if err != nil {
		return nil, err
	}

	scopeIDs := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		scopeIDs[i] = c.ID
	}

	semanticByID := make(map[uuid.UUID]SemanticMatch)
	for _, m := range s.retriever.RetrieveSimilar(ctx, job, len(candidates), scopeIDs) {
		semanticByID[m.CandidateID] = m
	}
	usedSemanticPath := len(semanticByID) > 0

	if !usedSemanticPath && job.HasEmbedding() {
		log.Printf("⚠️  Semantic path empty for job %s, falling back to criteria scoring\n", jobID)
	}

	results := make([]models.MatchResult, 0, len(candidates))
	for i := range candidates {
		candidate := &candidates[i]

		result, err := s.scoreCandidate(candidate, job, semanticByID)
		if err != nil {
			log.Printf("❌ Failed to score candidate %s for job %s: %v\n", candidate.ID, jobID, err)
			continue
		}

		if minScore != nil && result.OverallScore < *minScore {
			continue
		}

		results = append(results, *result)
	}

	// Deterministic ranking: overall score descending, ties broken by
	// candidate id. Insertion order is not stable across runs.
	sort.Slice(results, func(i, j int) bool {
		if results[i].OverallScore != results[j].OverallScore {
			return results[i].OverallScore > results[j].OverallScore
		}
		return strings.Compare(results[i].CandidateID.String(), results[j].CandidateID.String()) < 0
	})

	return &MatchRunSummary{
		Results:          results,
		UsedSemanticPath: usedSemanticPath,
		Count:            len(results),
	}, nil
}

// loadScope resolves the candidate pool: the explicit id list when given,
// otherwise all active candidates up to the configured cap.
func (s *matcherService) loadScope(candidateIDs []uuid.UUID) ([]models.CandidateProfile, error) {
	if len(candidateIDs) > 0 {
		return s.candRepo.FindByIDs(candidateIDs)
	}
	return s.candRepo.ListActive(s.candidateCap)
}

// scoreCandidate composes and upserts one pair. The upsert keys on
// (candidate_id, job_id), which is what keeps repeated and concurrent runs
// at exactly one row per pair.
func (s *matcherService) scoreCandidate(candidate *models.CandidateProfile, job *models.JobProfile, semanticByID map[uuid.UUID]SemanticMatch) (*models.MatchResult, error) {
	criteria := s.criteria.Score(candidate, job)

	var semantic *SemanticMatch
	if m, ok := semanticByID[candidate.ID]; ok {
		semantic = &m
	}

	multiplier := 1.0
	existing, err := s.matchRepo.FindByPair(candidate.ID, job.ID)
	switch {
	case err == nil:
		multiplier = existing.FeedbackMultiplier
	case errors.Is(err, models.ErrMatchResultNotFound):
		// first run for this pair
	default:
		return nil, err
	}

	result := s.composer.Compose(candidate.ID, job.ID, semantic, criteria, multiplier)
	if existing != nil {
		result.ID = existing.ID
		result.CreatedAt = existing.CreatedAt
		result.ReviewStatus = existing.ReviewStatus
	}

	if err := s.matchRepo.Upsert(result); err != nil {
		return nil, err
	}

	s.notifier.Emit(Event{
		Type:       EventMatchUpserted,
		OccurredAt: time.Now(),
		Payload: map[string]interface{}{
			"match_result_id":    result.ID.String(),
			"candidate_id":       result.CandidateID.String(),
			"job_id":             result.JobID.String(),
			"overall_score":      result.OverallScore,
			"triage_tier":        string(result.TriageTier),
			"used_semantic_path": result.UsedSemanticPath,
		},
	})

	return result, nil
}
