package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
)

// SemanticMatch is one candidate hit from the vector store with its
// similarity rescaled to the 0-100 semantic score.
type SemanticMatch struct {
	CandidateID uuid.UUID
	Similarity  float64
	Score       float64
}

// SemanticRetriever finds the candidates most similar to a job's embedding.
// It fails closed: a job without an embedding, a stale embedding, a
// transport error, or a timeout all yield an empty result rather than an
// error. An empty result is the orchestrator's signal to route to the
// criteria-only fallback.
type SemanticRetriever interface {
	RetrieveSimilar(ctx context.Context, job *models.JobProfile, k int, scopeIDs []uuid.UUID) []SemanticMatch
}

type semanticRetriever struct {
	vectors VectorStore
	timeout time.Duration
}

func NewSemanticRetriever(vectors VectorStore, timeout time.Duration) SemanticRetriever {
	return &semanticRetriever{
		vectors: vectors,
		timeout: timeout,
	}
}

// RetrieveSimilar implements SemanticRetriever. Results are ordered by
// similarity descending, as returned by the vector store.
func (r *semanticRetriever) RetrieveSimilar(ctx context.Context, job *models.JobProfile, k int, scopeIDs []uuid.UUID) []SemanticMatch {
	if job == nil || !job.HasEmbedding() || k <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	jobEmbedding, err := r.vectors.GetEmbedding(ctx, EntityTypeJob, job.ID.String())
	if err != nil {
		log.Printf("⚠️  Semantic retrieval unavailable for job %s: %v\n", job.ID, err)
		return nil
	}
	if len(jobEmbedding) == 0 {
		return nil
	}

	scope := make([]string, len(scopeIDs))
	for i, id := range scopeIDs {
		scope[i] = id.String()
	}

	neighbors, err := r.vectors.NearestCandidates(ctx, jobEmbedding, k, scope, nil)
	if err != nil {
		log.Printf("⚠️  Nearest-neighbor query failed for job %s: %v\n", job.ID, err)
		return nil
	}

	matches := make([]SemanticMatch, 0, len(neighbors))
	for _, n := range neighbors {
		candidateID, err := uuid.Parse(n.EntityID)
		if err != nil {
			log.Printf("⚠️  Skipping neighbor with malformed id %q: %v\n", n.EntityID, err)
			continue
		}
		matches = append(matches, SemanticMatch{
			CandidateID: candidateID,
			Similarity:  float64(n.Similarity),
			Score:       SimilarityToScore(float64(n.Similarity)),
		})
	}

	return matches
}

// SimilarityToScore rescales cosine similarity in [-1, 1] to the 0-100
// semantic score. Negative similarity clamps to zero.
func SimilarityToScore(similarity float64) float64 {
	if similarity < 0 {
		return 0
	}
	score := similarity * 100
	if score > 100 {
		score = 100
	}
	return score
}
