package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
)

// ProfileEmbedder owns the embedding lifecycle: build a text summary of a
// profile, embed it, store the vector, and only then clear the staleness
// flag. A profile whose attributes change is stale until this runs again.
type ProfileEmbedder interface {
	RefreshCandidate(ctx context.Context, id uuid.UUID) error
	RefreshJob(ctx context.Context, id uuid.UUID) error
}

type profileEmbedder struct {
	candRepo repositories.CandidateRepository
	jobRepo  repositories.JobRepository
	gemini   GeminiService
	vectors  VectorStore
}

func NewProfileEmbedder(
	candRepo repositories.CandidateRepository,
	jobRepo repositories.JobRepository,
	gemini GeminiService,
	vectors VectorStore,
) ProfileEmbedder {
	return &profileEmbedder{
		candRepo: candRepo,
		jobRepo:  jobRepo,
		gemini:   gemini,
		vectors:  vectors,
	}
}

// RefreshCandidate implements ProfileEmbedder.
func (e *profileEmbedder) RefreshCandidate(ctx context.Context, id uuid.UUID) error {
	candidate, err := e.candRepo.FindByID(id)
	if err != nil {
		return err
	}

	embedding, err := e.gemini.GenerateEmbedding(ctx, candidateSummary(candidate))
	if err != nil {
		return fmt.Errorf("failed to embed candidate %s: %w", id, err)
	}

	if err := e.vectors.UpsertEmbedding(ctx, EntityTypeCandidate, id.String(), embedding); err != nil {
		return err
	}

	if err := e.candRepo.MarkEmbeddingFresh(id, time.Now()); err != nil {
		return err
	}

	log.Printf("🧭 Candidate %s embedding refreshed\n", id)
	return nil
}

// RefreshJob implements ProfileEmbedder.
func (e *profileEmbedder) RefreshJob(ctx context.Context, id uuid.UUID) error {
	job, err := e.jobRepo.FindByID(id)
	if err != nil {
		return err
	}

	embedding, err := e.gemini.GenerateEmbedding(ctx, jobSummary(job))
	if err != nil {
		return fmt.Errorf("failed to embed job %s: %w", id, err)
	}

	if err := e.vectors.UpsertEmbedding(ctx, EntityTypeJob, id.String(), embedding); err != nil {
		return err
	}

	if err := e.jobRepo.MarkEmbeddingFresh(id, time.Now()); err != nil {
		return err
	}

	log.Printf("🧭 Job %s embedding refreshed\n", id)
	return nil
}

// candidateSummary flattens the matchable attributes into the text the
// embedding represents.
func candidateSummary(c *models.CandidateProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Candidate: %s\n", c.FullName)
	fmt.Fprintf(&b, "Skills: %s\n", strings.Join(c.Skills, ", "))
	fmt.Fprintf(&b, "Experience: %.1f years\n", c.ExperienceYears)
	if c.EducationLevel != "" {
		fmt.Fprintf(&b, "Education: %s\n", c.EducationLevel)
	}
	if c.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", c.Location)
	}
	if c.RemoteOK {
		b.WriteString("Open to remote work\n")
	}
	return b.String()
}

func jobSummary(j *models.JobProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job: %s\n", j.Title)
	fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(j.RequiredSkills, ", "))
	if j.MinExperienceYears > 0 {
		fmt.Fprintf(&b, "Minimum experience: %.1f years\n", j.MinExperienceYears)
	}
	if j.EducationRequirement != "" {
		fmt.Fprintf(&b, "Education requirement: %s\n", j.EducationRequirement)
	}
	if j.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", j.Location)
	}
	if j.RemoteOK {
		b.WriteString("Remote friendly\n")
	}
	return b.String()
}
