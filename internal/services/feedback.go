package services

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
)

const (
	positiveFeedbackStep = 0.05
	negativeFeedbackStep = 0.10
	multiplierFloor      = 0.5
	multiplierCeiling    = 1.5
)

// FeedbackOutcome is what a feedback submission returns to the caller.
type FeedbackOutcome struct {
	Multiplier   float64
	OverallScore float64
}

// FeedbackTracker records recruiter feedback and keeps the multiplier a
// deterministic function of the stored events. The multiplier is never
// nudged in place: every change replays the standing history, so retried or
// out-of-order submissions cannot make it drift.
type FeedbackTracker interface {
	SubmitFeedback(matchResultID uuid.UUID, feedbackType models.FeedbackType, by string, notes *string) (*FeedbackOutcome, error)
	RecomputeMultiplier(matchResultID uuid.UUID) (float64, error)
}

type feedbackTracker struct {
	feedbackRepo repositories.FeedbackRepository
	matchRepo    repositories.MatchResultRepository
	notifier     Notifier
}

func NewFeedbackTracker(
	feedbackRepo repositories.FeedbackRepository,
	matchRepo repositories.MatchResultRepository,
	notifier Notifier,
) FeedbackTracker {
	return &feedbackTracker{
		feedbackRepo: feedbackRepo,
		matchRepo:    matchRepo,
		notifier:     notifier,
	}
}

// SubmitFeedback implements FeedbackTracker.
//
// Resubmitting the same type as the reviewer's latest standing event is a
// no-op. Submitting the opposite type retracts that event and appends the
// new one; the multiplier is then recomputed from the edited history.
func (t *feedbackTracker) SubmitFeedback(matchResultID uuid.UUID, feedbackType models.FeedbackType, by string, notes *string) (*FeedbackOutcome, error) {
	if !feedbackType.Valid() {
		return nil, models.ErrInvalidFeedback
	}

	match, err := t.matchRepo.FindByID(matchResultID)
	if err != nil {
		return nil, err
	}

	history, err := t.feedbackRepo.FindStanding(matchResultID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback history: %w", err)
	}

	if prior := latestByReviewer(history, by); prior != nil {
		if prior.FeedbackType == feedbackType {
			// Idempotent resubmission: nothing changes.
			return &FeedbackOutcome{
				Multiplier:   match.FeedbackMultiplier,
				OverallScore: match.OverallScore,
			}, nil
		}
		if err := t.feedbackRepo.Retract(prior.ID); err != nil {
			return nil, fmt.Errorf("failed to retract superseded feedback: %w", err)
		}
	}

	event := &models.MatchFeedback{
		ID:            uuid.New(),
		MatchResultID: matchResultID,
		FeedbackType:  feedbackType,
		FeedbackBy:    by,
		FeedbackAt:    time.Now(),
		Notes:         notes,
	}
	if err := t.feedbackRepo.Create(event); err != nil {
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}

	multiplier, err := t.RecomputeMultiplier(matchResultID)
	if err != nil {
		return nil, err
	}

	overall := ClampScore(match.BaseScore() * multiplier)
	tier := models.TriageTierFor(overall)
	if err := t.matchRepo.UpdateFeedback(matchResultID, multiplier, overall, tier); err != nil {
		return nil, err
	}

	t.notifier.Emit(Event{
		Type:       EventFeedbackReceived,
		OccurredAt: time.Now(),
		Payload: map[string]interface{}{
			"match_result_id": matchResultID.String(),
			"feedback_type":   string(feedbackType),
			"feedback_by":     by,
			"multiplier":      multiplier,
			"overall_score":   overall,
		},
	})

	log.Printf("📝 Feedback recorded for match %s: %s by %s (multiplier %.2f)\n",
		matchResultID, feedbackType, by, multiplier)

	return &FeedbackOutcome{Multiplier: multiplier, OverallScore: overall}, nil
}

// RecomputeMultiplier implements FeedbackTracker. It is a derived read over
// the standing history and stores nothing itself.
func (t *feedbackTracker) RecomputeMultiplier(matchResultID uuid.UUID) (float64, error) {
	history, err := t.feedbackRepo.FindStanding(matchResultID)
	if err != nil {
		return 0, fmt.Errorf("failed to load feedback history: %w", err)
	}

	return multiplierFromHistory(history), nil
}

// multiplierFromHistory folds the chronological event list into the bounded
// multiplier: start at 1.0, +0.05 per positive, -0.10 per negative, clamped
// to [0.5, 1.5] after every step.
func multiplierFromHistory(history []models.MatchFeedback) float64 {
	multiplier := 1.0
	for _, event := range history {
		switch event.FeedbackType {
		case models.FeedbackPositive:
			multiplier += positiveFeedbackStep
		case models.FeedbackNegative:
			multiplier -= negativeFeedbackStep
		}
		if multiplier < multiplierFloor {
			multiplier = multiplierFloor
		}
		if multiplier > multiplierCeiling {
			multiplier = multiplierCeiling
		}
	}
	return multiplier
}

// latestByReviewer returns the reviewer's most recent standing event, or nil.
func latestByReviewer(history []models.MatchFeedback, by string) *models.MatchFeedback {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].FeedbackBy == by {
			return &history[i]
		}
	}
	return nil
}
