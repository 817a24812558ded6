package services

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talent-matcher/internal/models"
)

func seedMatch(t *testing.T, repo *memMatchRepo, baseScore float64) *models.MatchResult {
	t.Helper()

	match := &models.MatchResult{
		ID:                 uuid.New(),
		CandidateID:        uuid.New(),
		JobID:              uuid.New(),
		FeedbackMultiplier: 1.0,
		OverallScore:       baseScore,
		TriageTier:         models.TriageTierFor(baseScore),
		ScoreBreakdown:     models.ScoreBreakdown{BaseScore: baseScore},
		ReviewStatus:       models.ReviewPending,
	}
	repo.put(match)
	return match
}

func TestSubmitFeedbackInvalidType(t *testing.T) {
	tracker := NewFeedbackTracker(newMemFeedbackRepo(), newMemMatchRepo(), &stubNotifier{})

	_, err := tracker.SubmitFeedback(uuid.New(), models.FeedbackType("meh"), "alice", nil)

	assert.ErrorIs(t, err, models.ErrInvalidFeedback)
}

func TestSubmitFeedbackUnknownMatch(t *testing.T) {
	tracker := NewFeedbackTracker(newMemFeedbackRepo(), newMemMatchRepo(), &stubNotifier{})

	_, err := tracker.SubmitFeedback(uuid.New(), models.FeedbackPositive, "alice", nil)

	assert.ErrorIs(t, err, models.ErrMatchResultNotFound)
}

func TestSubmitFeedbackPositiveAdjustsScore(t *testing.T) {
	matchRepo := newMemMatchRepo()
	notifier := &stubNotifier{}
	tracker := NewFeedbackTracker(newMemFeedbackRepo(), matchRepo, notifier)
	match := seedMatch(t, matchRepo, 80)

	outcome, err := tracker.SubmitFeedback(match.ID, models.FeedbackPositive, "alice", nil)

	require.NoError(t, err)
	assert.InDelta(t, 1.05, outcome.Multiplier, 0.0001)
	assert.InDelta(t, 84, outcome.OverallScore, 0.0001)

	stored, err := matchRepo.FindByID(match.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.05, stored.FeedbackMultiplier, 0.0001)
	assert.InDelta(t, 84, stored.OverallScore, 0.0001)
	assert.Equal(t, models.TierHot, stored.TriageTier)
	assert.Equal(t, models.ReviewReviewed, stored.ReviewStatus)
	assert.Equal(t, 1, notifier.count(EventFeedbackReceived))
}

func TestSubmitFeedbackSameTypeIsIdempotent(t *testing.T) {
	matchRepo := newMemMatchRepo()
	feedbackRepo := newMemFeedbackRepo()
	tracker := NewFeedbackTracker(feedbackRepo, matchRepo, &stubNotifier{})
	match := seedMatch(t, matchRepo, 60)

	first, err := tracker.SubmitFeedback(match.ID, models.FeedbackPositive, "alice", nil)
	require.NoError(t, err)

	second, err := tracker.SubmitFeedback(match.ID, models.FeedbackPositive, "alice", nil)
	require.NoError(t, err)

	assert.Equal(t, first.Multiplier, second.Multiplier)
	assert.Equal(t, first.OverallScore, second.OverallScore)

	standing, err := feedbackRepo.FindStanding(match.ID)
	require.NoError(t, err)
	assert.Len(t, standing, 1)
}

func TestSubmitFeedbackSwitchRetractsPrior(t *testing.T) {
	matchRepo := newMemMatchRepo()
	feedbackRepo := newMemFeedbackRepo()
	tracker := NewFeedbackTracker(feedbackRepo, matchRepo, &stubNotifier{})
	match := seedMatch(t, matchRepo, 60)

	_, err := tracker.SubmitFeedback(match.ID, models.FeedbackPositive, "alice", nil)
	require.NoError(t, err)

	outcome, err := tracker.SubmitFeedback(match.ID, models.FeedbackNegative, "alice", nil)
	require.NoError(t, err)

	// The positive event is retracted, so only the negative one counts.
	assert.InDelta(t, 0.90, outcome.Multiplier, 0.0001)
	assert.InDelta(t, 54, outcome.OverallScore, 0.0001)

	standing, err := feedbackRepo.FindStanding(match.ID)
	require.NoError(t, err)
	require.Len(t, standing, 1)
	assert.Equal(t, models.FeedbackNegative, standing[0].FeedbackType)
}

func TestSubmitFeedbackReviewersAccumulate(t *testing.T) {
	matchRepo := newMemMatchRepo()
	tracker := NewFeedbackTracker(newMemFeedbackRepo(), matchRepo, &stubNotifier{})
	match := seedMatch(t, matchRepo, 60)

	_, err := tracker.SubmitFeedback(match.ID, models.FeedbackPositive, "alice", nil)
	require.NoError(t, err)

	outcome, err := tracker.SubmitFeedback(match.ID, models.FeedbackPositive, "bob", nil)
	require.NoError(t, err)

	assert.InDelta(t, 1.10, outcome.Multiplier, 0.0001)
}

func TestMultiplierFromHistory(t *testing.T) {
	positive := models.MatchFeedback{FeedbackType: models.FeedbackPositive}
	negative := models.MatchFeedback{FeedbackType: models.FeedbackNegative}

	repeat := func(event models.MatchFeedback, n int) []models.MatchFeedback {
		history := make([]models.MatchFeedback, n)
		for i := range history {
			history[i] = event
		}
		return history
	}

	tests := []struct {
		name    string
		history []models.MatchFeedback
		want    float64
	}{
		{"empty history", nil, 1.0},
		{"one positive", repeat(positive, 1), 1.05},
		{"one negative", repeat(negative, 1), 0.90},
		{"mixed", []models.MatchFeedback{positive, negative, positive}, 1.0},
		{"clamped at ceiling", repeat(positive, 20), 1.5},
		{"clamped at floor", repeat(negative, 20), 0.5},
		{"recovers after floor clamp", append(repeat(negative, 10), positive), 0.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, multiplierFromHistory(tt.history), 0.0001)
		})
	}
}

func TestMultiplierAlwaysBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		history := make([]models.MatchFeedback, rng.Intn(50))
		for j := range history {
			if rng.Intn(2) == 0 {
				history[j].FeedbackType = models.FeedbackPositive
			} else {
				history[j].FeedbackType = models.FeedbackNegative
			}
		}

		multiplier := multiplierFromHistory(history)
		assert.GreaterOrEqual(t, multiplier, 0.5)
		assert.LessOrEqual(t, multiplier, 1.5)
	}
}
