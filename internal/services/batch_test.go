package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talent-matcher/internal/models"
)

func newTestProcessor(queueRepo *memQueueRepo, matcher MatcherService) *batchProcessor {
	return NewBatchProcessor(queueRepo, matcher, 1, time.Minute).(*batchProcessor)
}

func seedQueue(t *testing.T, repo *memQueueRepo, threshold float64, jobIDs ...uuid.UUID) *models.ProcessingQueue {
	t.Helper()

	items := make([]models.QueueItem, len(jobIDs))
	for i, jobID := range jobIDs {
		items[i] = models.QueueItem{
			ID:       uuid.New(),
			Position: i,
			JobID:    jobID,
			Status:   models.ItemPending,
		}
	}

	queue := &models.ProcessingQueue{
		ID:         uuid.New(),
		Status:     models.QueueQueued,
		TotalItems: len(items),
		Threshold:  threshold,
	}
	require.NoError(t, repo.Create(queue, items))
	return queue
}

func summaryWithTopScore(score float64) *MatchRunSummary {
	return &MatchRunSummary{
		Results: []models.MatchResult{{OverallScore: score}},
		Count:   1,
	}
}

func TestRunQueueAllItemsSucceed(t *testing.T) {
	queueRepo := newMemQueueRepo()
	matcher := &stubMatcher{
		runFn: func(context.Context, uuid.UUID, []uuid.UUID, *float64) (*MatchRunSummary, error) {
			return summaryWithTopScore(90), nil
		},
	}
	processor := newTestProcessor(queueRepo, matcher)
	queue := seedQueue(t, queueRepo, 80, uuid.New(), uuid.New(), uuid.New())

	processor.runQueue(context.Background(), queue.ID)

	final, err := queueRepo.FindByID(queue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueCompleted, final.Status)
	assert.Equal(t, 3, final.ProcessedCount)
	assert.Equal(t, 3, final.SucceededCount)
	assert.Equal(t, 0, final.FailedCount)
	assert.Empty(t, final.CurrentItem)
}

func TestRunQueueOneFailureYieldsPartial(t *testing.T) {
	jobIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	brokenJob := jobIDs[2]

	queueRepo := newMemQueueRepo()
	matcher := &stubMatcher{
		runFn: func(_ context.Context, jobID uuid.UUID, _ []uuid.UUID, _ *float64) (*MatchRunSummary, error) {
			if jobID == brokenJob {
				return nil, errors.New("embedding service unavailable")
			}
			return summaryWithTopScore(90), nil
		},
	}
	processor := newTestProcessor(queueRepo, matcher)
	queue := seedQueue(t, queueRepo, 80, jobIDs...)

	processor.runQueue(context.Background(), queue.ID)

	final, err := queueRepo.FindByID(queue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueuePartial, final.Status)
	assert.Equal(t, 5, final.ProcessedCount)
	assert.Equal(t, 4, final.SucceededCount)
	assert.Equal(t, 1, final.FailedCount)

	items, err := queueRepo.FindItems(queue.ID)
	require.NoError(t, err)
	for _, item := range items {
		if item.JobID == brokenJob {
			assert.Equal(t, models.ItemFailed, item.Status)
			require.NotNil(t, item.ErrorMessage)
			assert.Contains(t, *item.ErrorMessage, "embedding service unavailable")
		} else {
			assert.Equal(t, models.ItemSucceeded, item.Status)
		}
	}
}

func TestRunQueueBelowThresholdNeedsReview(t *testing.T) {
	queueRepo := newMemQueueRepo()
	matcher := &stubMatcher{
		runFn: func(context.Context, uuid.UUID, []uuid.UUID, *float64) (*MatchRunSummary, error) {
			return summaryWithTopScore(55), nil
		},
	}
	processor := newTestProcessor(queueRepo, matcher)
	queue := seedQueue(t, queueRepo, 80, uuid.New(), uuid.New())

	processor.runQueue(context.Background(), queue.ID)

	final, err := queueRepo.FindByID(queue.ID)
	require.NoError(t, err)
	// Needing review is not a failure: the queue still completes.
	assert.Equal(t, models.QueueCompleted, final.Status)
	assert.Equal(t, 2, final.ReviewRequiredCount)
	assert.Equal(t, 0, final.SucceededCount)
}

func TestRunQueueEmptyMatchNeedsReview(t *testing.T) {
	queueRepo := newMemQueueRepo()
	matcher := &stubMatcher{
		runFn: func(context.Context, uuid.UUID, []uuid.UUID, *float64) (*MatchRunSummary, error) {
			return &MatchRunSummary{}, nil
		},
	}
	processor := newTestProcessor(queueRepo, matcher)
	queue := seedQueue(t, queueRepo, 80, uuid.New())

	processor.runQueue(context.Background(), queue.ID)

	items, err := queueRepo.FindItems(queue.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ItemReviewRequired, items[0].Status)
}

func TestRunQueueAllFailuresYieldsFailed(t *testing.T) {
	queueRepo := newMemQueueRepo()
	matcher := &stubMatcher{
		runFn: func(context.Context, uuid.UUID, []uuid.UUID, *float64) (*MatchRunSummary, error) {
			return nil, errors.New("database down")
		},
	}
	processor := newTestProcessor(queueRepo, matcher)
	queue := seedQueue(t, queueRepo, 80, uuid.New(), uuid.New())

	processor.runQueue(context.Background(), queue.ID)

	final, err := queueRepo.FindByID(queue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueFailed, final.Status)
	assert.Equal(t, 2, final.FailedCount)
}

func TestRunQueueCancelBetweenItems(t *testing.T) {
	queueRepo := newMemQueueRepo()
	queue := seedQueue(t, queueRepo, 80, uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New())

	var processor *batchProcessor
	processed := 0
	matcher := &stubMatcher{
		runFn: func(context.Context, uuid.UUID, []uuid.UUID, *float64) (*MatchRunSummary, error) {
			processed++
			if processed == 2 {
				require.NoError(t, processor.Cancel(queue.ID))
			}
			return summaryWithTopScore(90), nil
		},
	}
	processor = newTestProcessor(queueRepo, matcher)

	processor.runQueue(context.Background(), queue.ID)

	final, err := queueRepo.FindByID(queue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueuePartial, final.Status)
	assert.Equal(t, 2, final.ProcessedCount)

	// Items never started stay pending; the in-flight item finished.
	pending, err := queueRepo.CountPendingItems(queue.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pending)
}

func TestCancelQueuedBeforeStart(t *testing.T) {
	queueRepo := newMemQueueRepo()
	processor := newTestProcessor(queueRepo, &stubMatcher{})
	queue := seedQueue(t, queueRepo, 80, uuid.New())

	require.NoError(t, processor.Cancel(queue.ID))

	final, err := queueRepo.FindByID(queue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueuePartial, final.Status)
	assert.Equal(t, 0, len(processor.cancels))
}

func TestCancelUnknownQueue(t *testing.T) {
	processor := newTestProcessor(newMemQueueRepo(), &stubMatcher{})

	err := processor.Cancel(uuid.New())

	assert.ErrorIs(t, err, models.ErrQueueNotFound)
}

func TestCancelFinishedQueueRejected(t *testing.T) {
	queueRepo := newMemQueueRepo()
	processor := newTestProcessor(queueRepo, &stubMatcher{})
	queue := seedQueue(t, queueRepo, 80, uuid.New())
	require.NoError(t, queueRepo.UpdateStatus(queue.ID, models.QueueCompleted))

	err := processor.Cancel(queue.ID)

	assert.Error(t, err)
}

func TestRunQueueClaimedOnlyOnce(t *testing.T) {
	queueRepo := newMemQueueRepo()
	matcher := &stubMatcher{
		runFn: func(context.Context, uuid.UUID, []uuid.UUID, *float64) (*MatchRunSummary, error) {
			return summaryWithTopScore(90), nil
		},
	}
	processor := newTestProcessor(queueRepo, matcher)
	queue := seedQueue(t, queueRepo, 80, uuid.New(), uuid.New())

	processor.runQueue(context.Background(), queue.ID)
	// A poller re-delivering the queue id must not reprocess it.
	processor.runQueue(context.Background(), queue.ID)

	final, err := queueRepo.FindByID(queue.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, final.ProcessedCount)
	assert.Len(t, matcher.calls, 2)
}
