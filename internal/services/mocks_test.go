package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
)

// --- in-memory match result repository ---

type memMatchRepo struct {
	mu         sync.Mutex
	byPair     map[string]*models.MatchResult
	failOnPair map[string]error
}

func newMemMatchRepo() *memMatchRepo {
	return &memMatchRepo{
		byPair:     make(map[string]*models.MatchResult),
		failOnPair: make(map[string]error),
	}
}

func pairKey(candidateID, jobID uuid.UUID) string {
	return candidateID.String() + "|" + jobID.String()
}

func (r *memMatchRepo) Upsert(result *models.MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(result.CandidateID, result.JobID)
	if existing, ok := r.byPair[key]; ok {
		result.ID = existing.ID
		result.CreatedAt = existing.CreatedAt
	}
	clone := *result
	r.byPair[key] = &clone
	return nil
}

func (r *memMatchRepo) FindByID(id uuid.UUID) (*models.MatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, result := range r.byPair {
		if result.ID == id {
			clone := *result
			return &clone, nil
		}
	}
	return nil, models.ErrMatchResultNotFound
}

func (r *memMatchRepo) FindByPair(candidateID, jobID uuid.UUID) (*models.MatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(candidateID, jobID)
	if err, ok := r.failOnPair[key]; ok {
		return nil, err
	}
	if result, ok := r.byPair[key]; ok {
		clone := *result
		return &clone, nil
	}
	return nil, models.ErrMatchResultNotFound
}

func (r *memMatchRepo) FindByJob(jobID uuid.UUID) ([]models.MatchResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var results []models.MatchResult
	for _, result := range r.byPair {
		if result.JobID == jobID {
			results = append(results, *result)
		}
	}
	return results, nil
}

func (r *memMatchRepo) UpdateFeedback(id uuid.UUID, multiplier, overallScore float64, tier models.TriageTier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, result := range r.byPair {
		if result.ID == id {
			result.FeedbackMultiplier = multiplier
			result.OverallScore = overallScore
			result.TriageTier = tier
			result.ReviewStatus = models.ReviewReviewed
			result.UpdatedAt = time.Now()
			return nil
		}
	}
	return models.ErrMatchResultNotFound
}

func (r *memMatchRepo) rowCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byPair)
}

func (r *memMatchRepo) put(result *models.MatchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *result
	r.byPair[pairKey(result.CandidateID, result.JobID)] = &clone
}

// --- in-memory feedback repository ---

type memFeedbackRepo struct {
	mu     sync.Mutex
	events []models.MatchFeedback
}

func newMemFeedbackRepo() *memFeedbackRepo {
	return &memFeedbackRepo{}
}

func (r *memFeedbackRepo) Create(feedback *models.MatchFeedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *feedback)
	return nil
}

func (r *memFeedbackRepo) FindStanding(matchResultID uuid.UUID) ([]models.MatchFeedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var standing []models.MatchFeedback
	for _, event := range r.events {
		if event.MatchResultID == matchResultID && !event.Retracted {
			standing = append(standing, event)
		}
	}
	sort.SliceStable(standing, func(i, j int) bool {
		return standing[i].FeedbackAt.Before(standing[j].FeedbackAt)
	})
	return standing, nil
}

func (r *memFeedbackRepo) Retract(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.events {
		if r.events[i].ID == id {
			r.events[i].Retracted = true
			return nil
		}
	}
	return fmt.Errorf("feedback event not found")
}

// --- in-memory candidate repository ---

type memCandidateRepo struct {
	mu         sync.Mutex
	candidates []models.CandidateProfile
}

func newMemCandidateRepo(candidates ...models.CandidateProfile) *memCandidateRepo {
	return &memCandidateRepo{candidates: candidates}
}

func (r *memCandidateRepo) FindByID(id uuid.UUID) (*models.CandidateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.candidates {
		if r.candidates[i].ID == id {
			clone := r.candidates[i]
			return &clone, nil
		}
	}
	return nil, models.ErrCandidateNotFound
}

func (r *memCandidateRepo) FindByIDs(ids []uuid.UUID) ([]models.CandidateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var found []models.CandidateProfile
	for _, candidate := range r.candidates {
		if wanted[candidate.ID] {
			found = append(found, candidate)
		}
	}
	return found, nil
}

func (r *memCandidateRepo) ListActive(limit int) ([]models.CandidateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active []models.CandidateProfile
	for _, candidate := range r.candidates {
		if candidate.Active {
			active = append(active, candidate)
		}
		if len(active) == limit {
			break
		}
	}
	return active, nil
}

func (r *memCandidateRepo) ListEmbeddingStale(limit int) ([]models.CandidateProfile, error) {
	return nil, nil
}

func (r *memCandidateRepo) MarkEmbeddingFresh(id uuid.UUID, generatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.candidates {
		if r.candidates[i].ID == id {
			r.candidates[i].EmbeddingStale = false
			r.candidates[i].EmbeddingGeneratedAt = &generatedAt
			return nil
		}
	}
	return models.ErrCandidateNotFound
}

// --- in-memory job repository ---

type memJobRepo struct {
	mu   sync.Mutex
	jobs []models.JobProfile
}

func newMemJobRepo(jobs ...models.JobProfile) *memJobRepo {
	return &memJobRepo{jobs: jobs}
}

func (r *memJobRepo) FindByID(id uuid.UUID) (*models.JobProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.jobs {
		if r.jobs[i].ID == id {
			clone := r.jobs[i]
			return &clone, nil
		}
	}
	return nil, models.ErrJobNotFound
}

func (r *memJobRepo) ListEmbeddingStale(limit int) ([]models.JobProfile, error) {
	return nil, nil
}

func (r *memJobRepo) MarkEmbeddingFresh(id uuid.UUID, generatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.jobs {
		if r.jobs[i].ID == id {
			r.jobs[i].EmbeddingStale = false
			r.jobs[i].EmbeddingGeneratedAt = &generatedAt
			return nil
		}
	}
	return models.ErrJobNotFound
}

// --- stub retriever ---

type stubRetriever struct {
	matches []SemanticMatch
}

func (s *stubRetriever) RetrieveSimilar(_ context.Context, _ *models.JobProfile, _ int, _ []uuid.UUID) []SemanticMatch {
	return s.matches
}

// --- stub notifier ---

type stubNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *stubNotifier) Emit(event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *stubNotifier) Stop() {}

func (n *stubNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, event := range n.events {
		if event.Type == eventType {
			count++
		}
	}
	return count
}

// --- stub vector store ---

type stubVectorStore struct {
	getEmbeddingFn func(ctx context.Context, entityType, entityID string) ([]float32, error)
	nearestFn      func(ctx context.Context, query []float32, k int, scopeIDs, excludeIDs []string) ([]Neighbor, error)
	upsertFn       func(ctx context.Context, entityType, entityID string, embedding []float32) error
}

func (s *stubVectorStore) InitCollection() error { return nil }

func (s *stubVectorStore) UpsertEmbedding(ctx context.Context, entityType, entityID string, embedding []float32) error {
	if s.upsertFn != nil {
		return s.upsertFn(ctx, entityType, entityID, embedding)
	}
	return nil
}

func (s *stubVectorStore) GetEmbedding(ctx context.Context, entityType, entityID string) ([]float32, error) {
	if s.getEmbeddingFn != nil {
		return s.getEmbeddingFn(ctx, entityType, entityID)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (s *stubVectorStore) NearestCandidates(ctx context.Context, query []float32, k int, scopeIDs, excludeIDs []string) ([]Neighbor, error) {
	if s.nearestFn != nil {
		return s.nearestFn(ctx, query, k, scopeIDs, excludeIDs)
	}
	return nil, nil
}

func (s *stubVectorStore) DeleteEmbedding(context.Context, string, string) error { return nil }

// --- stub matcher for batch tests ---

type stubMatcher struct {
	mu    sync.Mutex
	calls []uuid.UUID
	runFn func(ctx context.Context, jobID uuid.UUID, candidateIDs []uuid.UUID, minScore *float64) (*MatchRunSummary, error)
}

func (m *stubMatcher) RunMatch(ctx context.Context, jobID uuid.UUID, candidateIDs []uuid.UUID, minScore *float64) (*MatchRunSummary, error) {
	m.mu.Lock()
	m.calls = append(m.calls, jobID)
	m.mu.Unlock()

	if m.runFn != nil {
		return m.runFn(ctx, jobID, candidateIDs, minScore)
	}
	return &MatchRunSummary{}, nil
}

// --- in-memory processing queue repository ---

type memQueueRepo struct {
	mu     sync.Mutex
	queues map[uuid.UUID]*models.ProcessingQueue
	items  map[uuid.UUID][]models.QueueItem
}

func newMemQueueRepo() *memQueueRepo {
	return &memQueueRepo{
		queues: make(map[uuid.UUID]*models.ProcessingQueue),
		items:  make(map[uuid.UUID][]models.QueueItem),
	}
}

func (r *memQueueRepo) Create(queue *models.ProcessingQueue, items []models.QueueItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *queue
	r.queues[queue.ID] = &clone
	for i := range items {
		items[i].QueueID = queue.ID
	}
	r.items[queue.ID] = append([]models.QueueItem(nil), items...)
	return nil
}

func (r *memQueueRepo) FindByID(id uuid.UUID) (*models.ProcessingQueue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	queue, ok := r.queues[id]
	if !ok {
		return nil, models.ErrQueueNotFound
	}
	clone := *queue
	return &clone, nil
}

func (r *memQueueRepo) FindItems(queueID uuid.UUID) ([]models.QueueItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := append([]models.QueueItem(nil), r.items[queueID]...)
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

func (r *memQueueRepo) FindQueued(limit int) ([]models.ProcessingQueue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var queued []models.ProcessingQueue
	for _, queue := range r.queues {
		if queue.Status == models.QueueQueued {
			queued = append(queued, *queue)
		}
		if len(queued) == limit {
			break
		}
	}
	return queued, nil
}

func (r *memQueueRepo) UpdateStatus(id uuid.UUID, status models.QueueStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	queue, ok := r.queues[id]
	if !ok {
		return models.ErrQueueNotFound
	}
	queue.Status = status
	return nil
}

func (r *memQueueRepo) TryMarkProcessing(id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	queue, ok := r.queues[id]
	if !ok {
		return false, models.ErrQueueNotFound
	}
	if queue.Status != models.QueueQueued {
		return false, nil
	}
	queue.Status = models.QueueProcessing
	return true, nil
}

func (r *memQueueRepo) SetCurrentItem(id uuid.UUID, currentItem string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	queue, ok := r.queues[id]
	if !ok {
		return models.ErrQueueNotFound
	}
	queue.CurrentItem = currentItem
	return nil
}

func (r *memQueueRepo) RecordItemOutcome(queueID, itemID uuid.UUID, status models.QueueItemStatus, errorMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	queue, ok := r.queues[queueID]
	if !ok {
		return models.ErrQueueNotFound
	}

	items := r.items[queueID]
	found := false
	for i := range items {
		if items[i].ID == itemID {
			items[i].Status = status
			if errorMsg != nil {
				items[i].ErrorMessage = errorMsg
			}
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("queue item not found")
	}

	queue.ProcessedCount++
	switch status {
	case models.ItemSucceeded:
		queue.SucceededCount++
	case models.ItemReviewRequired:
		queue.ReviewRequiredCount++
	case models.ItemFailed:
		queue.FailedCount++
	}
	return nil
}

func (r *memQueueRepo) CountPendingItems(queueID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, item := range r.items[queueID] {
		if item.Status == models.ItemPending {
			count++
		}
	}
	return count, nil
}
