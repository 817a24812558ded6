package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
)

// BatchProcessor drives match runs across queues of items. Queues execute
// concurrently, but items within a single queue run strictly sequentially:
// that bounds load on the retrieval dependency and keeps progress counters
// exact and monotonic for pollers.
type BatchProcessor interface {
	Start(ctx context.Context)
	Stop()
	EnqueueQueue(queueID uuid.UUID)
	// Cancel stops a queue between items. Items never started stay
	// pending and the queue finishes partial.
	Cancel(queueID uuid.UUID) error
}

type batchProcessor struct {
	queueRepo    repositories.ProcessingQueueRepository
	matcher      MatcherService
	queueChan    chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
}

func NewBatchProcessor(
	queueRepo repositories.ProcessingQueueRepository,
	matcher MatcherService,
	concurrency int,
	pollInterval time.Duration,
) BatchProcessor {
	return &batchProcessor{
		queueRepo:    queueRepo,
		matcher:      matcher,
		queueChan:    make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		cancels:      make(map[uuid.UUID]context.CancelFunc),
	}
}

// Start implements BatchProcessor.
func (p *batchProcessor) Start(ctx context.Context) {
	log.Printf("🚀 Starting batch processor with %d concurrent queues\n", p.concurrency)

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.processQueues(ctx, i+1)
	}

	p.wg.Add(1)
	go p.pollQueuedBatches(ctx)

	log.Println("✅ Batch processor started successfully")
}

// Stop implements BatchProcessor.
func (p *batchProcessor) Stop() {
	log.Println("🛑 Stopping batch processor...")
	close(p.stopChan)
	p.wg.Wait()
	log.Println("✅ Batch processor stopped")
}

// EnqueueQueue implements BatchProcessor.
func (p *batchProcessor) EnqueueQueue(queueID uuid.UUID) {
	select {
	case p.queueChan <- queueID:
		log.Printf("📥 Queue %s enqueued\n", queueID)
	case <-p.stopChan:
		log.Printf("⚠️  Batch processor stopped, cannot enqueue queue %s\n", queueID)
	}
}

// Cancel implements BatchProcessor.
func (p *batchProcessor) Cancel(queueID uuid.UUID) error {
	p.mu.Lock()
	cancel, running := p.cancels[queueID]
	p.mu.Unlock()

	if running {
		cancel()
		return nil
	}

	// Not running: it either never started or already finished.
	queue, err := p.queueRepo.FindByID(queueID)
	if err != nil {
		return err
	}
	if queue.Status == models.QueueQueued {
		return p.queueRepo.UpdateStatus(queueID, models.QueuePartial)
	}

	return fmt.Errorf("queue %s is not cancellable in status %s", queueID, queue.Status)
}

func (p *batchProcessor) processQueues(ctx context.Context, workerID int) {
	defer p.wg.Done()
	log.Printf("👷 Batch worker #%d started\n", workerID)

	for {
		select {
		case <-p.stopChan:
			log.Printf("👷 Batch worker #%d stopped\n", workerID)
			return
		case queueID := <-p.queueChan:
			log.Printf("👷 Batch worker #%d processing queue %s\n", workerID, queueID)
			p.runQueue(ctx, queueID)
		}
	}
}

func (p *batchProcessor) runQueue(ctx context.Context, queueID uuid.UUID) {
	claimed, err := p.queueRepo.TryMarkProcessing(queueID)
	if err != nil {
		log.Printf("❌ Failed to claim queue %s: %v\n", queueID, err)
		return
	}
	if !claimed {
		return
	}

	queue, err := p.queueRepo.FindByID(queueID)
	if err != nil {
		log.Printf("❌ Failed to load queue %s: %v\n", queueID, err)
		return
	}

	qctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	p.cancels[queueID] = cancel
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.cancels, queueID)
		p.mu.Unlock()
	}()

	items, err := p.queueRepo.FindItems(queueID)
	if err != nil {
		log.Printf("❌ Failed to load items for queue %s: %v\n", queueID, err)
		p.finishQueue(queueID, true)
		return
	}

	cancelled := false
	for _, item := range items {
		if item.Status != models.ItemPending {
			continue
		}

		// Cancellation is honored between items only, never mid-item.
		if qctx.Err() != nil {
			cancelled = true
			break
		}

		if err := p.queueRepo.SetCurrentItem(queueID, item.JobID.String()); err != nil {
			log.Printf("⚠️  Failed to set current item on queue %s: %v\n", queueID, err)
		}

		status, errorMsg := p.processItem(qctx, queue, &item)
		if err := p.queueRepo.RecordItemOutcome(queueID, item.ID, status, errorMsg); err != nil {
			log.Printf("❌ Failed to record outcome for item %s: %v\n", item.ID, err)
		}
	}

	if err := p.queueRepo.SetCurrentItem(queueID, ""); err != nil {
		log.Printf("⚠️  Failed to clear current item on queue %s: %v\n", queueID, err)
	}

	p.finishQueue(queueID, cancelled)
}

// processItem computes one item's terminal state exactly once.
func (p *batchProcessor) processItem(ctx context.Context, queue *models.ProcessingQueue, item *models.QueueItem) (models.QueueItemStatus, *string) {
	summary, err := p.matcher.RunMatch(ctx, item.JobID, item.CandidateIDs, nil)
	if err != nil {
		msg := err.Error()
		return models.ItemFailed, &msg
	}

	// Results come back ordered by overall score descending, so the first
	// one is the best match for the threshold check.
	if summary.Count > 0 && summary.Results[0].OverallScore >= queue.Threshold {
		return models.ItemSucceeded, nil
	}

	return models.ItemReviewRequired, nil
}

// finishQueue derives the terminal queue status from the recorded item
// states rather than from in-memory counters.
func (p *batchProcessor) finishQueue(queueID uuid.UUID, cancelled bool) {
	queue, err := p.queueRepo.FindByID(queueID)
	if err != nil {
		log.Printf("❌ Failed to reload queue %s: %v\n", queueID, err)
		return
	}

	pending, err := p.queueRepo.CountPendingItems(queueID)
	if err != nil {
		log.Printf("❌ Failed to count pending items for queue %s: %v\n", queueID, err)
		pending = 0
	}

	var status models.QueueStatus
	switch {
	case cancelled || pending > 0:
		status = models.QueuePartial
	case queue.FailedCount == queue.TotalItems:
		status = models.QueueFailed
	case queue.FailedCount > 0:
		status = models.QueuePartial
	default:
		status = models.QueueCompleted
	}

	if err := p.queueRepo.UpdateStatus(queueID, status); err != nil {
		log.Printf("❌ Failed to finalize queue %s: %v\n", queueID, err)
		return
	}

	log.Printf("✅ Queue %s finished with status %s (%d/%d processed, %d failed)\n",
		queueID, status, queue.ProcessedCount, queue.TotalItems, queue.FailedCount)
}

func (p *batchProcessor) pollQueuedBatches(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	log.Println("🔄 Starting queued batch poller")

	for {
		select {
		case <-p.stopChan:
			log.Println("🔄 Queued batch poller stopped")
			return
		case <-ticker.C:
			queues, err := p.queueRepo.FindQueued(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch queued batches: %v\n", err)
				continue
			}

			for _, queue := range queues {
				p.EnqueueQueue(queue.ID)
			}
		}
	}
}
