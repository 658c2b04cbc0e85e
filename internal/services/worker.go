package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/tender-evaluator/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(decisionID uuid.UUID)
}

type worker struct {
	decisionRepo  repositories.DecisionRepository
	reportService ReportService
	jobQueue      chan uuid.UUID
	concurrency   int
	pollInterval  time.Duration
	wg            sync.WaitGroup
	stopChan      chan struct{}
	stopOnce      sync.Once
}

func NewWorker(
	decisionRepo repositories.DecisionRepository,
	reportService ReportService,
	concurrency int,
	pollInterval time.Duration,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &worker{
		decisionRepo:  decisionRepo,
		reportService: reportService,
		jobQueue:      make(chan uuid.UUID, 100),
		concurrency:   concurrency,
		pollInterval:  pollInterval,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting report worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	if w.pollInterval > 0 {
		w.wg.Add(1)
		go w.pollPendingJobs(ctx)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping report worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Report worker stopped")
	})
}

// EnqueueJob implements Worker. It never blocks: when the queue is full the
// decision stays queued in storage and the poller picks it up later.
func (w *worker) EnqueueJob(decisionID uuid.UUID) {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue report %s\n", decisionID)
		return
	default:
	}

	select {
	case w.jobQueue <- decisionID:
		log.Printf("📥 Report %s enqueued\n", decisionID)
	default:
		log.Printf("⚠️  Report queue full, %s left for the poller\n", decisionID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			return
		case decisionID := <-w.jobQueue:
			if err := w.reportService.GenerateReport(ctx, decisionID); err != nil {
				log.Printf("❌ Worker #%d failed report %s: %v\n", workerID, decisionID, err)
			} else {
				log.Printf("✅ Worker #%d completed report %s\n", workerID, decisionID)
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.decisionRepo.FindPendingReports(ctx, 10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending reports: %v\n", err)
				continue
			}

			if len(pending) > 0 {
				log.Printf("📋 Found %d pending reports\n", len(pending))
			}

			for _, decision := range pending {
				w.EnqueueJob(decision.ID)
			}
		}
	}
}
