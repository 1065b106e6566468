package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recruitforge/hiring-engine/internal/repositories"
)

// Worker runs queued ranking jobs on a fixed pool of goroutines and polls
// the store for jobs that were enqueued while the process was down.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueRanking(rankingID uuid.UUID)
}

type worker struct {
	rankingRepo    repositories.RankingRepository
	rankingService RankingService
	jobQueue       chan uuid.UUID
	concurrency    int
	wg             sync.WaitGroup
	stopChan       chan struct{}
	logger         *zap.Logger
}

func NewWorker(
	rankingRepo repositories.RankingRepository,
	rankingService RankingService,
	concurrency int,
	logger *zap.Logger,
) Worker {
	return &worker{
		rankingRepo:    rankingRepo,
		rankingService: rankingService,
		jobQueue:       make(chan uuid.UUID, 100),
		concurrency:    concurrency,
		stopChan:       make(chan struct{}),
		logger:         logger,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting ranking worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.logger.Info("stopping ranking worker")
	close(w.stopChan)
	w.wg.Wait()
}

// EnqueueRanking implements Worker.
func (w *worker) EnqueueRanking(rankingID uuid.UUID) {
	select {
	case w.jobQueue <- rankingID:
		w.logger.Debug("ranking job enqueued", zap.String("ranking_id", rankingID.String()))
	case <-w.stopChan:
		w.logger.Warn("worker stopped, cannot enqueue ranking job",
			zap.String("ranking_id", rankingID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("worker stopped", zap.Int("worker_id", workerID))
			return
		case rankingID := <-w.jobQueue:
			if err := w.rankingService.ProcessRanking(ctx, rankingID); err != nil {
				w.logger.Error("ranking job failed",
					zap.Int("worker_id", workerID),
					zap.String("ranking_id", rankingID.String()),
					zap.Error(err),
				)
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pendingJobs, err := w.rankingRepo.FindPendingJobs(10)
			if err != nil {
				w.logger.Warn("failed to fetch pending ranking jobs", zap.Error(err))
				continue
			}

			for _, job := range pendingJobs {
				w.EnqueueRanking(job.ID)
			}
		}
	}
}
