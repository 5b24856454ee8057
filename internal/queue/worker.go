package queue

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/privasee/footprint/internal/scan"
	"github.com/privasee/footprint/internal/store"
)

// Worker pulls scan jobs off the queue and drives them through the
// pipeline runner.
type Worker struct {
	id     string
	queue  *Queue
	store  *store.Store
	runner *scan.Runner

	pollInterval time.Duration
	jobTimeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	running bool
	mu      sync.Mutex
}

type WorkerConfig struct {
	Queue        *Queue
	Store        *store.Store
	Runner       *scan.Runner
	PollInterval time.Duration
	JobTimeout   time.Duration
}

func NewWorker(cfg WorkerConfig) *Worker {
	hostname, _ := os.Hostname()
	workerID := fmt.Sprintf("%s-%s", hostname, uuid.New().String()[:8])

	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 5 * time.Minute
	}

	return &Worker{
		id:           workerID,
		queue:        cfg.Queue,
		store:        cfg.Store,
		runner:       cfg.Runner,
		pollInterval: cfg.PollInterval,
		jobTimeout:   cfg.JobTimeout,
	}
}

func (w *Worker) ID() string {
	return w.id
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("worker already running")
	}
	w.running = true
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	log.Printf("[%s] Worker starting", w.id)

	w.wg.Add(1)
	go w.heartbeatLoop()

	w.wg.Add(1)
	go w.processLoop()

	w.wg.Add(1)
	go w.staleJobLoop()

	return nil
}

func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	log.Printf("[%s] Worker stopping", w.id)
	w.cancel()
	w.wg.Wait()
	log.Printf("[%s] Worker stopped", w.id)
}

func (w *Worker) heartbeatLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.queue.WorkerHeartbeat(w.ctx, w.id)
		}
	}
}

func (w *Worker) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			job, err := w.queue.DequeueJob(w.ctx, w.id)
			if err != nil {
				log.Printf("[%s] Error dequeuing job: %v", w.id, err)
				time.Sleep(5 * time.Second)
				continue
			}

			if job == nil {
				time.Sleep(w.pollInterval)
				continue
			}

			log.Printf("[%s] Processing job %s (scan: %s, type: %s)",
				w.id, job.ID, job.ScanID, job.ScanType)

			if err := w.processJob(job); err != nil {
				log.Printf("[%s] Job %s failed: %v", w.id, job.ID, err)
				w.queue.RequeueJob(w.ctx, job, err.Error())
			} else {
				log.Printf("[%s] Job %s completed successfully", w.id, job.ID)
				w.queue.CompleteJob(w.ctx, job, true)
			}
		}
	}
}

func (w *Worker) processJob(job *Job) error {
	ctx, cancel := context.WithTimeout(w.ctx, w.jobTimeout)
	defer cancel()

	scanRecord, err := w.store.GetScan(ctx, job.UserID, job.ScanID)
	if err != nil {
		return fmt.Errorf("getting scan: %w", err)
	}
	if scanRecord == nil {
		return fmt.Errorf("scan not found: %s", job.ScanID)
	}

	return w.runner.Run(ctx, scanRecord, job.Platforms)
}

func (w *Worker) staleJobLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			cleaned, err := w.queue.CleanupStaleJobs(w.ctx, 30*time.Minute)
			if err != nil {
				log.Printf("[%s] Error cleaning stale jobs: %v", w.id, err)
			} else if cleaned > 0 {
				log.Printf("[%s] Cleaned up %d stale jobs", w.id, cleaned)
			}
		}
	}
}
