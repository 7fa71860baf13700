package ingest

import (
	"context"
	"log"
	"time"
)

// Runner is anything that can execute one ingestion pass.
type Runner interface {
	Run(ctx context.Context) (*Report, error)
}

// Scheduler re-runs ingestion on a fixed interval. Each pass keeps the
// pipeline's full-replace semantics; a failed pass is logged and the next
// tick tries again.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewScheduler creates a new Scheduler instance
func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the scheduler's loop
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneChan)

	log.Printf("scheduler started with resync interval: %v", s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler stopped: context cancelled")
			return
		case <-s.stopChan:
			log.Println("scheduler stopped: stop signal received")
			return
		case <-ticker.C:
			if _, err := s.runner.Run(ctx); err != nil {
				log.Printf("scheduled ingestion failed: %v", err)
			}
		}
	}
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	<-s.doneChan
	log.Println("scheduler shutdown complete")
}
