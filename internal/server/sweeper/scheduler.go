package sweeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Scheduler runs the sweep every interval until stopped.
type Scheduler struct {
	runner   *Runner
	interval time.Duration
	done     chan struct{}
	mu       sync.Mutex
	running  bool
	wg       sync.WaitGroup
}

func NewScheduler(runner *Runner, interval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, done: make(chan struct{})}
}

// Start launches the background loop. A non-positive interval is rejected.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", s.interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.done = make(chan struct{})

	s.wg.Add(1)
	go s.runLoop(ctx, s.done)
	return nil
}

// Stop ends the loop and waits for an in-progress run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.done)
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
}

// RunNow sweeps immediately, outside the ticker.
func (s *Scheduler) RunNow(ctx context.Context) (*models.SweepResult, error) {
	return s.runner.Run(ctx, TriggerScheduler)
}

func (s *Scheduler) runLoop(ctx context.Context, done <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			_, _ = s.runner.Run(ctx, TriggerScheduler)
		}
	}
}
