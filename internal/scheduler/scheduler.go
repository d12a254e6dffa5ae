// Package scheduler runs periodic jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 10 * time.Minute

// Job is a unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	running map[string]bool
}

// New creates a scheduler using standard 5-field cron expressions.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		timeout: DefaultJobTimeout,
		logger:  logger,
		running: map[string]bool{},
	}
}

// Add registers job under name. An empty spec disables the job and returns false.
func (s *Scheduler) Add(name, spec string, job Job) (bool, error) {
	if spec == "" {
		s.logger.Info("scheduled job disabled", zap.String("job", name))
		return false, nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return false, fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("scheduled job added", zap.String("job", name), zap.String("schedule", spec))
	return true, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// RunNow runs job synchronously, subject to the same overlap rule.
func (s *Scheduler) RunNow(name string, job Job) {
	s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) {
	if !s.acquire(name) {
		s.logger.Warn("scheduled job still running, skipping", zap.String("job", name))
		return
	}
	defer s.release(name)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.logger.Info("scheduled job finished", zap.String("job", name), zap.Duration("duration", time.Since(start)))
}

func (s *Scheduler) acquire(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	delete(s.running, name)
	s.mu.Unlock()
}
