// Package scheduler triggers the posting job on a cron schedule. Each
// tick runs at most one job; a tick that fires while the previous job
// is still running is skipped.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/headline-hq/chirper/internal/logger"
)

// Job is one posting attempt. Errors are logged, not fatal: the next
// tick gets a fresh try.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a standard five-field cron spec.
type Scheduler struct {
	cron    *cron.Cron
	log     logger.Logger
	mu      sync.Mutex
	entryID cron.EntryID
	started bool
	running bool
}

// New creates an idle scheduler.
func New(log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scheduler{
		cron: cron.New(),
		log:  log,
	}
}

// Schedule registers the job under the given cron spec, replacing any
// previously registered job.
func (s *Scheduler) Schedule(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}

	entryID, err := s.cron.AddFunc(spec, func() { s.tick(job) })
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	s.entryID = entryID

	return nil
}

// tick runs the job unless the previous tick's job is still running.
func (s *Scheduler) tick(job Job) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.WarnObj("previous job still running, skipping tick", "tick_skipped", nil)
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := job(context.Background()); err != nil {
		s.log.ErrorObj("scheduled job failed", "job_failed", map[string]any{
			"error": err.Error(),
		})
	}
}

// Start begins firing ticks.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop halts ticking and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
}
