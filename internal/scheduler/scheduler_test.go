package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestScheduleInvalidSpec(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	for _, spec := range []string{"", "bogus", "61 * * * *", "* * *"} {
		if err := s.Schedule(spec, func(context.Context) error { return nil }); err == nil {
			t.Errorf("expected error for spec %q", spec)
		}
	}
}

func TestScheduleRegistersOneEntry(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	job := func(context.Context) error { return nil }
	if err := s.Schedule("0 * * * *", job); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}

	// Rescheduling replaces the previous job.
	if err := s.Schedule("*/5 * * * *", job); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("entries after reschedule = %d, want 1", got)
	}
}

func TestTickSkipsWhileJobRunning(t *testing.T) {
	s := New(nil)

	block := make(chan struct{})
	var mu sync.Mutex
	runs := 0

	job := func(context.Context) error {
		mu.Lock()
		runs++
		mu.Unlock()
		<-block
		return nil
	}

	go s.tick(job)

	// Wait until the first tick is inside the job.
	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		started := runs == 1
		mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first tick never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// A second tick while the first is blocked must be a no-op.
	s.tick(job)
	mu.Lock()
	if runs != 1 {
		t.Errorf("runs = %d, want 1 while first job is blocked", runs)
	}
	mu.Unlock()

	close(block)
}

func TestTickRunsAgainAfterCompletion(t *testing.T) {
	s := New(nil)

	runs := 0
	job := func(context.Context) error {
		runs++
		return nil
	}

	s.tick(job)
	s.tick(job)
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestMultipleStartStop(t *testing.T) {
	s := New(nil)
	_ = s.Schedule("0 * * * *", func(context.Context) error { return nil })

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}
