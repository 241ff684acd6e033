package main

import (
	"testing"
	"time"
)

func newTestScheduler(t *testing.T, delay time.Duration, runner jobRunner) *scheduler {
	t.Helper()
	cfg := &config{
		InputDir:  t.TempDir(),
		OutputDir: t.TempDir(),
		Delay:     delay,
		Workers:   2,
		Pattern:   defaultPattern,
	}
	return newScheduler(cfg, runner, testLogger())
}

func (s *scheduler) taskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func TestSchedulerRegistryLifecycle(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestScheduler(t, 20*time.Millisecond, runner)
	defer s.shutdown()

	s.fileTouched("/input/a.pdf")
	if got := s.taskCount(); got != 1 {
		t.Fatalf("expected 1 registered task, got %d", got)
	}

	if !waitFor(t, time.Second, func() bool { return s.taskCount() == 0 }) {
		t.Fatal("task was never reclaimed after finishing")
	}
	if got := runner.runs.Load(); got != 1 {
		t.Fatalf("expected 1 run, got %d", got)
	}

	// A later touch of the same path starts over with a fresh task.
	s.fileTouched("/input/a.pdf")
	if !waitFor(t, time.Second, func() bool { return runner.runs.Load() == 2 }) {
		t.Fatal("touch after completion did not trigger a new run")
	}
}

func TestSchedulerRoutesTouchesToExistingTask(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestScheduler(t, 50*time.Millisecond, runner)
	defer s.shutdown()

	for i := 0; i < 4; i++ {
		s.fileTouched("/input/a.pdf")
		time.Sleep(10 * time.Millisecond)
	}
	if got := s.taskCount(); got != 1 {
		t.Fatalf("repeated touches must share one task, registry has %d", got)
	}

	if !waitFor(t, time.Second, func() bool { return s.taskCount() == 0 }) {
		t.Fatal("task never finished")
	}
	if got := runner.runs.Load(); got != 1 {
		t.Fatalf("expected coalesced single run, got %d", got)
	}
}

func TestSchedulerDeleteCancelsPendingTask(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestScheduler(t, 150*time.Millisecond, runner)
	defer s.shutdown()

	s.fileTouched("/input/b.pdf")
	time.Sleep(20 * time.Millisecond)
	s.fileDeleted("/input/b.pdf")

	if !waitFor(t, time.Second, func() bool { return s.taskCount() == 0 }) {
		t.Fatal("canceled task never left the registry")
	}
	time.Sleep(200 * time.Millisecond)
	if got := runner.runs.Load(); got != 0 {
		t.Fatalf("deleted file was still processed %d times", got)
	}
}

func TestSchedulerDeleteOfUnknownPathIsNoop(t *testing.T) {
	s := newTestScheduler(t, 20*time.Millisecond, &fakeRunner{})
	defer s.shutdown()
	s.fileDeleted("/input/never-seen.pdf")
}

func TestSchedulerDistinctPathsRunIndependently(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestScheduler(t, 20*time.Millisecond, runner)
	defer s.shutdown()

	s.fileTouched("/input/a.pdf")
	s.fileTouched("/input/b.pdf")
	s.fileTouched("/input/c.pdf")

	if !waitFor(t, 2*time.Second, func() bool { return runner.runs.Load() == 3 }) {
		t.Fatalf("expected 3 runs, got %d", runner.runs.Load())
	}
}

func TestSchedulerShutdownCancelsQueued(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestScheduler(t, time.Second, runner)

	s.fileTouched("/input/a.pdf")
	s.fileTouched("/input/b.pdf")
	s.fileTouched("/input/c.pdf")

	s.shutdown()

	if got := runner.runs.Load(); got != 0 {
		t.Fatalf("tasks still inside their debounce window ran %d times during shutdown", got)
	}
}

func TestSchedulerShutdownWaitsForActive(t *testing.T) {
	runner := &fakeRunner{block: 120 * time.Millisecond}
	s := newTestScheduler(t, 10*time.Millisecond, runner)

	s.fileTouched("/input/a.pdf")
	if !waitFor(t, time.Second, func() bool { return runner.runs.Load() == 1 }) {
		t.Fatal("job never started")
	}

	s.shutdown()

	times := runner.runTimes()
	if len(times) != 1 {
		t.Fatalf("expected exactly the in-flight run, got %d", len(times))
	}
	if since := time.Since(times[0]); since < 120*time.Millisecond {
		t.Errorf("shutdown returned %v after job start, before the job could finish", since)
	}
}
