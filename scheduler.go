package main

// The scheduler is the sole owner of task lifetimes: a path enters the
// registry on its first touched event and leaves exactly once, through the
// task's completion callback.

import (
	"fmt"
	"sync"
)

type scheduler struct {
	cfg    *config
	runner jobRunner
	pool   *workerPool
	source *changeSource
	log    *logger

	mu    sync.Mutex
	tasks map[string]*ocrTask
}

func newScheduler(cfg *config, runner jobRunner, log *logger) *scheduler {
	return &scheduler{
		cfg:    cfg,
		runner: runner,
		pool:   newWorkerPool(cfg.Workers),
		log:    log,
		tasks:  make(map[string]*ocrTask),
	}
}

// start begins watching the input tree and routing its events here.
func (s *scheduler) start() error {
	src, err := newChangeSource(s.cfg.InputDir, s.cfg.Pattern, s, s.log.child("watch"))
	if err != nil {
		return fmt.Errorf("watching %s: %w", s.cfg.InputDir, err)
	}
	s.source = src
	s.log.infof("watching %s", s.cfg.InputDir)
	return nil
}

func (s *scheduler) fileTouched(path string) {
	s.mu.Lock()
	if t, ok := s.tasks[path]; ok && t.touch() {
		s.mu.Unlock()
		return
	}
	// Either no task exists for the path, or the one that does has already
	// finished and is about to leave the registry. Replace it; the stale
	// entry's completion callback recognizes it has been superseded.
	s.tasks[path] = newOcrTask(path, s.cfg.Delay, s.runner,
		s.pool.Submit, s.onTaskDone, s.log.child("task"))
	s.mu.Unlock()
}

func (s *scheduler) fileDeleted(path string) {
	s.mu.Lock()
	t := s.tasks[path]
	s.mu.Unlock()
	// cancel may finish the task synchronously, and finishing takes the
	// registry lock, so it must run outside it.
	if t != nil {
		t.cancel()
	}
}

func (s *scheduler) onTaskDone(t *ocrTask, err error) {
	if err != nil {
		s.log.errorf("processing %s: %v", t.path, err)
	}
	s.mu.Lock()
	if cur, ok := s.tasks[t.path]; ok && cur == t {
		delete(s.tasks, t.path)
	}
	s.mu.Unlock()
}

// shutdown stops event delivery, cancels every outstanding task, waits for
// in-flight jobs to run out, then releases the watcher. Cancellation works
// over a snapshot because finishing tasks mutate the registry concurrently.
func (s *scheduler) shutdown() {
	if s.source != nil {
		s.source.stop()
	}

	s.mu.Lock()
	snapshot := make([]*ocrTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		snapshot = append(snapshot, t)
	}
	s.mu.Unlock()

	s.log.debugf("canceling %d outstanding tasks", len(snapshot))
	for _, t := range snapshot {
		t.cancel()
	}

	s.log.debugf("draining worker pool")
	s.pool.Close()

	if s.source != nil {
		s.source.wait()
	}
}
