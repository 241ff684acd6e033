package main

import (
	"sync"
	"time"
)

type taskState int

const (
	taskNew taskState = iota
	taskQueued
	taskSleeping
	taskActive
	taskDone
)

func (s taskState) String() string {
	switch s {
	case taskNew:
		return "NEW"
	case taskQueued:
		return "QUEUED"
	case taskSleeping:
		return "SLEEPING"
	case taskActive:
		return "ACTIVE"
	case taskDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// jobRunner executes the external processing command for one input file.
// It blocks for the duration of the run.
type jobRunner interface {
	run(path string) error
}

// ocrTask owns the debounce window and job invocation for a single path.
// A task is born on the first touch of its path, absorbs further touches by
// pushing its deadline out, and dies exactly once through its completion
// callback, whether it ran, re-ran, or was canceled.
//
// state and lastTouch are written both from the event-delivery goroutine
// (touch, cancel) and from the pool worker running process; mu covers every
// access. The completion callback is always invoked with mu released.
type ocrTask struct {
	path   string
	delay  time.Duration
	runner jobRunner
	submit func(func()) *poolJob
	onDone func(*ocrTask, error)
	log    *logger

	mu        sync.Mutex
	state     taskState
	lastTouch time.Time // zero means no unconsumed modification
	handle    *poolJob
}

func newOcrTask(path string, delay time.Duration, runner jobRunner,
	submit func(func()) *poolJob, onDone func(*ocrTask, error), log *logger) *ocrTask {
	t := &ocrTask{
		path:   path,
		delay:  delay,
		runner: runner,
		submit: submit,
		onDone: onDone,
		log:    log,
		state:  taskNew,
	}
	t.touch()
	return t
}

// touch records a modification now. The first touch enqueues the task; later
// ones only move the deadline, which the worker notices at its next poll.
// It reports false if the task already finished and cannot accept touches;
// the caller must then start a fresh task for the path.
func (t *ocrTask) touch() bool {
	t.mu.Lock()
	if t.state == taskDone {
		t.mu.Unlock()
		return false
	}
	t.log.debugf("touched [%s] %s", t.state, t.path)
	t.lastTouch = time.Now()
	if t.state == taskNew {
		t.enqueueLocked()
	}
	t.mu.Unlock()
	return true
}

// enqueueLocked submits process to the pool. Caller holds mu; valid only
// from NEW or ACTIVE.
func (t *ocrTask) enqueueLocked() {
	t.state = taskQueued
	t.log.debugf("enqueued [%s] %s", t.state, t.path)
	t.handle = t.submit(t.process)
}

// cancel clears the pending modification so the task winds down instead of
// running. A QUEUED task whose pool handle is successfully canceled finishes
// immediately; a SLEEPING or ACTIVE one notices the cleared timestamp at its
// next poll point and finishes then.
func (t *ocrTask) cancel() {
	t.mu.Lock()
	t.log.debugf("canceled [%s] %s", t.state, t.path)
	t.lastTouch = time.Time{}
	if t.state == taskQueued && t.handle != nil && t.handle.Cancel() {
		t.finishLocked(nil)
		return
	}
	t.mu.Unlock()
}

// finishLocked completes the DONE transition. The caller holds mu; the lock
// is released before the completion callback runs so the callback can take
// the registry lock without inverting lock order. Making the transition in
// the same critical section as the deciding check means a touch can only
// land before it (and be consumed) or after it (and see DONE).
func (t *ocrTask) finishLocked(err error) {
	t.state = taskDone
	t.mu.Unlock()
	t.log.debugf("done %s", t.path)
	if t.onDone != nil {
		t.onDone(t, err)
	}
}

// process is the job body, run on a pool worker. It sleeps out the
// coalescing window, re-evaluating after every wake because a concurrent
// touch pushes the deadline further out, then runs the job. A touch that
// lands while the job is executing re-enqueues the task for exactly one
// follow-up run instead of finishing it.
func (t *ocrTask) process() {
	for {
		t.mu.Lock()
		if t.lastTouch.IsZero() {
			t.log.infof("processing canceled: %s", t.path)
			t.finishLocked(nil)
			return
		}
		wait := time.Until(t.lastTouch.Add(t.delay))
		if wait <= 0 {
			t.state = taskActive
			t.lastTouch = time.Time{}
			t.mu.Unlock()
			break
		}
		t.state = taskSleeping
		t.mu.Unlock()
		t.log.debugf("sleeping %v: %s", wait, t.path)
		time.Sleep(wait)
	}

	t.log.infof("processing: %s", t.path)
	start := time.Now()
	err := t.runner.run(t.path)
	t.log.infof("processing finished in %v: %s", time.Since(start).Round(time.Millisecond), t.path)

	t.mu.Lock()
	if !t.lastTouch.IsZero() {
		t.log.infof("modified during processing, queueing again: %s", t.path)
		t.enqueueLocked()
		t.mu.Unlock()
		return
	}
	t.finishLocked(err)
}
