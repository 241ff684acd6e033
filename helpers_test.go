package main

import (
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *logger {
	return newLogger(logError, io.Discard)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// fakeRunner counts invocations and records their times. An optional block
// duration simulates a slow external command.
type fakeRunner struct {
	block time.Duration
	err   error

	runs atomic.Int32
	mu   sync.Mutex
	at   []time.Time
}

func (r *fakeRunner) run(path string) error {
	r.mu.Lock()
	r.at = append(r.at, time.Now())
	r.mu.Unlock()
	r.runs.Add(1)
	if r.block > 0 {
		time.Sleep(r.block)
	}
	return r.err
}

func (r *fakeRunner) runTimes() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.at...)
}
