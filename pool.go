package main

import (
	"sync"
	"sync/atomic"
)

const (
	jobPending int32 = iota
	jobRunning
	jobCanceled
)

// poolJob is the handle returned by Submit. A job moves pending→running when
// a worker picks it up, or pending→canceled if Cancel wins the race first;
// the two transitions are a single compare-and-swap apart, so exactly one of
// them happens.
type poolJob struct {
	fn    func()
	state atomic.Int32
}

// Cancel prevents the job from running. It reports whether it succeeded;
// false means a worker already started the job.
func (j *poolJob) Cancel() bool {
	return j.state.CompareAndSwap(jobPending, jobCanceled)
}

func (j *poolJob) start() bool {
	return j.state.CompareAndSwap(jobPending, jobRunning)
}

// workerPool runs submitted jobs on a fixed number of workers. The queue is
// unbounded so submitters never block.
type workerPool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*poolJob
	closed bool
	wg     sync.WaitGroup
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	p := &workerPool{}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		j := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		if j.start() {
			j.fn()
		}
	}
}

// Submit queues fn and returns its cancellation handle. After Close the
// handle comes back already canceled and fn never runs.
func (p *workerPool) Submit(fn func()) *poolJob {
	j := &poolJob{fn: fn}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		j.Cancel()
		return j
	}
	p.queue = append(p.queue, j)
	p.cond.Signal()
	p.mu.Unlock()
	return j
}

// Close stops accepting new work and blocks until every queued job has been
// drained (canceled ones are skipped) and every running job has finished.
func (p *workerPool) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}
