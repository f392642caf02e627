package scan

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/michaelscutari/lsp/internal/entry"
)

// ErrInvalidPoolSize is returned by NewPool for a non-positive worker count.
var ErrInvalidPoolSize = errors.New("invalid pool size")

// Pool is a fixed set of workers resolving jobs into a pre-allocated result
// slice. A pool serves a single listing and is destroyed afterwards.
type Pool struct {
	queue     *Queue
	results   []*entry.Entry
	size      int
	completed int64
	wg        sync.WaitGroup
	closeOnce sync.Once
	logf      Logf
}

// NewPool starts n workers. Each job's result is written to results[job.Slot].
func NewPool(n int, results []*entry.Entry, resolve ResolveFunc, logf Logf) (*Pool, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPoolSize, n)
	}
	if resolve == nil {
		return nil, errors.New("pool requires a resolve function")
	}
	if logf == nil {
		logf = nopLogf
	}

	p := &Pool{
		queue:   NewQueue(),
		results: results,
		size:    n,
		logf:    logf,
	}
	for i := 0; i < n; i++ {
		w := NewWorker(i, p.queue, results, resolve, &p.completed, logf)
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run()
		}(w)
	}
	p.logf("[POOL] STARTED workers=%d slots=%d", n, len(results))
	return p, nil
}

// AddTask enqueues one job.
func (p *Pool) AddTask(job Job) error {
	if job.Slot < 0 || job.Slot >= len(p.results) {
		return fmt.Errorf("slot %d out of range [0,%d)", job.Slot, len(p.results))
	}
	return p.queue.Push(job)
}

// Wait blocks until every submitted job has completed.
func (p *Pool) Wait() {
	p.queue.WaitIdle()
}

// Destroy stops and joins all workers. Jobs still queued are drained first.
// Calling Destroy more than once is a no-op.
func (p *Pool) Destroy() {
	p.closeOnce.Do(func() {
		p.queue.Shutdown()
		p.wg.Wait()
		p.logf("[POOL] DESTROYED completed=%d", atomic.LoadInt64(&p.completed))
	})
}

// Size returns the worker count.
func (p *Pool) Size() int {
	return p.size
}

// Completed returns the number of jobs that have finished, successful or not.
func (p *Pool) Completed() int64 {
	return atomic.LoadInt64(&p.completed)
}
