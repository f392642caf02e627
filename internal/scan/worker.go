package scan

import (
	"sync/atomic"

	"github.com/michaelscutari/lsp/internal/entry"
)

// ResolveFunc turns one job into an entry record. A returned error leaves
// the job's slot empty.
type ResolveFunc func(job Job) (*entry.Entry, error)

// Worker drains the queue and writes each result into its job's slot.
type Worker struct {
	id        int
	queue     *Queue
	results   []*entry.Entry
	resolve   ResolveFunc
	completed *int64
	logf      Logf
}

// NewWorker creates a new worker.
func NewWorker(id int, queue *Queue, results []*entry.Entry, resolve ResolveFunc, completed *int64, logf Logf) *Worker {
	return &Worker{
		id:        id,
		queue:     queue,
		results:   results,
		resolve:   resolve,
		completed: completed,
		logf:      logf,
	}
}

// Run processes jobs until the queue is shut down and empty.
func (w *Worker) Run() {
	w.logf("[W%d] STARTED queueLen=%d", w.id, w.queue.Len())
	for {
		job, ok := w.queue.Pop()
		if !ok {
			w.logf("[W%d] EXITING completed=%d", w.id, atomic.LoadInt64(w.completed))
			return
		}
		w.process(job)
	}
}

func (w *Worker) process(job Job) {
	defer w.queue.Done()
	defer atomic.AddInt64(w.completed, 1)

	e, err := w.resolve(job)
	if err != nil {
		w.logf("[W%d] RESOLVE-ERR slot=%d name=%s err=%v", w.id, job.Slot, job.Name, err)
		return
	}
	// Slot ownership is exclusive to this job.
	w.results[job.Slot] = e
}
