package scan

import (
	"errors"
	"sync"
)

// ErrQueueClosed is returned when a job is pushed after Shutdown.
var ErrQueueClosed = errors.New("queue is shut down")

// Job resolves one named entry into a pre-assigned result slot.
type Job struct {
	Dir     *Dir
	DirPath string
	Name    string
	Slot    int
}

// Queue is a FIFO of pending jobs with blocking dequeue.
//
// The pending counter covers both queued and in-flight jobs. It is updated
// under the same lock as the backlog so WaitIdle never misses the transition
// to idle.
type Queue struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	idle     *sync.Cond
	jobs     []Job
	head     int
	pending  int
	shutdown bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.nonEmpty = sync.NewCond(&q.mu)
	q.idle = sync.NewCond(&q.mu)
	return q
}

// Push appends a job and wakes one blocked consumer.
func (q *Queue) Push(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shutdown {
		return ErrQueueClosed
	}
	q.jobs = append(q.jobs, job)
	q.pending++
	q.nonEmpty.Signal()
	return nil
}

// Pop blocks until a job is available. It returns false once the queue has
// been shut down and drained.
func (q *Queue) Pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.len() == 0 && !q.shutdown {
		q.nonEmpty.Wait()
	}
	if q.len() == 0 {
		return Job{}, false
	}

	job := q.jobs[q.head]
	q.jobs[q.head] = Job{}
	q.head++
	if q.head == len(q.jobs) {
		q.jobs = q.jobs[:0]
		q.head = 0
	}
	return job, true
}

// Done marks one popped job as finished.
func (q *Queue) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending--
	if q.pending == 0 && q.len() == 0 {
		q.idle.Broadcast()
	}
}

// WaitIdle blocks until no job is queued or in flight.
func (q *Queue) WaitIdle() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.pending > 0 || q.len() > 0 {
		q.idle.Wait()
	}
}

// Shutdown wakes every blocked consumer. Jobs already queued are still
// handed out by Pop.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.shutdown = true
	q.nonEmpty.Broadcast()
}

// Len returns the number of queued jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.len()
}

// Pending returns the number of queued plus in-flight jobs.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

func (q *Queue) len() int {
	return len(q.jobs) - q.head
}
