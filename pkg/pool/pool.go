// Package pool implements the fixed-size worker pool that drives
// concurrent dataset generation. All jobs are loaded before the workers
// start; workers drain the queue with non-blocking pops and exit once it
// is empty, so the pool winds down naturally as the last jobs are taken.
package pool

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/logforge/logforge/pkg/errors"
	"github.com/logforge/logforge/pkg/logging"
)

// Job is one pending generation task: a candidate process name that a
// single worker will consume exactly once.
type Job struct {
	ID   string
	Name string
}

// NewJob creates a job with a fresh unique id.
func NewJob(name string) Job {
	return Job{ID: uuid.NewString(), Name: name}
}

// Queue is a synchronized FIFO drained by concurrent workers.
type Queue struct {
	mu   sync.Mutex
	jobs []Job
}

// NewQueue builds a queue pre-loaded with jobs.
func NewQueue(jobs ...Job) *Queue {
	q := &Queue{}
	q.jobs = append(q.jobs, jobs...)
	return q
}

// Push appends a job. Safe for concurrent use, though the usual pattern
// loads the queue fully before the pool starts.
func (q *Queue) Push(j Job) {
	q.mu.Lock()
	q.jobs = append(q.jobs, j)
	q.mu.Unlock()
}

// TryPop removes and returns the next job without blocking. The second
// return is false when the queue is empty.
func (q *Queue) TryPop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return Job{}, false
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, true
}

// Len returns the number of jobs still queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Task runs one job's full pipeline. The worker id identifies the
// executing worker; implementations use it as the owner key for
// per-worker resources such as random streams and labeler connections.
type Task func(ctx context.Context, workerID int, job Job) error

// Result records the outcome of one job.
type Result struct {
	Job     Job
	Worker  int
	Err     error
	Elapsed time.Duration
}

// Pool drains a queue with a fixed number of workers. Every job runs
// inside a failure boundary: an error or panic is recorded against that
// job and logged, and the worker moves on to the next one.
type Pool struct {
	workers  int
	log      *slog.Logger
	onResult func(Result)

	mu      sync.Mutex
	results []Result
}

// New creates a pool. The worker count is clamped to at least one; a nil
// logger discards job outcomes.
func New(workers int, log *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Pool{workers: workers, log: log}
}

// OnResult registers a callback invoked after each job finishes, from
// the worker goroutine that ran it.
func (p *Pool) OnResult(fn func(Result)) *Pool {
	p.onResult = fn
	return p
}

// Run drains the queue and returns once every taken job has finished and
// all workers have exited. Task failures never abort the run; they are
// reported in the results. A canceled context stops workers from taking
// further jobs, but a job already started runs to completion.
func (p *Pool) Run(ctx context.Context, queue *Queue, task Task) []Result {
	p.log.Info("worker pool starting", "workers", p.workers, "jobs", queue.Len())

	g := new(errgroup.Group)
	for w := 0; w < p.workers; w++ {
		worker := w
		g.Go(func() error {
			for ctx.Err() == nil {
				job, ok := queue.TryPop()
				if !ok {
					return nil
				}
				p.record(p.execute(ctx, worker, job, task))
			}
			return nil
		})
	}
	g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

// execute runs one job inside the failure boundary.
func (p *Pool) execute(ctx context.Context, worker int, job Job, task Task) (res Result) {
	start := time.Now()
	res = Result{Job: job, Worker: worker}
	defer func() {
		res.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			res.Err = errors.PanicError(r).WithContext("job", job.Name)
		}
	}()
	res.Err = task(ctx, worker, job)
	return res
}

func (p *Pool) record(res Result) {
	if res.Err != nil {
		p.log.Error("job failed",
			"worker", res.Worker,
			"job", res.Job.Name,
			"elapsed", res.Elapsed.Round(time.Millisecond),
			"error", res.Err)
	} else {
		p.log.Info("job completed",
			"worker", res.Worker,
			"job", res.Job.Name,
			"elapsed", res.Elapsed.Round(time.Millisecond))
	}

	p.mu.Lock()
	p.results = append(p.results, res)
	p.mu.Unlock()

	if p.onResult != nil {
		p.onResult(res)
	}
}
