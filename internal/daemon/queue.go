package daemon

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/logfields"
	"git.home.luguber.info/inful/blogpub/internal/metrics"
	"git.home.luguber.info/inful/blogpub/internal/publish"
)

// ErrQueueFull is returned by Enqueue when the bounded queue cannot accept
// another job. The webhook surfaces it as 409.
var ErrQueueFull = stdErrors.New("publish queue is full")

// JobStatus represents the current status of a publish job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job represents one queued publish request.
type Job struct {
	ID        string          `json:"id"`
	Trigger   publish.Trigger `json:"trigger"`
	Message   string          `json:"message,omitempty"`
	Status    JobStatus       `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	StartedAt *time.Time      `json:"started_at,omitempty"`
}

// Runner executes one publish attempt. publish.Publisher satisfies it.
type Runner interface {
	Run(ctx context.Context, opts publish.Options) (*publish.Report, error)
}

// Queue serializes publish jobs. It runs exactly one worker: a repository
// tolerates only one publish at a time, so the worker count is not
// configurable.
type Queue struct {
	jobs     chan *Job
	maxSize  int
	mu       sync.RWMutex
	current  *Job
	last     *publish.Report
	stopChan chan struct{}
	wg       sync.WaitGroup
	runner   Runner
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewQueue creates a bounded publish queue draining into runner.
func NewQueue(maxSize int, runner Runner) *Queue {
	if maxSize <= 0 {
		maxSize = 16
	}
	if runner == nil {
		panic("NewQueue: runner is required")
	}

	return &Queue{
		jobs:     make(chan *Job, maxSize),
		maxSize:  maxSize,
		stopChan: make(chan struct{}),
		runner:   runner,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
}

// SetRecorder injects a metrics recorder (optional).
func (q *Queue) SetRecorder(r metrics.Recorder) {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	q.recorder = r
}

// SetLogger injects a logger (optional).
func (q *Queue) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	q.logger = l
}

// Start begins draining the queue with the single worker.
func (q *Queue) Start(ctx context.Context) {
	q.logger.Info("Starting publish queue", slog.Int("max_size", q.maxSize))
	q.wg.Add(1)
	go q.worker(ctx)
}

// Stop shuts the queue down. The in-flight publish, if any, runs to
// completion; queued jobs are dropped.
func (q *Queue) Stop() {
	close(q.stopChan)
	q.wg.Wait()
}

// Enqueue adds a job without blocking. A full queue returns ErrQueueFull.
func (q *Queue) Enqueue(job *Job) error {
	if job == nil {
		return stdErrors.New("job cannot be nil")
	}
	if job.ID == "" {
		return stdErrors.New("job ID is required")
	}

	job.Status = JobStatusQueued

	select {
	case q.jobs <- job:
		q.recorder.SetQueueDepth(len(q.jobs))
		return nil
	default:
		return ErrQueueFull
	}
}

// Length returns the number of queued jobs, excluding the running one.
func (q *Queue) Length() int {
	return len(q.jobs)
}

// Capacity returns the queue bound.
func (q *Queue) Capacity() int {
	return q.maxSize
}

// Current returns a copy of the running job, or nil when idle.
func (q *Queue) Current() *Job {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.current == nil {
		return nil
	}
	cp := *q.current
	return &cp
}

// LastReport returns the report of the most recently finished publish.
func (q *Queue) LastReport() *publish.Report {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.last
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.stopChan:
			return
		case job := <-q.jobs:
			if job != nil {
				q.processJob(ctx, job)
			}
		}
	}
}

func (q *Queue) processJob(ctx context.Context, job *Job) {
	started := time.Now()
	q.mu.Lock()
	job.StartedAt = &started
	job.Status = JobStatusRunning
	q.current = job
	q.mu.Unlock()
	q.recorder.SetQueueDepth(len(q.jobs))

	q.logger.Debug("Dequeued publish job",
		slog.String("job_id", job.ID),
		logfields.Trigger(string(job.Trigger)))

	report, err := q.runner.Run(ctx, publish.Options{Message: job.Message, Trigger: job.Trigger})

	q.mu.Lock()
	if err != nil {
		job.Status = JobStatusFailed
	} else {
		job.Status = JobStatusCompleted
	}
	q.current = nil
	q.last = report
	q.mu.Unlock()

	// The publisher already logged the attempt; the queue only notes the
	// job lifecycle.
	if err != nil {
		q.logger.Warn("Publish job failed", slog.String("job_id", job.ID), logfields.Error(err))
	}
}
