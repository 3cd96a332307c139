package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// ErrQueueFull is returned by SubmitJob when the job queue has no room.
	ErrQueueFull = errors.New("job queue full")
	// ErrStopped is returned by SubmitJob after Stop was called.
	ErrStopped = errors.New("dispatcher stopped")
)

// Job represents a unit of work to be executed.
type Job interface {
	Execute(ctx context.Context) error
	ID() string
}

// Result reports the outcome of one job.
type Result struct {
	JobID string
	Err   error
}

// Worker is responsible for processing jobs.
// It runs in its own goroutine and receives jobs on a dedicated channel.
type Worker struct {
	ID         int
	WorkerPool chan chan Job // used to register this worker's job channel
	JobChannel chan Job
	d          *Dispatcher
}

// NewWorker creates a new Worker owned by d.
func NewWorker(id int, d *Dispatcher) Worker {
	return Worker{
		ID:         id,
		WorkerPool: d.WorkerPool,
		JobChannel: make(chan Job),
		d:          d,
	}
}

// Start makes the Worker listen for jobs on its JobChannel.
func (w Worker) Start(ctx context.Context) {
	w.d.wg.Add(1)
	go func() {
		defer w.d.wg.Done()
		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-w.d.quit:
				return
			}

			select {
			case job := <-w.JobChannel:
				w.run(ctx, job)
			case <-w.d.quit:
				return
			}
		}
	}()
}

func (w Worker) run(ctx context.Context, job Job) {
	defer w.d.pending.Done()

	entry := w.d.log.WithFields(logrus.Fields{"worker": w.ID, "job_id": job.ID()})
	entry.Debug("Started job")
	err := job.Execute(ctx)
	if err != nil {
		entry.WithError(err).Warn("Job failed")
	} else {
		entry.Debug("Finished job")
	}
	w.d.Results <- Result{JobID: job.ID(), Err: err}
}

// Dispatcher manages a pool of workers and dispatches jobs to them.
// Results must be consumed; a worker blocks until its result is read.
type Dispatcher struct {
	MaxWorkers int
	WorkerPool chan chan Job // A pool of worker job channels
	JobQueue   chan Job      // A buffered channel for incoming jobs
	Results    chan Result   // Closed by Stop once every job has reported
	Workers    []Worker

	log     *logrus.Logger
	wg      sync.WaitGroup // running workers
	pending sync.WaitGroup // submitted jobs without a delivered result
	mu      sync.Mutex
	stopped bool
	quit    chan struct{}
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(maxWorkers, jobQueueSize int, log *logrus.Logger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if jobQueueSize < 1 {
		jobQueueSize = 1
	}
	return &Dispatcher{
		MaxWorkers: maxWorkers,
		WorkerPool: make(chan chan Job, maxWorkers),
		JobQueue:   make(chan Job, jobQueueSize),
		Results:    make(chan Result),
		Workers:    make([]Worker, 0, maxWorkers),
		log:        log,
		quit:       make(chan struct{}),
	}
}

// Run starts the dispatcher and its workers. Jobs receive ctx.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.WithField("workers", d.MaxWorkers).Debug("Dispatcher starting")
	for i := 1; i <= d.MaxWorkers; i++ {
		worker := NewWorker(i, d)
		d.Workers = append(d.Workers, worker)
		worker.Start(ctx)
	}

	go d.dispatch()
}

// dispatch hands queued jobs to free workers in submission order.
func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.JobQueue:
			select {
			case jobChannel := <-d.WorkerPool:
				jobChannel <- job
			case <-d.quit:
				return
			}
		case <-d.quit:
			return
		}
	}
}

// SubmitJob adds a job to the job queue without blocking.
func (d *Dispatcher) SubmitJob(job Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrStopped
	}

	d.pending.Add(1)
	select {
	case d.JobQueue <- job:
		d.log.WithField("job_id", job.ID()).Debug("Job submitted")
		return nil
	default:
		d.pending.Done()
		return fmt.Errorf("%w: job %s", ErrQueueFull, job.ID())
	}
}

// Stop refuses new jobs, waits until every submitted job has delivered its
// result, then stops the workers and closes Results.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	d.pending.Wait()
	close(d.quit)
	d.wg.Wait()
	close(d.Results)
	d.log.Debug("Dispatcher shutdown complete")
}
