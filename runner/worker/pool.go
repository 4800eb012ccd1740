// Package worker provides an asynchronous worker pool for recording finished
// agent runs with the provided storage.Driver and announcing them on the
// provided eventstream.Publisher.
//
// Persistence runs off the goroutine that prints answers.
package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/tabagent/pkg/eventstream"
	"github.com/papercomputeco/tabagent/pkg/storage"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 64
	defaultJobTimeout        = 30 * time.Second
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Run *storage.Run
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting runs.
	Driver storage.Driver

	// Publisher optionally announces every stored run.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	// JobTimeout bounds storing and publishing a single run (defaults to 30s).
	JobTimeout time.Duration

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool processes recording jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, errors.New("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full or the pool is
// closed, resulting in the job being dropped.
func (p *Pool) Enqueue(job Job) bool {
	if job.Run == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("job not queued, pool closed", zap.String("run_id", job.Run.ID))
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued", zap.String("run_id", job.Run.ID))
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.String("run_id", job.Run.ID),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Close is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("recording worker stopped", zap.Uint("worker_id", id))
}

// processJob stores the run and, once stored, publishes its completion
// event. A run that fails to store is never published.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	run := job.Run
	if err := p.config.Driver.Put(ctx, run); err != nil {
		p.logger.Error("async run storage failed",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("run stored",
		zap.String("run_id", run.ID),
		zap.Bool("failed", run.Failed()),
		zap.Int("deltas", run.Stats.Deltas),
	)

	if p.config.Publisher == nil {
		return
	}

	event := eventstream.NewRunCompletedEvent(run)
	if err := p.config.Publisher.PublishRun(ctx, event); err != nil {
		p.logger.Warn("failed to publish run event",
			zap.String("run_id", run.ID),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("published run event",
		zap.String("run_id", run.ID),
		zap.String("event_id", event.EventID),
	)
}
