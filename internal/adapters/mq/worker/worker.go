// Package worker drains the ingestion queue: each event is checked against
// the current KPI catalog and stored.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tally/internal/domain/ingest"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2
	metricsUpdateInterval   = 5 * time.Second
)

// Queue is where workers read events from.
type Queue interface {
	Dequeue() <-chan model.ScoreEvent
}

// Validator checks an event against the KPI catalog.
type Validator interface {
	Validate(ctx context.Context, e model.ScoreEvent) error
}

// Writer stores accepted events.
type Writer interface {
	AppendScoreEvent(ctx context.Context, e model.ScoreEvent) error
}

// RejectFunc is called when an event fails validation or storage.
type RejectFunc func(ctx context.Context, e model.ScoreEvent, err error)

// Deps groups what a worker needs to process events.
type Deps struct {
	Queue     Queue
	Validator Validator
	Writer    Writer
	OnReject  RejectFunc // optional
}

// Worker processes events until its queue closes or ctx is done.
type Worker struct {
	deps   Deps
	name   string
	logger logger.Logger

	processed *atomic.Int64
	done      chan struct{}
}

// New creates a worker.
func New(deps Deps, opts ...Option) *Worker {
	w := &Worker{
		deps:      deps,
		name:      "worker",
		logger:    logger.Get().Named("worker"),
		processed: &atomic.Int64{},
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes events until the queue is closed and drained or ctx ends.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.deps.Queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, e); err != nil {
				w.logger.Warn(ctx, "score event rejected",
					logger.String("event_id", e.ID),
					logger.String("staff_id", e.StaffID),
					logger.Error(err),
				)
			}
		}
	}
}

// Done is closed when Run returns.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Processed returns how many events this worker stored.
func (w *Worker) Processed() int64 { return w.processed.Load() }

func (w *Worker) process(ctx context.Context, e model.ScoreEvent) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.deps.Validator.Validate(ctx, e); err != nil {
		metrics.RecordEventRejected(ingest.Reason(err))
		w.reject(ctx, e, err)
		return err
	}

	if err := w.deps.Writer.AppendScoreEvent(ctx, e); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "write_error")
		w.reject(ctx, e, err)
		return fmt.Errorf("store event %s: %w", e.ID, err)
	}
	w.processed.Add(1)
	metrics.RecordEventProcessed()
	w.logger.Debug(ctx, "score event stored",
		logger.String("event_id", e.ID),
		logger.String("staff_id", e.StaffID),
		logger.String("kpi_id", e.KPIID),
	)
	return nil
}

func (w *Worker) reject(ctx context.Context, e model.ScoreEvent, err error) {
	if w.deps.OnReject != nil {
		w.deps.OnReject(ctx, e, err)
	}
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	closer  interface{ Close() error }
	logger  logger.Logger

	stopMetrics chan struct{}
	wg          sync.WaitGroup
	once        sync.Once
}

// NewPool creates count workers. A count below one uses twice the CPU count.
func NewPool(count int, deps Deps) *Pool {
	if count < 1 {
		count = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers:     make([]*Worker, count),
		logger:      logger.Get().Named("worker-pool"),
		stopMetrics: make(chan struct{}),
	}
	if c, ok := deps.Queue.(interface{ Close() error }); ok {
		p.closer = c
	}
	for i := range p.workers {
		p.workers[i] = New(deps, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerActiveCount(count)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the events stored by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Start launches the workers and the throughput gauge updater.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
	go p.updateThroughput(ctx)
}

func (p *Pool) updateThroughput(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	last, lastAt := p.Processed(), time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopMetrics:
			return
		case now := <-ticker.C:
			cur := p.Processed()
			if secs := now.Sub(lastAt).Seconds(); secs > 0 {
				metrics.UpdateWorkerMessagesPerSecond(float64(cur-last) / secs)
			}
			last, lastAt = cur, now
		}
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		close(p.stopMetrics)
		if p.closer != nil {
			if cerr := p.closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}

		drained := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker pool shutdown timed out")
			err = fmt.Errorf("worker pool shutdown: %w", ctx.Err())
		}
		metrics.UpdateWorkerActiveCount(0)
	})
	return err
}
