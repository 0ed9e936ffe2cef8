// Package service wires the scoring engine to its repository and the
// ingestion pipeline, and implements the queries served by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/tally/internal/adapters/mq/queue"
	workerpool "github.com/okian/tally/internal/adapters/mq/worker"
	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/attendance"
	"github.com/okian/tally/internal/domain/dedupe"
	"github.com/okian/tally/internal/domain/ingest"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/ranking"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// Defaults used when no option overrides them.
const (
	defaultQueueSize        = 10000
	defaultDedupeSize       = 50000
	defaultBoardConcurrency = 8
	defaultMaxLimit         = 500
	shutdownTimeout         = 30 * time.Second
)

// Service implements the dependencies of the HTTP API.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	validator *ingest.Validator
	deduper   dedupe.Deduper
	queue     *eventqueue.InMemoryQueue
	pool      *workerpool.Pool

	workerCount      int
	queueSize        int
	dedupeSize       int
	boardConcurrency int
	maxLimit         int
	halfDayWeight    float64
	strictCatalog    bool
	tieBreak         string
	now              func() time.Time

	started bool
	cancel  context.CancelFunc

	accepted   atomic.Int64
	duplicates atomic.Int64
	rejected   atomic.Int64

	logger logger.Logger
}

// New constructs a Service. Without WithStore it uses an empty MemoryStore.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        defaultQueueSize,
		dedupeSize:       defaultDedupeSize,
		boardConcurrency: defaultBoardConcurrency,
		maxLimit:         defaultMaxLimit,
		halfDayWeight:    attendance.DefaultHalfDayWeight,
		tieBreak:         ranking.TieBreakStable,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Start checks that the KPI catalog is readable and starts the ingestion
// workers. New events are validated against the store's catalog as it is
// at submission and again when a worker picks them up.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting scoring service...")

	kpis, err := s.store.KPIs(ctx)
	if err != nil {
		return fmt.Errorf("load kpi catalog: %w", err)
	}
	s.validator = ingest.NewValidator(s.store)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, workerpool.Deps{
		Queue:     s.queue,
		Validator: s.validator,
		Writer:    s.store,
		OnReject:  s.onReject,
	})

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("kpis", len(kpis)),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Bool("strictCatalog", s.strictCatalog),
	)
	return nil
}

// Stop drains the ingestion queue and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping scoring service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.cancel()
	s.started = false
	s.logger.Info(ctx, "scoring service stopped")
}

// Submit validates e, assigns an id when missing, and queues it for
// ingestion. A previously seen id returns ErrDuplicate.
func (s *Service) Submit(ctx context.Context, e model.ScoreEvent) (model.ScoreEvent, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return e, ErrNotStarted
	}

	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return e, fmt.Errorf("generate event id: %w", err)
		}
		e.ID = id.String()
	}
	e.EvaluatedAt = e.EvaluatedAt.UTC()

	if err := s.validator.Validate(ctx, e); err != nil {
		s.rejected.Add(1)
		metrics.RecordEventRejected(ingest.Reason(err))
		return e, err
	}

	if s.deduper.SeenAndRecord(ctx, e.ID) {
		s.duplicates.Add(1)
		metrics.RecordEventDuplicate()
		return e, fmt.Errorf("%w: %s", ErrDuplicate, e.ID)
	}

	if err := s.queue.Enqueue(ctx, e); err != nil {
		s.deduper.Unrecord(ctx, e.ID)
		return e, err
	}
	s.accepted.Add(1)
	metrics.RecordEventIngested()
	return e, nil
}

// onReject forgets ids of events the workers refused so a corrected
// resubmission is accepted. Store-level duplicates stay recorded.
func (s *Service) onReject(ctx context.Context, e model.ScoreEvent, err error) {
	s.rejected.Add(1)
	if errors.Is(err, repository.ErrDuplicateEvent) {
		return
	}
	s.deduper.Unrecord(ctx, e.ID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"strictCatalog":  s.strictCatalog,
		"halfDayWeight":  s.halfDayWeight,
		"tieBreak":       s.tieBreak,
		"acceptedEvents": s.accepted.Load(),
		"duplicates":     s.duplicates.Load(),
		"rejected":       s.rejected.Load(),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["dedupeEntries"] = s.deduper.Size()
		stats["processedEvents"] = s.pool.Processed()
	}
	return stats
}
