package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/tally/internal/adapters/mq/queue"
	"github.com/okian/tally/internal/adapters/mq/worker"
	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/ingest"
	"github.com/okian/tally/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

var kpis = ingest.Static{
	{ID: "sales", Weight: 60, Frequency: model.FrequencyMonthly},
	{ID: "old", Weight: 10, Frequency: model.FrequencyDaily, IsDeleted: true},
}

type failingCatalog struct{}

func (failingCatalog) KPIs(context.Context) ([]model.KPIDefinition, error) {
	return nil, errors.New("connection refused")
}

type rejects struct {
	mu   sync.Mutex
	ids  []string
	errs []error
}

func (r *rejects) record(_ context.Context, e model.ScoreEvent, err error) {
	r.mu.Lock()
	r.ids = append(r.ids, e.ID)
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *rejects) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func scoreEvent(id, kpi string) model.ScoreEvent {
	return model.ScoreEvent{ID: id, StaffID: "s1", KPIID: kpi, Points: 5, EvaluatedAt: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)}
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue, validator and store", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		store := repository.NewMemoryStore()
		rej := &rejects{}
		w := worker.New(worker.Deps{
			Queue:     q,
			Validator: ingest.NewValidator(kpis),
			Writer:    store,
			OnReject:  rej.record,
		}, worker.WithName("test-worker"))

		convey.Convey("When valid and invalid events are processed", func() {
			convey.So(q.Enqueue(ctx, scoreEvent("e1", "sales")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, scoreEvent("e2", "unknown")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, scoreEvent("e3", "old")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, scoreEvent("e1", "sales")), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)

			w.Run(ctx)

			convey.Convey("Then only the valid event is stored", func() {
				convey.So(store.EventCount(), convey.ShouldEqual, 1)
				convey.So(w.Processed(), convey.ShouldEqual, 1)
			})

			convey.Convey("And rejected events are reported, duplicates included", func() {
				convey.So(rej.list(), convey.ShouldResemble, []string{"e2", "e3", "e1"})
			})

			convey.Convey("And Done is closed", func() {
				select {
				case <-w.Done():
				default:
					t.Fatal("worker not done")
				}
			})
		})

		convey.Convey("When a KPI is added to the store after the worker starts", func() {
			store := repository.NewMemoryStore()
			w := worker.New(worker.Deps{
				Queue:     q,
				Validator: ingest.NewValidator(store),
				Writer:    store,
				OnReject:  rej.record,
			})
			convey.So(store.PutKPI(ctx, model.KPIDefinition{ID: "late", Weight: 5, Frequency: model.FrequencyDaily}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, scoreEvent("e1", "late")), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)
			w.Run(ctx)

			convey.Convey("Then its events are accepted", func() {
				convey.So(store.EventCount(), convey.ShouldEqual, 1)
				convey.So(rej.list(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the catalog cannot be read", func() {
			w := worker.New(worker.Deps{
				Queue:     q,
				Validator: ingest.NewValidator(failingCatalog{}),
				Writer:    store,
				OnReject:  rej.record,
			})
			convey.So(q.Enqueue(ctx, scoreEvent("e1", "sales")), convey.ShouldBeNil)
			convey.So(q.Close(), convey.ShouldBeNil)
			w.Run(ctx)

			convey.Convey("Then the event is rejected and not stored", func() {
				convey.So(store.EventCount(), convey.ShouldEqual, 0)
				convey.So(rej.list(), convey.ShouldResemble, []string{"e1"})
				convey.So(errors.Is(rej.errs[0], ingest.ErrCatalogUnavailable), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			w.Run(cctx)

			convey.Convey("Then the worker returns without processing", func() {
				convey.So(w.Processed(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(200))
		store := repository.NewMemoryStore()
		pool := worker.NewPool(3, worker.Deps{
			Queue:     q,
			Validator: ingest.NewValidator(kpis),
			Writer:    store,
		})
		convey.So(pool.Size(), convey.ShouldEqual, 3)
		pool.Start(ctx)

		convey.Convey("When events are submitted and the pool shuts down", func() {
			for i := 0; i < 100; i++ {
				convey.So(q.Enqueue(ctx, scoreEvent(time.Duration(i).String(), "sales")), convey.ShouldBeNil)
			}
			sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			err := pool.Shutdown(sctx)

			convey.Convey("Then every queued event is drained", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.EventCount(), convey.ShouldEqual, 100)
				convey.So(pool.Processed(), convey.ShouldEqual, 100)
			})

			convey.Convey("And a second shutdown is a no-op", func() {
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a pool created with a non-positive count", t, func() {
		pool := worker.NewPool(0, worker.Deps{Queue: queue.NewInMemoryQueue()})

		convey.Convey("Then it sizes itself from the CPU count", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
