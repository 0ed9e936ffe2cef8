package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/tally/internal/domain/ingest"
	"github.com/okian/tally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// mutableCatalog is a Catalog whose definitions can change between calls.
type mutableCatalog struct {
	kpis []model.KPIDefinition
	err  error
}

func (m *mutableCatalog) KPIs(context.Context) ([]model.KPIDefinition, error) {
	return m.kpis, m.err
}

func TestValidator(t *testing.T) {
	ten := 10
	kpis := ingest.Static{
		{ID: "sales", Name: "Sales", Weight: 60, Target: 8, MaxPoints: &ten, Frequency: model.FrequencyMonthly},
		{ID: "grooming", Name: "Grooming", Weight: 40, Frequency: model.FrequencyDaily},
		{ID: "legacy", Name: "Legacy", Weight: 10, Frequency: model.FrequencyWeekly, IsDeleted: true},
	}
	event := func(kpi string, points float64) model.ScoreEvent {
		return model.ScoreEvent{
			ID: "e1", StaffID: "s1", KPIID: kpi, Points: points,
			EvaluatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		}
	}
	ctx := context.Background()

	Convey("Given a validator over a catalog", t, func() {
		v := ingest.NewValidator(kpis)

		Convey("Then a well-formed event for an active KPI passes", func() {
			So(v.Validate(ctx, event("sales", 8)), ShouldBeNil)
			So(v.Validate(ctx, event("grooming", 500)), ShouldBeNil)
		})

		Convey("Then points equal to the maximum pass", func() {
			So(v.Validate(ctx, event("sales", 10)), ShouldBeNil)
		})

		Convey("Then an unknown KPI is rejected", func() {
			So(errors.Is(v.Validate(ctx, event("nope", 1)), ingest.ErrUnknownKPI), ShouldBeTrue)
		})

		Convey("Then a soft-deleted KPI is rejected", func() {
			So(errors.Is(v.Validate(ctx, event("legacy", 1)), ingest.ErrKPIDeleted), ShouldBeTrue)
		})

		Convey("Then points above the maximum are rejected", func() {
			So(errors.Is(v.Validate(ctx, event("sales", 11)), ingest.ErrPointsExceedMax), ShouldBeTrue)
		})

		Convey("Then record errors come before catalog errors", func() {
			e := event("nope", 1)
			e.StaffID = ""
			err := v.Validate(ctx, e)
			So(errors.Is(err, model.ErrInvalidScoreEvent), ShouldBeTrue)
			So(errors.Is(err, ingest.ErrUnknownKPI), ShouldBeFalse)
		})
	})

	Convey("Given a catalog that changes after the validator is built", t, func() {
		catalog := &mutableCatalog{}
		v := ingest.NewValidator(catalog)
		So(errors.Is(v.Validate(ctx, event("sales", 1)), ingest.ErrUnknownKPI), ShouldBeTrue)

		Convey("When a KPI is added", func() {
			catalog.kpis = []model.KPIDefinition{{ID: "sales", Weight: 60, Frequency: model.FrequencyMonthly}}

			Convey("Then the next event for it passes", func() {
				So(v.Validate(ctx, event("sales", 1)), ShouldBeNil)
			})

			Convey("And once it is soft-deleted new events are rejected", func() {
				catalog.kpis[0].IsDeleted = true
				So(errors.Is(v.Validate(ctx, event("sales", 1)), ingest.ErrKPIDeleted), ShouldBeTrue)
			})
		})

		Convey("When the catalog cannot be read", func() {
			catalog.err = errors.New("connection refused")
			err := v.Validate(ctx, event("sales", 1))

			Convey("Then the event is rejected as catalog unavailable", func() {
				So(errors.Is(err, ingest.ErrCatalogUnavailable), ShouldBeTrue)
				So(ingest.Reason(err), ShouldEqual, "catalog_unavailable")
			})
		})
	})
}

func TestReason(t *testing.T) {
	Convey("Given rejection errors", t, func() {
		Convey("Then each maps to its metrics label", func() {
			So(ingest.Reason(ingest.ErrUnknownKPI), ShouldEqual, "unknown_kpi")
			So(ingest.Reason(ingest.ErrKPIDeleted), ShouldEqual, "kpi_deleted")
			So(ingest.Reason(ingest.ErrPointsExceedMax), ShouldEqual, "points_exceed_max")
			So(ingest.Reason(model.ErrInvalidScoreEvent), ShouldEqual, "invalid_event")
			So(ingest.Reason(errors.New("disk full")), ShouldEqual, "other")
		})
	})
}
