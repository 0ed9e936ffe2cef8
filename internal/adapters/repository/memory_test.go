package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	march, april := day(2025, 3, 1), day(2025, 4, 1)

	Convey("Given a memory store with two staff and a catalog", t, func() {
		s := repository.NewMemoryStore(
			repository.WithStaff(
				model.Staff{ID: "s2", DisplayName: "Bea"},
				model.Staff{ID: "s1", DisplayName: "Ari"},
			),
			repository.WithKPIs(
				model.KPIDefinition{ID: "sales", Weight: 60, Frequency: model.FrequencyMonthly},
				model.KPIDefinition{ID: "old", Weight: 10, Frequency: model.FrequencyDaily, IsDeleted: true},
			),
		)

		Convey("Then staff and KPIs list in id order, deleted KPIs included", func() {
			staff, err := s.Staff(ctx)
			So(err, ShouldBeNil)
			So(staff[0].ID, ShouldEqual, "s1")
			kpis, err := s.KPIs(ctx)
			So(err, ShouldBeNil)
			So(len(kpis), ShouldEqual, 2)
			So(kpis[0].ID, ShouldEqual, "old")
		})

		Convey("Then an unknown staff member is not found", func() {
			_, err := s.StaffMember(ctx, "ghost")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When score events are appended", func() {
			So(s.AppendScoreEvent(ctx, model.ScoreEvent{ID: "e1", StaffID: "s1", KPIID: "sales", Points: 4, EvaluatedAt: day(2025, 3, 5)}), ShouldBeNil)
			So(s.AppendScoreEvent(ctx, model.ScoreEvent{ID: "e2", StaffID: "s1", KPIID: "sales", Points: 6, EvaluatedAt: day(2025, 4, 1)}), ShouldBeNil)

			Convey("Then range queries are half-open", func() {
				got, err := s.ScoreEvents(ctx, "s1", march, april)
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(got[0].ID, ShouldEqual, "e1")
			})

			Convey("Then a repeated id is rejected", func() {
				err := s.AppendScoreEvent(ctx, model.ScoreEvent{ID: "e1", StaffID: "s2"})
				So(errors.Is(err, repository.ErrDuplicateEvent), ShouldBeTrue)
				So(s.EventCount(), ShouldEqual, 2)
			})

			Convey("Then an inverted range is rejected", func() {
				_, err := s.ScoreEvents(ctx, "s1", april, march)
				So(errors.Is(err, repository.ErrInvalidRange), ShouldBeTrue)
			})
		})

		Convey("When sales and events are recorded", func() {
			So(s.AppendSale(ctx, model.Sale{ID: "x1", StaffID: "s1", Qty: 3, Profit: 12.5, SoldAt: day(2025, 3, 2)}), ShouldBeNil)
			So(s.AppendSale(ctx, model.Sale{ID: "x2", StaffID: "s1", Qty: 2, Profit: 7.5, SoldAt: day(2025, 3, 20)}), ShouldBeNil)
			So(s.AppendSale(ctx, model.Sale{ID: "x3", StaffID: "s2", Qty: 9, Profit: 1, SoldAt: day(2025, 2, 20)}), ShouldBeNil)
			So(s.AppendScoreEvent(ctx, model.ScoreEvent{ID: "e1", StaffID: "s1", KPIID: "sales", Points: 8, EvaluatedAt: day(2025, 3, 5)}), ShouldBeNil)

			Convey("Then aggregates sum the range for every staff member", func() {
				aggs, err := s.StaffAggregates(ctx, march, april)
				So(err, ShouldBeNil)
				So(len(aggs), ShouldEqual, 2)
				So(aggs[0], ShouldResemble, model.StaffAggregate{StaffID: "s1", DisplayName: "Ari", TotalQtySold: 5, TotalProfit: 20, TotalPoints: 8})
				So(aggs[1].TotalQtySold, ShouldEqual, 0)
			})
		})

		Convey("When a KPI is re-scored in the same month", func() {
			So(s.AppendScoreEvent(ctx, model.ScoreEvent{ID: "r1", StaffID: "s2", KPIID: "sales", Points: 4, EvaluatedAt: day(2025, 3, 2)}), ShouldBeNil)
			So(s.AppendScoreEvent(ctx, model.ScoreEvent{ID: "r2", StaffID: "s2", KPIID: "sales", Points: 7, EvaluatedAt: day(2025, 3, 9)}), ShouldBeNil)

			Convey("Then TotalPoints sums the superseded event too", func() {
				aggs, err := s.StaffAggregates(ctx, march, april)
				So(err, ShouldBeNil)
				So(aggs[1].StaffID, ShouldEqual, "s2")
				So(aggs[1].TotalPoints, ShouldEqual, 11.0)
			})
		})

		Convey("When attendance is recorded twice for a date", func() {
			So(s.PutAttendance(ctx, model.AttendanceDay{StaffID: "s1", Date: day(2025, 3, 3), DayType: model.DayAbsent}), ShouldBeNil)
			So(s.PutAttendance(ctx, model.AttendanceDay{StaffID: "s1", Date: day(2025, 3, 3), DayType: model.DayFull}), ShouldBeNil)
			So(s.PutAttendance(ctx, model.AttendanceDay{StaffID: "s1", Date: day(2025, 3, 1), DayType: model.DayHalf}), ShouldBeNil)

			Convey("Then the last record wins and days come back in date order", func() {
				days, err := s.Attendance(ctx, "s1", march, april)
				So(err, ShouldBeNil)
				So(len(days), ShouldEqual, 2)
				So(days[0].DayType, ShouldEqual, model.DayHalf)
				So(days[1].DayType, ShouldEqual, model.DayFull)
			})
		})

		Convey("When a date carries a zone east of UTC", func() {
			east := time.FixedZone("IST", 5*3600+1800)
			So(s.PutAttendance(ctx, model.AttendanceDay{StaffID: "s1", Date: time.Date(2025, 3, 1, 0, 0, 0, 0, east), DayType: model.DayFull}), ShouldBeNil)

			Convey("Then it is stored under its own calendar date", func() {
				days, err := s.Attendance(ctx, "s1", march, april)
				So(err, ShouldBeNil)
				So(len(days), ShouldEqual, 1)
				So(days[0].Date, ShouldEqual, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

				feb, err := s.Attendance(ctx, "s1", march.AddDate(0, -1, 0), march)
				So(err, ShouldBeNil)
				So(feb, ShouldBeEmpty)
			})
		})

		Convey("Then invalid seed records are rejected", func() {
			So(errors.Is(s.PutKPI(ctx, model.KPIDefinition{ID: "bad", Weight: 101, Frequency: model.FrequencyDaily}), model.ErrInvalidKPI), ShouldBeTrue)
			So(errors.Is(s.PutAttendance(ctx, model.AttendanceDay{StaffID: "s1", Date: day(2025, 3, 3), DayType: "late"}), model.ErrInvalidAttendance), ShouldBeTrue)
		})
	})
}

func TestMemoryStoreConcurrency(t *testing.T) {
	Convey("Given concurrent writers and readers", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore(repository.WithStaff(model.Staff{ID: "s1"}))
		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(2)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					_ = s.AppendScoreEvent(ctx, model.ScoreEvent{
						ID: time.Duration(g*1000 + i).String(), StaffID: "s1", KPIID: "k", Points: 1, EvaluatedAt: day(2025, 3, 1+i%28),
					})
				}
			}(g)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					_, _ = s.StaffAggregates(ctx, day(2025, 3, 1), day(2025, 4, 1))
				}
			}()
		}
		wg.Wait()

		Convey("Then every event is stored", func() {
			So(s.EventCount(), ShouldEqual, 200)
			aggs, _ := s.StaffAggregates(ctx, day(2025, 3, 1), day(2025, 4, 1))
			So(aggs[0].TotalPoints, ShouldEqual, 200.0)
		})
	})
}
