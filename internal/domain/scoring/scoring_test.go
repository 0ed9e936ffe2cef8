package scoring_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/tally/internal/domain/model"
	scoring "github.com/okian/tally/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	t1 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	t2 = time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
)

func catalogAB() []model.KPIDefinition {
	return []model.KPIDefinition{
		{ID: "A", Name: "Upsell", Weight: 60, Target: 10, Frequency: model.FrequencyWeekly},
		{ID: "B", Name: "Greeting", Weight: 40, Target: 5, Frequency: model.FrequencyDaily},
	}
}

func TestComputeComposite(t *testing.T) {
	Convey("Given a two-KPI catalog", t, func() {
		kpis := catalogAB()

		Convey("When both KPIs were evaluated once", func() {
			events := []model.ScoreEvent{
				{ID: "e1", StaffID: "s1", KPIID: "A", Points: 8, EvaluatedAt: t1},
				{ID: "e2", StaffID: "s1", KPIID: "B", Points: 5, EvaluatedAt: t2},
			}
			c, err := scoring.ComputeComposite(events, kpis)

			Convey("Then the composite uses raw points: (8×60+5×40)/(60+40)×100", func() {
				So(err, ShouldBeNil)
				So(c.StaffID, ShouldEqual, "s1")
				So(c.WeightedScore, ShouldAlmostEqual, 680, 1e-9)
				So(len(c.PerKPILatest), ShouldEqual, 2)
			})

			Convey("And the breakdown explains each contribution", func() {
				So(len(c.Breakdown), ShouldEqual, 2)
				So(c.Breakdown[0].KPIID, ShouldEqual, "A")
				So(c.Breakdown[0].Contribution, ShouldEqual, 480.0)
				So(c.Breakdown[0].Attainment, ShouldAlmostEqual, 80, 1e-9)
				So(c.Breakdown[1].Attainment, ShouldAlmostEqual, 100, 1e-9)
			})
		})

		Convey("When only one KPI was evaluated", func() {
			events := []model.ScoreEvent{{ID: "e1", StaffID: "s1", KPIID: "B", Points: 3, EvaluatedAt: t1}}
			c, err := scoring.ComputeComposite(events, kpis)

			Convey("Then the unevaluated KPI is left out of the denominator", func() {
				So(err, ShouldBeNil)
				So(c.WeightedScore, ShouldAlmostEqual, 300, 1e-9)
			})
		})

		Convey("When there are no events", func() {
			c, err := scoring.ComputeComposite(nil, kpis)

			Convey("Then the score is zero and the latest map is empty", func() {
				So(err, ShouldBeNil)
				So(c.WeightedScore, ShouldEqual, 0.0)
				So(c.PerKPILatest, ShouldNotBeNil)
				So(len(c.PerKPILatest), ShouldEqual, 0)
			})
		})

		Convey("When the evaluated KPIs all have zero weight", func() {
			zero := []model.KPIDefinition{{ID: "Z", Weight: 0, Frequency: model.FrequencyDaily}}
			events := []model.ScoreEvent{{ID: "e1", StaffID: "s1", KPIID: "Z", Points: 9, EvaluatedAt: t1}}
			c, err := scoring.ComputeComposite(events, zero)

			Convey("Then the score falls back to zero", func() {
				So(err, ShouldBeNil)
				So(c.WeightedScore, ShouldEqual, 0.0)
			})
		})
	})
}

func TestComputeComposite_Latest(t *testing.T) {
	Convey("Given several events for the same KPI", t, func() {
		kpis := catalogAB()
		older := model.ScoreEvent{ID: "e9", StaffID: "s1", KPIID: "A", Points: 2, EvaluatedAt: t1}
		newer := model.ScoreEvent{ID: "e1", StaffID: "s1", KPIID: "A", Points: 7, EvaluatedAt: t2}

		Convey("When the input order varies", func() {
			c1, err1 := scoring.ComputeComposite([]model.ScoreEvent{older, newer}, kpis)
			c2, err2 := scoring.ComputeComposite([]model.ScoreEvent{newer, older}, kpis)

			Convey("Then the later evaluation wins regardless of order", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(c1.PerKPILatest["A"].ID, ShouldEqual, "e1")
				So(c2.PerKPILatest["A"].ID, ShouldEqual, "e1")
				So(c1.WeightedScore, ShouldEqual, c2.WeightedScore)
				So(c1.WeightedScore, ShouldAlmostEqual, 700, 1e-9)
			})
		})

		Convey("When two events tie exactly on evaluatedAt", func() {
			a := model.ScoreEvent{ID: "evt-a", StaffID: "s1", KPIID: "A", Points: 1, EvaluatedAt: t1}
			b := model.ScoreEvent{ID: "evt-b", StaffID: "s1", KPIID: "A", Points: 4, EvaluatedAt: t1}
			latest := scoring.LatestPerKPI([]model.ScoreEvent{b, a})

			Convey("Then the higher id wins", func() {
				So(latest["A"].ID, ShouldEqual, "evt-b")
			})
		})
	})
}

func TestComputeComposite_MissingKPI(t *testing.T) {
	Convey("Given an event that references a KPI absent from the catalog", t, func() {
		kpis := catalogAB()
		events := []model.ScoreEvent{
			{ID: "e1", StaffID: "s1", KPIID: "A", Points: 5, EvaluatedAt: t1},
			{ID: "e2", StaffID: "s1", KPIID: "ghost", Points: 100, EvaluatedAt: t1},
		}

		Convey("When aggregating leniently", func() {
			c, err := scoring.ComputeComposite(events, kpis)

			Convey("Then the unknown KPI is excluded with weight zero", func() {
				So(err, ShouldBeNil)
				So(c.WeightedScore, ShouldAlmostEqual, 500, 1e-9)
				So(c.PerKPILatest, ShouldContainKey, "ghost")
				So(c.Breakdown[1].Known, ShouldBeFalse)
			})
		})

		Convey("When aggregating strictly", func() {
			_, err := scoring.ComputeComposite(events, kpis, scoring.WithStrictCatalog())

			Convey("Then a data integrity error names the KPI", func() {
				var integrity *scoring.DataIntegrityError
				So(errors.As(err, &integrity), ShouldBeTrue)
				So(integrity.KPIID, ShouldEqual, "ghost")
				So(err.Error(), ShouldContainSubstring, "ghost")
			})
		})
	})
}

func TestComputeComposite_Properties(t *testing.T) {
	Convey("Given random event sets over a weighted catalog", t, func() {
		rng := rand.New(rand.NewSource(7))
		kpis := []model.KPIDefinition{
			{ID: "k1", Weight: 10, Frequency: model.FrequencyDaily},
			{ID: "k2", Weight: 35, Frequency: model.FrequencyWeekly},
			{ID: "k3", Weight: 55, Frequency: model.FrequencyMonthly},
		}

		Convey("Then the score is non-negative and identical across shuffles", func() {
			for round := 0; round < 50; round++ {
				n := 1 + rng.Intn(12)
				events := make([]model.ScoreEvent, n)
				for i := range events {
					events[i] = model.ScoreEvent{
						ID:          string(rune('a' + i)),
						StaffID:     "s1",
						KPIID:       kpis[rng.Intn(len(kpis))].ID,
						Points:      math.Floor(rng.Float64() * 20),
						EvaluatedAt: t1.Add(time.Duration(rng.Intn(5)) * time.Hour),
					}
				}
				base, err := scoring.ComputeComposite(events, kpis)
				So(err, ShouldBeNil)
				So(base.WeightedScore, ShouldBeGreaterThanOrEqualTo, 0)

				shuffled := append([]model.ScoreEvent(nil), events...)
				rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
				again, err := scoring.ComputeComposite(shuffled, kpis)
				So(err, ShouldBeNil)
				So(again.WeightedScore, ShouldEqual, base.WeightedScore)
			}
		})
	})
}
