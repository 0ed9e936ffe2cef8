package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/tally/internal/domain/attendance"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/period"
	"github.com/okian/tally/internal/domain/ranking"
	"github.com/okian/tally/internal/domain/scoring"
	"github.com/okian/tally/internal/domain/trend"
	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/pkg/metrics"
)

// scorePlaces is the precision composites are compared at for trends.
const scorePlaces = 1

// CompositeReport is a staff member's composite for a month next to the
// month before.
type CompositeReport struct {
	Staff    model.Staff          `json:"staff"`
	Period   period.Period        `json:"period"`
	Current  model.StaffComposite `json:"current"`
	Previous model.StaffComposite `json:"previous"`
	Trend    types.Trend          `json:"trend"`
}

// AttendanceReport is a staff member's attendance for a month next to the
// month before.
type AttendanceReport struct {
	Staff  model.Staff   `json:"staff"`
	Period period.Period `json:"period"`
	attendance.Comparison
}

// BoardRow is one ranked row of the composite board.
type BoardRow struct {
	Rank          int                  `json:"rank"`
	Intensity     float64              `json:"intensity"`
	Staff         model.Staff          `json:"staff"`
	Composite     model.StaffComposite `json:"composite"`
	PreviousScore float64              `json:"previousScore"`
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

// KPIs lists the KPI catalog, soft-deleted definitions included.
func (s *Service) KPIs(ctx context.Context) ([]model.KPIDefinition, error) {
	return s.store.KPIs(ctx)
}

func (s *Service) scoringOptions() []scoring.Option {
	return []scoring.Option{scoring.WithStrict(s.strictCatalog)}
}

// composite computes one staff member's composite for p.
func (s *Service) composite(ctx context.Context, staffID string, p period.Period, kpis []model.KPIDefinition) (model.StaffComposite, error) {
	start := time.Now()
	events, err := s.store.ScoreEvents(ctx, staffID, p.Start(), p.End())
	if err != nil {
		return model.StaffComposite{}, fmt.Errorf("load score events: %w", err)
	}
	c, err := scoring.ComputeComposite(events, kpis, s.scoringOptions()...)
	if err != nil {
		metrics.RecordErrorByComponent("scoring", "data_integrity")
		return model.StaffComposite{}, err
	}
	c.StaffID = staffID
	metrics.RecordCompositeComputation(float64(time.Since(start).Microseconds()) / 1000)
	return c, nil
}

// compositePair computes p and the month before and tags the trend.
func (s *Service) compositePair(ctx context.Context, staffID string, p period.Period, kpis []model.KPIDefinition) (cur, prev model.StaffComposite, err error) {
	if cur, err = s.composite(ctx, staffID, p, kpis); err != nil {
		return cur, prev, err
	}
	if prev, err = s.composite(ctx, staffID, p.Previous(), kpis); err != nil {
		return cur, prev, err
	}
	cur.Trend = trend.ClassifyRounded(cur.WeightedScore, prev.WeightedScore, scorePlaces)
	return cur, prev, nil
}

// Composite returns the staff member's composite for p and its trend
// against the previous month.
func (s *Service) Composite(ctx context.Context, staffID string, p period.Period) (CompositeReport, error) {
	staff, err := s.store.StaffMember(ctx, staffID)
	if err != nil {
		return CompositeReport{}, err
	}
	kpis, err := s.store.KPIs(ctx)
	if err != nil {
		return CompositeReport{}, fmt.Errorf("load kpi catalog: %w", err)
	}
	cur, prev, err := s.compositePair(ctx, staffID, p, kpis)
	if err != nil {
		return CompositeReport{}, err
	}
	return CompositeReport{Staff: staff, Period: p, Current: cur, Previous: prev, Trend: cur.Trend}, nil
}

// AttendanceReport summarizes the staff member's attendance for p and the
// month before.
func (s *Service) AttendanceReport(ctx context.Context, staffID string, p period.Period) (AttendanceReport, error) {
	staff, err := s.store.StaffMember(ctx, staffID)
	if err != nil {
		return AttendanceReport{}, err
	}
	days, err := s.store.Attendance(ctx, staffID, p.Previous().Start(), p.End())
	if err != nil {
		return AttendanceReport{}, fmt.Errorf("load attendance: %w", err)
	}
	if err := model.ValidateAttendance(days); err != nil {
		metrics.RecordErrorByComponent("attendance", "invalid_record")
		return AttendanceReport{}, err
	}
	cmp := attendance.MonthOverMonth(days, p, attendance.WithHalfDayWeight(s.halfDayWeight))
	metrics.RecordAttendanceSummary()
	return AttendanceReport{Staff: staff, Period: p, Comparison: cmp}, nil
}

// Leaderboard ranks staff aggregates for p by metric. A limit of zero
// returns every row.
func (s *Service) Leaderboard(ctx context.Context, p period.Period, metric types.Metric, limit int) ([]model.LeaderboardEntry, error) {
	key, err := ranking.KeyFor(metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetric, err)
	}
	if limit < 0 || limit > s.maxLimit {
		return nil, fmt.Errorf("%w: %d not in [0,%d]", ErrInvalidLimit, limit, s.maxLimit)
	}

	aggs, err := s.store.StaffAggregates(ctx, p.Start(), p.End())
	if err != nil {
		return nil, fmt.Errorf("load aggregates: %w", err)
	}
	metrics.RecordLeaderboardQuery(string(metric))
	return ranking.Top(ranking.Rank(aggs, key, ranking.WithTieBreak(s.tieBreak)), limit), nil
}

// CompositeBoard computes every staff member's composite for p in parallel
// and ranks them by weighted score.
func (s *Service) CompositeBoard(ctx context.Context, p period.Period) ([]BoardRow, error) {
	start := time.Now()
	staff, err := s.store.Staff(ctx)
	if err != nil {
		return nil, fmt.Errorf("load staff: %w", err)
	}
	kpis, err := s.store.KPIs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load kpi catalog: %w", err)
	}

	rows := make([]BoardRow, len(staff))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.boardConcurrency)
	for i, m := range staff {
		g.Go(func() error {
			cur, prev, err := s.compositePair(gctx, m.ID, p, kpis)
			if err != nil {
				return fmt.Errorf("composite for %s: %w", m.ID, err)
			}
			rows[i] = BoardRow{Staff: m, Composite: cur, PreviousScore: prev.WeightedScore}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tie func(a, b BoardRow) bool
	if s.tieBreak == ranking.TieBreakStaffID {
		tie = func(a, b BoardRow) bool { return a.Staff.ID < b.Staff.ID }
	}
	rows = ranking.SortDesc(rows, func(r BoardRow) float64 { return r.Composite.WeightedScore }, tie)
	for i := range rows {
		rows[i].Rank = i + 1
		rows[i].Intensity = ranking.Intensity(i+1, len(rows))
	}
	metrics.RecordCompositeBoard(float64(time.Since(start).Microseconds())/1000, len(rows))
	return rows, nil
}
