// Package ranking orders staff aggregates into leaderboards.
package ranking

import (
	"errors"
	"fmt"
	"sort"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/types"
)

// ErrUnknownMetric is returned by KeyFor for an unsupported metric.
var ErrUnknownMetric = errors.New("unknown leaderboard metric")

// KeyFunc extracts the value a leaderboard is ordered by.
type KeyFunc func(model.StaffAggregate) float64

// Key functions for the supported report views.
var (
	ByPoints KeyFunc = func(a model.StaffAggregate) float64 { return a.TotalPoints }
	ByProfit KeyFunc = func(a model.StaffAggregate) float64 { return a.TotalProfit }
	ByQty    KeyFunc = func(a model.StaffAggregate) float64 { return a.TotalQtySold }
)

// KeyFor maps a metric name to its key function.
func KeyFor(m types.Metric) (KeyFunc, error) {
	switch m {
	case types.MetricPoints:
		return ByPoints, nil
	case types.MetricProfit:
		return ByProfit, nil
	case types.MetricQty:
		return ByQty, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
}

// Option applies a configuration option to a ranking.
type Option func(*ranker)

// WithStaffIDTieBreak orders equal-valued entries by staff id ascending
// instead of keeping their input order.
func WithStaffIDTieBreak() Option {
	return func(r *ranker) {
		r.byStaffID = true
	}
}

// WithTieBreak selects the tie-break by name: "staff_id" or "stable".
func WithTieBreak(name string) Option {
	return func(r *ranker) {
		r.byStaffID = name == TieBreakStaffID
	}
}

// Tie-break names accepted by WithTieBreak.
const (
	TieBreakStable  = "stable"
	TieBreakStaffID = "staff_id"
)

type ranker struct {
	byStaffID bool
}

// Rank sorts entries descending by key and assigns ranks 1..N with no gaps
// and no shared ranks. Equal values keep their input order unless a staff
// id tie-break is requested. The input slice is not modified.
func Rank(entries []model.StaffAggregate, key KeyFunc, opts ...Option) []model.LeaderboardEntry {
	r := &ranker{}
	for _, opt := range opts {
		opt(r)
	}

	var tie func(a, b model.StaffAggregate) bool
	if r.byStaffID {
		tie = func(a, b model.StaffAggregate) bool { return a.StaffID < b.StaffID }
	}
	sorted := SortDesc(entries, key, tie)

	out := make([]model.LeaderboardEntry, len(sorted))
	for i, agg := range sorted {
		rank := i + 1
		out[i] = model.LeaderboardEntry{
			StaffAggregate: agg,
			Rank:           rank,
			Intensity:      Intensity(rank, len(sorted)),
		}
	}
	return out
}

// SortDesc returns a copy of items ordered by key descending. Equal keys
// are ordered by tie when it is non-nil and keep their input order
// otherwise.
func SortDesc[T any](items []T, key func(T) float64, tie func(a, b T) bool) []T {
	sorted := append([]T(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := key(sorted[i]), key(sorted[j])
		if ki != kj {
			return ki > kj
		}
		if tie != nil {
			return tie(sorted[i], sorted[j])
		}
		return false
	})
	return sorted
}

// Intensity maps a rank to [0,1] for color interpolation: 1 at the top,
// 0 at the bottom. It has no effect on ordering.
func Intensity(rank, total int) float64 {
	span := total - 1
	if span < 1 {
		span = 1
	}
	return 1 - float64(rank-1)/float64(span)
}

// Top returns at most n entries; n < 1 returns all of them.
func Top(entries []model.LeaderboardEntry, n int) []model.LeaderboardEntry {
	if n < 1 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
