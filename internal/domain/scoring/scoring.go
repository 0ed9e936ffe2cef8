// Package scoring computes weighted composite scores from KPI score events.
package scoring

import (
	"fmt"
	"sort"

	"github.com/okian/tally/internal/domain/model"
)

// normalizationScale is applied after dividing by the weight actually used.
const normalizationScale = 100

// DataIntegrityError is returned in strict mode when an event references a
// KPI that is absent from the supplied catalog.
type DataIntegrityError struct {
	KPIID   string
	EventID string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: event %s references unknown kpi %s", e.EventID, e.KPIID)
}

// Option applies a configuration option to an aggregation.
type Option func(*aggregator)

// WithStrictCatalog makes unknown KPI references fail with *DataIntegrityError
// instead of being excluded with weight 0.
func WithStrictCatalog() Option {
	return func(a *aggregator) {
		a.strict = true
	}
}

// WithStrict toggles strict catalog mode from configuration.
func WithStrict(strict bool) Option {
	return func(a *aggregator) {
		a.strict = strict
	}
}

type aggregator struct {
	strict bool
}

// LatestPerKPI groups events by KPI id and keeps the latest one per group.
// The result does not depend on input order.
func LatestPerKPI(events []model.ScoreEvent) map[string]model.ScoreEvent {
	latest := make(map[string]model.ScoreEvent, len(events))
	for _, e := range events {
		cur, ok := latest[e.KPIID]
		if !ok || e.Supersedes(cur) {
			latest[e.KPIID] = e
		}
	}
	return latest
}

// ComputeComposite turns one staff member's score events into a weighted
// composite. kpis must include soft-deleted definitions referenced by events.
//
// weightedScore = Σ(latestPoints × weight) / Σweight × 100, where both sums
// range over KPIs with at least one event. KPIs without events contribute
// to neither side.
func ComputeComposite(events []model.ScoreEvent, kpis []model.KPIDefinition, opts ...Option) (model.StaffComposite, error) {
	a := &aggregator{}
	for _, opt := range opts {
		opt(a)
	}

	latest := LatestPerKPI(events)
	out := model.StaffComposite{PerKPILatest: latest}
	if len(events) > 0 {
		out.StaffID = events[0].StaffID
	}
	if len(latest) == 0 {
		return out, nil
	}

	catalog := model.NewCatalog(kpis)

	// Iterate in key order so float sums are reproducible.
	ids := make([]string, 0, len(latest))
	for id := range latest {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var totalContribution, totalWeight float64
	breakdown := make([]model.KPIContribution, 0, len(ids))
	for _, id := range ids {
		ev := latest[id]
		kpi, known := catalog[id]
		if !known && a.strict {
			return model.StaffComposite{}, &DataIntegrityError{KPIID: id, EventID: ev.ID}
		}

		c := model.KPIContribution{KPIID: id, Points: ev.Points, Known: known}
		if known {
			c.Weight = kpi.Weight
			c.Contribution = ev.Points * kpi.Weight
			if kpi.Target != 0 {
				c.Attainment = ev.Points / kpi.Target * normalizationScale
			}
		}
		totalContribution += c.Contribution
		totalWeight += c.Weight
		breakdown = append(breakdown, c)
	}

	if totalWeight > 0 {
		out.WeightedScore = totalContribution / totalWeight * normalizationScale
	}
	out.Breakdown = breakdown
	return out, nil
}
