package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"
)

// MemoryStore is an in-memory Store. It is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	staff      map[string]model.Staff
	kpis       map[string]model.KPIDefinition
	events     map[string][]model.ScoreEvent // by staff id
	eventIDs   map[string]struct{}
	attendance map[string]map[string]model.AttendanceDay // staff id -> date -> day
	sales      map[string][]model.Sale
	saleIDs    map[string]struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		staff:      make(map[string]model.Staff),
		kpis:       make(map[string]model.KPIDefinition),
		events:     make(map[string][]model.ScoreEvent),
		eventIDs:   make(map[string]struct{}),
		attendance: make(map[string]map[string]model.AttendanceDay),
		sales:      make(map[string][]model.Sale),
		saleIDs:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}

func checkRange(from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("%w: %s after %s", ErrInvalidRange, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return nil
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// Staff lists every staff member ordered by id.
func (s *MemoryStore) Staff(_ context.Context) ([]model.Staff, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Staff, 0, len(s.staff))
	for _, m := range s.staff {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// StaffMember returns one staff member.
func (s *MemoryStore) StaffMember(_ context.Context, staffID string) (model.Staff, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.staff[staffID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Staff{}, fmt.Errorf("%w: %s", ErrNotFound, staffID)
	}
	return m, nil
}

// KPIs lists the catalog ordered by id.
func (s *MemoryStore) KPIs(_ context.Context) ([]model.KPIDefinition, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.KPIDefinition, 0, len(s.kpis))
	for _, k := range s.kpis {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ScoreEvents lists events in insertion order.
func (s *MemoryStore) ScoreEvents(_ context.Context, staffID string, from, to time.Time) ([]model.ScoreEvent, error) {
	defer observeQuery(time.Now())
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ScoreEvent
	for _, e := range s.events[staffID] {
		if inRange(e.EvaluatedAt, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Attendance lists days ordered by date.
func (s *MemoryStore) Attendance(_ context.Context, staffID string, from, to time.Time) ([]model.AttendanceDay, error) {
	defer observeQuery(time.Now())
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.AttendanceDay
	for _, d := range s.attendance[staffID] {
		if inRange(d.Date, from, to) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// StaffAggregates sums sales and score event points per staff member.
// TotalPoints is the raw sum of every stored event in the range, superseded
// events and events on soft-deleted KPIs included.
// Staff without activity in the range are reported with zero totals.
func (s *MemoryStore) StaffAggregates(_ context.Context, from, to time.Time) ([]model.StaffAggregate, error) {
	defer observeQuery(time.Now())
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.StaffAggregate, 0, len(s.staff))
	for id, m := range s.staff {
		agg := model.StaffAggregate{StaffID: id, DisplayName: m.DisplayName}
		for _, sale := range s.sales[id] {
			if inRange(sale.SoldAt, from, to) {
				agg.TotalQtySold += sale.Qty
				agg.TotalProfit += sale.Profit
			}
		}
		for _, e := range s.events[id] {
			if inRange(e.EvaluatedAt, from, to) {
				agg.TotalPoints += e.Points
			}
		}
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StaffID < out[j].StaffID })
	return out, nil
}

// AppendScoreEvent stores e once per id.
func (s *MemoryStore) AppendScoreEvent(_ context.Context, e model.ScoreEvent) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.eventIDs[e.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateEvent, e.ID)
	}
	s.eventIDs[e.ID] = struct{}{}
	s.events[e.StaffID] = append(s.events[e.StaffID], e)
	metrics.UpdateRepositoryRecordsTotal(len(s.eventIDs))
	return nil
}

// PutStaff inserts or replaces a staff member.
func (s *MemoryStore) PutStaff(_ context.Context, m model.Staff) error {
	s.mu.Lock()
	s.staff[m.ID] = m
	s.mu.Unlock()
	return nil
}

// PutKPI inserts or replaces a KPI definition.
func (s *MemoryStore) PutKPI(_ context.Context, k model.KPIDefinition) error {
	if err := k.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.kpis[k.ID] = k
	s.mu.Unlock()
	return nil
}

// PutAttendance records a day, replacing any earlier record for the same
// staff member and date so each date keeps exactly one day type. The date
// is stored as its calendar date at midnight UTC.
func (s *MemoryStore) PutAttendance(_ context.Context, d model.AttendanceDay) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	days, ok := s.attendance[d.StaffID]
	if !ok {
		days = make(map[string]model.AttendanceDay)
		s.attendance[d.StaffID] = days
	}
	d.Date = model.CalendarDate(d.Date)
	days[d.Date.Format(time.DateOnly)] = d
	return nil
}

// AppendSale records a sale. A sale id seen before is ignored.
func (s *MemoryStore) AppendSale(_ context.Context, sale model.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sale.ID != "" {
		if _, seen := s.saleIDs[sale.ID]; seen {
			return nil
		}
		s.saleIDs[sale.ID] = struct{}{}
	}
	s.sales[sale.StaffID] = append(s.sales[sale.StaffID], sale)
	return nil
}

// EventCount returns the number of stored score events.
func (s *MemoryStore) EventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.eventIDs)
}
