package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"
)

// Store is a repository.Store backed by PostgreSQL.
type Store struct {
	db *DB
}

var _ repository.Store = (*Store)(nil)

// NewStore returns a Store over db.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func observe(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}

// Staff lists every staff member.
func (s *Store) Staff(ctx context.Context) ([]model.Staff, error) {
	defer observe(time.Now())
	q := GetQuerier(ctx, s.db)

	rows, err := q.Query(ctx, `SELECT id, display_name, role FROM staff ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Staff, error) {
		var m model.Staff
		err := row.Scan(&m.ID, &m.DisplayName, &m.Role)
		return m, err
	})
}

// StaffMember returns one staff member.
func (s *Store) StaffMember(ctx context.Context, staffID string) (model.Staff, error) {
	defer observe(time.Now())
	q := GetQuerier(ctx, s.db)

	var m model.Staff
	err := q.QueryRow(ctx, `SELECT id, display_name, role FROM staff WHERE id = $1`, staffID).
		Scan(&m.ID, &m.DisplayName, &m.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Staff{}, fmt.Errorf("%w: %s", repository.ErrNotFound, staffID)
	}
	if err != nil {
		return model.Staff{}, fmt.Errorf("query staff member: %w", err)
	}
	return m, nil
}

// KPIs lists the catalog, soft-deleted definitions included.
func (s *Store) KPIs(ctx context.Context) ([]model.KPIDefinition, error) {
	defer observe(time.Now())
	q := GetQuerier(ctx, s.db)

	rows, err := q.Query(ctx, `
		SELECT id, name, weight, target, max_points, frequency, is_deleted
		FROM kpis
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query kpis: %w", err)
	}
	kpis, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.KPIDefinition, error) {
		var k model.KPIDefinition
		var freq string
		err := row.Scan(&k.ID, &k.Name, &k.Weight, &k.Target, &k.MaxPoints, &freq, &k.IsDeleted)
		k.Frequency = model.Frequency(freq)
		return k, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan kpis: %w", err)
	}
	for _, k := range kpis {
		if err := k.Validate(); err != nil {
			return nil, err
		}
	}
	return kpis, nil
}

// ScoreEvents lists a staff member's events in [from, to).
func (s *Store) ScoreEvents(ctx context.Context, staffID string, from, to time.Time) ([]model.ScoreEvent, error) {
	defer observe(time.Now())
	if to.Before(from) {
		return nil, repository.ErrInvalidRange
	}
	q := GetQuerier(ctx, s.db)

	rows, err := q.Query(ctx, `
		SELECT id, staff_id, kpi_id, points, evaluated_at, comment
		FROM score_events
		WHERE staff_id = $1 AND evaluated_at >= $2 AND evaluated_at < $3
		ORDER BY evaluated_at, id
	`, staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query score events: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ScoreEvent, error) {
		var e model.ScoreEvent
		err := row.Scan(&e.ID, &e.StaffID, &e.KPIID, &e.Points, &e.EvaluatedAt, &e.Comment)
		e.EvaluatedAt = e.EvaluatedAt.UTC()
		return e, err
	})
}

// Attendance lists a staff member's days in [from, to).
func (s *Store) Attendance(ctx context.Context, staffID string, from, to time.Time) ([]model.AttendanceDay, error) {
	defer observe(time.Now())
	if to.Before(from) {
		return nil, repository.ErrInvalidRange
	}
	q := GetQuerier(ctx, s.db)

	rows, err := q.Query(ctx, `
		SELECT staff_id, day, day_type
		FROM attendance_days
		WHERE staff_id = $1 AND day >= $2 AND day < $3
		ORDER BY day
	`, staffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.AttendanceDay, error) {
		var d model.AttendanceDay
		var dt string
		err := row.Scan(&d.StaffID, &d.Date, &dt)
		d.DayType = model.DayType(dt)
		return d, err
	})
}

// StaffAggregates sums sales and points per staff member in [from, to).
// TotalPoints is the raw sum of every stored event, superseded events and
// events on soft-deleted KPIs included.
func (s *Store) StaffAggregates(ctx context.Context, from, to time.Time) ([]model.StaffAggregate, error) {
	defer observe(time.Now())
	if to.Before(from) {
		return nil, repository.ErrInvalidRange
	}
	q := GetQuerier(ctx, s.db)

	rows, err := q.Query(ctx, `
		SELECT st.id, st.display_name,
		       COALESCE(sa.qty, 0), COALESCE(sa.profit, 0), COALESCE(ev.points, 0)
		FROM staff st
		LEFT JOIN (
			SELECT staff_id, SUM(qty) AS qty, SUM(profit) AS profit
			FROM sales
			WHERE sold_at >= $1 AND sold_at < $2
			GROUP BY staff_id
		) sa ON sa.staff_id = st.id
		LEFT JOIN (
			SELECT staff_id, SUM(points) AS points
			FROM score_events
			WHERE evaluated_at >= $1 AND evaluated_at < $2
			GROUP BY staff_id
		) ev ON ev.staff_id = st.id
		ORDER BY st.id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.StaffAggregate, error) {
		var a model.StaffAggregate
		err := row.Scan(&a.StaffID, &a.DisplayName, &a.TotalQtySold, &a.TotalProfit, &a.TotalPoints)
		return a, err
	})
}

// AppendScoreEvent inserts e.
func (s *Store) AppendScoreEvent(ctx context.Context, e model.ScoreEvent) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	q := GetQuerier(ctx, s.db)

	tag, err := q.Exec(ctx, `
		INSERT INTO score_events (id, staff_id, kpi_id, points, evaluated_at, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, e.ID, e.StaffID, e.KPIID, e.Points, e.EvaluatedAt, e.Comment)
	if err != nil {
		return fmt.Errorf("insert score event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", repository.ErrDuplicateEvent, e.ID)
	}
	return nil
}

// PutStaff upserts a staff member.
func (s *Store) PutStaff(ctx context.Context, m model.Staff) error {
	q := GetQuerier(ctx, s.db)
	_, err := q.Exec(ctx, `
		INSERT INTO staff (id, display_name, role) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, role = EXCLUDED.role
	`, m.ID, m.DisplayName, m.Role)
	if err != nil {
		return fmt.Errorf("upsert staff: %w", err)
	}
	return nil
}

// PutKPI upserts a KPI definition.
func (s *Store) PutKPI(ctx context.Context, k model.KPIDefinition) error {
	if err := k.Validate(); err != nil {
		return err
	}
	q := GetQuerier(ctx, s.db)
	_, err := q.Exec(ctx, `
		INSERT INTO kpis (id, name, weight, target, max_points, frequency, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, weight = EXCLUDED.weight, target = EXCLUDED.target,
			max_points = EXCLUDED.max_points, frequency = EXCLUDED.frequency,
			is_deleted = EXCLUDED.is_deleted
	`, k.ID, k.Name, k.Weight, k.Target, k.MaxPoints, string(k.Frequency), k.IsDeleted)
	if err != nil {
		return fmt.Errorf("upsert kpi: %w", err)
	}
	return nil
}

// PutAttendance upserts one day; the latest record for a date wins.
func (s *Store) PutAttendance(ctx context.Context, d model.AttendanceDay) error {
	if err := d.Validate(); err != nil {
		return err
	}
	q := GetQuerier(ctx, s.db)
	_, err := q.Exec(ctx, `
		INSERT INTO attendance_days (staff_id, day, day_type) VALUES ($1, $2, $3)
		ON CONFLICT (staff_id, day) DO UPDATE SET day_type = EXCLUDED.day_type
	`, d.StaffID, model.CalendarDate(d.Date), string(d.DayType))
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// AppendSale inserts a sale; a repeated id is ignored.
func (s *Store) AppendSale(ctx context.Context, sale model.Sale) error {
	q := GetQuerier(ctx, s.db)
	_, err := q.Exec(ctx, `
		INSERT INTO sales (id, staff_id, qty, profit, sold_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, sale.ID, sale.StaffID, sale.Qty, sale.Profit, sale.SoldAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}
