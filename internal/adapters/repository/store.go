// Package repository defines the backend data API the scoring engine reads
// from, the writer used by ingestion, and an in-memory implementation.
package repository

import (
	"context"
	"time"

	"github.com/okian/tally/internal/domain/model"
)

// Reader is the backend data API. Time ranges are half-open: [from, to).
type Reader interface {
	// Staff lists every staff member.
	Staff(ctx context.Context) ([]model.Staff, error)
	// StaffMember returns one staff member or ErrNotFound.
	StaffMember(ctx context.Context, staffID string) (model.Staff, error)
	// KPIs lists the catalog, soft-deleted definitions included.
	KPIs(ctx context.Context) ([]model.KPIDefinition, error)
	// ScoreEvents lists a staff member's events evaluated in the range.
	ScoreEvents(ctx context.Context, staffID string, from, to time.Time) ([]model.ScoreEvent, error)
	// Attendance lists a staff member's attendance days in the range.
	Attendance(ctx context.Context, staffID string, from, to time.Time) ([]model.AttendanceDay, error)
	// StaffAggregates returns per-staff sales and points totals for the range,
	// one row per staff member.
	StaffAggregates(ctx context.Context, from, to time.Time) ([]model.StaffAggregate, error)
}

// Writer appends accepted score events.
type Writer interface {
	// AppendScoreEvent stores e. A repeated id returns ErrDuplicateEvent.
	AppendScoreEvent(ctx context.Context, e model.ScoreEvent) error
}

// Seeder loads reference and history data.
type Seeder interface {
	PutStaff(ctx context.Context, s model.Staff) error
	PutKPI(ctx context.Context, k model.KPIDefinition) error
	PutAttendance(ctx context.Context, d model.AttendanceDay) error
	AppendSale(ctx context.Context, s model.Sale) error
}

// Store is the full repository surface.
type Store interface {
	Reader
	Writer
	Seeder
}
