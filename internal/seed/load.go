package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/pkg/logger"
)

// Target is a repository that can take a whole dataset.
type Target interface {
	repository.Writer
	repository.Seeder
}

// Counts reports how many records Load wrote.
type Counts struct {
	Staff      int `json:"staff"`
	KPIs       int `json:"kpis"`
	Events     int `json:"events"`
	Attendance int `json:"attendance"`
	Sales      int `json:"sales"`
}

// Load writes ds into t. Events already present are skipped, so loading the
// same dataset twice is harmless.
func Load(ctx context.Context, t Target, ds Dataset) (Counts, error) {
	var c Counts
	for _, s := range ds.Staff {
		if err := t.PutStaff(ctx, s); err != nil {
			return c, fmt.Errorf("put staff %s: %w", s.ID, err)
		}
		c.Staff++
	}
	for _, k := range ds.KPIs {
		if err := t.PutKPI(ctx, k); err != nil {
			return c, fmt.Errorf("put kpi %s: %w", k.ID, err)
		}
		c.KPIs++
	}
	for _, d := range ds.Attendance {
		if err := t.PutAttendance(ctx, d); err != nil {
			return c, fmt.Errorf("put attendance %s: %w", d.StaffID, err)
		}
		c.Attendance++
	}
	for _, s := range ds.Sales {
		if err := t.AppendSale(ctx, s); err != nil {
			return c, fmt.Errorf("append sale %s: %w", s.ID, err)
		}
		c.Sales++
	}
	for _, e := range ds.Events {
		err := t.AppendScoreEvent(ctx, e)
		if err == nil {
			c.Events++
			continue
		}
		if !errors.Is(err, repository.ErrDuplicateEvent) {
			return c, fmt.Errorf("append score event %s: %w", e.ID, err)
		}
	}

	logger.Get().Named("seed").Info(ctx, "dataset loaded",
		logger.Int("staff", c.Staff),
		logger.Int("kpis", c.KPIs),
		logger.Int("events", c.Events),
		logger.Int("attendance", c.Attendance),
		logger.Int("sales", c.Sales),
	)
	return c, nil
}
