// Package ingest checks incoming score events against the KPI catalog.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/tally/internal/domain/model"
)

// Catalog supplies the KPI definitions events are checked against,
// soft-deleted definitions included.
type Catalog interface {
	KPIs(ctx context.Context) ([]model.KPIDefinition, error)
}

// Static is a fixed Catalog.
type Static []model.KPIDefinition

// KPIs returns s.
func (s Static) KPIs(context.Context) ([]model.KPIDefinition, error) { return s, nil }

// Validator checks score events against the current catalog. The catalog is
// read on every call, so definitions added or soft-deleted in the backend
// apply to the next event.
type Validator struct {
	catalog Catalog
}

// NewValidator returns a Validator over catalog.
func NewValidator(catalog Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// Validate runs the record checks and then the catalog checks. Events for
// soft-deleted KPIs are rejected so they never enter new aggregation.
func (v *Validator) Validate(ctx context.Context, e model.ScoreEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}

	kpis, err := v.catalog.KPIs(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	kpi, ok := find(kpis, e.KPIID)

	switch {
	case !ok:
		return fmt.Errorf("%w: %s", ErrUnknownKPI, e.KPIID)
	case kpi.IsDeleted:
		return fmt.Errorf("%w: %s", ErrKPIDeleted, e.KPIID)
	case kpi.MaxPoints != nil && e.Points > float64(*kpi.MaxPoints):
		return fmt.Errorf("%w: %s: %v > %d", ErrPointsExceedMax, e.KPIID, e.Points, *kpi.MaxPoints)
	}
	return nil
}

func find(kpis []model.KPIDefinition, id string) (model.KPIDefinition, bool) {
	for _, k := range kpis {
		if k.ID == id {
			return k, true
		}
	}
	return model.KPIDefinition{}, false
}

// Reason maps a rejection error to its metrics label.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownKPI):
		return "unknown_kpi"
	case errors.Is(err, ErrKPIDeleted):
		return "kpi_deleted"
	case errors.Is(err, ErrPointsExceedMax):
		return "points_exceed_max"
	case errors.Is(err, ErrCatalogUnavailable):
		return "catalog_unavailable"
	case errors.Is(err, model.ErrInvalidScoreEvent):
		return "invalid_event"
	}
	return "other"
}
