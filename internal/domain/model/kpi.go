// Package model contains domain models passed between layers.
//
// Records are validated once at the data boundary (HTTP decode, repository
// scan) so the aggregation code can trust them.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Weight bounds for a KPI, expressed as a percentage of the composite.
const (
	MinWeight = 0
	MaxWeight = 100
)

// Frequency is how often a KPI is evaluated.
type Frequency string

// Frequency classes.
const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is a known frequency class.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// KPIDefinition describes one weighted performance indicator.
type KPIDefinition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Weight    float64   `json:"weight"`              // percentage contribution, 0..100
	Target    float64   `json:"target"`              // KPI-specific goal value
	MaxPoints *int      `json:"maxPoints,omitempty"` // optional ceiling for raw points
	Frequency Frequency `json:"frequency"`
	IsDeleted bool      `json:"isDeleted"` // soft-deleted: kept for history, closed to new events
}

// Validate checks the KPI invariants.
func (k KPIDefinition) Validate() error {
	switch {
	case strings.TrimSpace(k.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidKPI)
	case k.Weight < MinWeight || k.Weight > MaxWeight:
		return fmt.Errorf("%w: %s: weight %v outside [0,100]", ErrInvalidKPI, k.ID, k.Weight)
	case !k.Frequency.Valid():
		return fmt.Errorf("%w: %s: unknown frequency %q", ErrInvalidKPI, k.ID, k.Frequency)
	case k.MaxPoints != nil && *k.MaxPoints <= 0:
		return fmt.Errorf("%w: %s: maxPoints must be positive", ErrInvalidKPI, k.ID)
	}
	return nil
}

// Catalog indexes KPI definitions by id.
type Catalog map[string]KPIDefinition

// NewCatalog builds a Catalog from a slice. Later duplicates win.
func NewCatalog(kpis []KPIDefinition) Catalog {
	c := make(Catalog, len(kpis))
	for _, k := range kpis {
		c[k.ID] = k
	}
	return c
}

// Active returns the non-deleted definitions ordered by id.
func (c Catalog) Active() []KPIDefinition {
	out := make([]KPIDefinition, 0, len(c))
	for _, k := range c {
		if !k.IsDeleted {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
