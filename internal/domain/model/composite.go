package model

import "github.com/okian/tally/internal/domain/types"

// KPIContribution explains how one KPI fed into a composite.
type KPIContribution struct {
	KPIID        string  `json:"kpiId"`
	Weight       float64 `json:"weight"`
	Points       float64 `json:"points"`
	Contribution float64 `json:"contribution"`
	// Attainment is points relative to target in percent; 0 when target is 0.
	Attainment float64 `json:"attainment"`
	Known      bool    `json:"known"` // false when the KPI was missing from the catalog
}

// StaffComposite is the weighted performance score of one staff member.
type StaffComposite struct {
	StaffID       string                `json:"staffId"`
	PerKPILatest  map[string]ScoreEvent `json:"perKpiLatest"`
	WeightedScore float64               `json:"weightedScore"`
	Trend         types.Trend           `json:"trend,omitempty"`
	Breakdown     []KPIContribution     `json:"breakdown,omitempty"`
}
