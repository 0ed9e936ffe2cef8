package repository

import "github.com/okian/tally/internal/domain/model"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithStaff preloads staff members.
func WithStaff(staff ...model.Staff) Option {
	return func(s *MemoryStore) {
		for _, m := range staff {
			s.staff[m.ID] = m
		}
	}
}

// WithKPIs preloads the KPI catalog.
func WithKPIs(kpis ...model.KPIDefinition) Option {
	return func(s *MemoryStore) {
		for _, k := range kpis {
			s.kpis[k.ID] = k
		}
	}
}
