package service

import (
	"time"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing repository.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the ingestion queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many event ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithBoardConcurrency bounds the parallel composite computations of
// CompositeBoard.
func WithBoardConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.boardConcurrency = n
		}
	}
}

// WithMaxLeaderboardLimit caps the limit accepted by Leaderboard.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithHalfDayWeight sets how much a half day counts toward the attendance
// percentage.
func WithHalfDayWeight(w float64) Option {
	return func(s *Service) {
		if w >= 0 && w <= 1 {
			s.halfDayWeight = w
		}
	}
}

// WithStrictCatalog makes composites fail on events whose KPI is missing
// from the catalog instead of weighting them zero.
func WithStrictCatalog(strict bool) Option {
	return func(s *Service) {
		s.strictCatalog = strict
	}
}

// WithTieBreak selects the leaderboard tie-break: "stable" or "staff_id".
func WithTieBreak(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.tieBreak = name
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
