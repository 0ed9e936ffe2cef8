package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrDuplicate     = errors.New("duplicate score event")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrInvalidMetric = errors.New("invalid leaderboard metric")
)
