package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("staff not found")
	ErrDuplicateEvent = errors.New("duplicate score event")
	ErrInvalidRange   = errors.New("invalid time range")
)
