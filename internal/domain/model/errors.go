package model

import "errors"

// Sentinel kinds for invalid domain records. These allow errors.Is from callers.
var (
	ErrInvalidKPI        = errors.New("invalid kpi definition")
	ErrInvalidScoreEvent = errors.New("invalid score event")
	ErrInvalidAttendance = errors.New("invalid attendance day")
	ErrDuplicateDay      = errors.New("duplicate attendance day")
)
