package model

import (
	"fmt"
	"strings"
	"time"
)

// ScoreEvent is one evaluation of a staff member on one KPI.
// Events are immutable once created.
type ScoreEvent struct {
	ID          string    `json:"id"`
	StaffID     string    `json:"staffId"`
	KPIID       string    `json:"kpiId"`
	Points      float64   `json:"points"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
	Comment     string    `json:"comment,omitempty"`
}

// Validate checks the event invariants that do not need the catalog.
func (e ScoreEvent) Validate() error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidScoreEvent)
	case strings.TrimSpace(e.StaffID) == "":
		return fmt.Errorf("%w: %s: missing staffId", ErrInvalidScoreEvent, e.ID)
	case strings.TrimSpace(e.KPIID) == "":
		return fmt.Errorf("%w: %s: missing kpiId", ErrInvalidScoreEvent, e.ID)
	case e.Points < 0:
		return fmt.Errorf("%w: %s: negative points", ErrInvalidScoreEvent, e.ID)
	case e.EvaluatedAt.IsZero():
		return fmt.Errorf("%w: %s: missing evaluatedAt", ErrInvalidScoreEvent, e.ID)
	}
	return nil
}

// Supersedes reports whether e is "later" than other for latest-per-KPI
// resolution: greater EvaluatedAt, or the higher ID on an exact tie.
func (e ScoreEvent) Supersedes(other ScoreEvent) bool {
	if !e.EvaluatedAt.Equal(other.EvaluatedAt) {
		return e.EvaluatedAt.After(other.EvaluatedAt)
	}
	return e.ID > other.ID
}
