package api

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/model"
)

// scoreEventRequest mirrors the OpenAPI schema for POST /api/v1/score-events.
// id and evaluatedAt are optional; the server fills them in.
type scoreEventRequest struct {
	ID          string     `json:"id"`
	StaffID     string     `json:"staffId"`
	KPIID       string     `json:"kpiId"`
	Points      *float64   `json:"points"`
	EvaluatedAt *time.Time `json:"evaluatedAt"`
	Comment     string     `json:"comment"`
}

func (req scoreEventRequest) event(now time.Time) (model.ScoreEvent, error) {
	if req.Points == nil {
		return model.ScoreEvent{}, errors.New("missing points")
	}
	e := model.ScoreEvent{
		ID:          req.ID,
		StaffID:     req.StaffID,
		KPIID:       req.KPIID,
		Points:      *req.Points,
		EvaluatedAt: now,
		Comment:     req.Comment,
	}
	if req.EvaluatedAt != nil {
		e.EvaluatedAt = *req.EvaluatedAt
	}
	return e, nil
}

// handlePostScoreEvent handles POST /api/v1/score-events.
func (s *Server) handlePostScoreEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score_event"

	var req scoreEventRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	e, err := req.event(s.deps.Now())
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	accepted, err := s.deps.Submit(r.Context(), e)
	switch {
	case errors.Is(err, service.ErrDuplicate):
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ID: accepted.ID, Duplicate: true})
	case err != nil:
		writeFailure(w, Wrap(op, err))
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: accepted.ID})
	}
}
