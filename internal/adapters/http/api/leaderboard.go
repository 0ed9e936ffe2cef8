package api

import (
	"net/http"
	"strconv"

	"github.com/okian/tally/internal/domain/types"
)

// handleGetLeaderboard handles GET /api/v1/leaderboard?month=YYYY-MM&metric=points&limit=N.
// metric defaults to points; limit defaults to 0, meaning every row.
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	q := r.URL.Query()

	p, err := s.monthParam(r)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	metric := types.MetricPoints
	if m := q.Get("metric"); m != "" {
		metric = types.Metric(m)
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	entries, err := s.deps.Leaderboard(r.Context(), p, metric, limit)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleGetCompositeBoard handles GET /api/v1/composites?month=YYYY-MM.
func (s *Server) handleGetCompositeBoard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_composites"
	p, err := s.monthParam(r)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	rows, err := s.deps.CompositeBoard(r.Context(), p)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
