package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/tally/internal/domain/period"
)

// handleGetComposite handles GET /api/v1/staff/{staffID}/composite?month=YYYY-MM.
func (s *Server) handleGetComposite(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_composite"
	p, err := s.monthParam(r)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	report, err := s.deps.Composite(r.Context(), chi.URLParam(r, "staffID"), p)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleGetAttendance handles GET /api/v1/staff/{staffID}/attendance?month=YYYY-MM&step=N.
// A step moves the month and keeps it within the current year.
func (s *Server) handleGetAttendance(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_attendance"
	p, err := s.monthParam(r)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if raw := r.URL.Query().Get("step"); raw != "" {
		step, err := strconv.Atoi(raw)
		if err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		p = period.Navigate(s.deps.Now(), p, step)
	}
	report, err := s.deps.AttendanceReport(r.Context(), chi.URLParam(r, "staffID"), p)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
