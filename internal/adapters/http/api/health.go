package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Time: s.deps.Now().UTC().Format(time.RFC3339)})
}

// handleStats handles GET /stats.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.GetStats())
}

// handleListKPIs handles GET /api/v1/kpis. Soft-deleted definitions are
// listed with isDeleted set.
func (s *Server) handleListKPIs(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_kpis"
	kpis, err := s.deps.KPIs(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, kpis)
}
