// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	json "github.com/goccy/go-json"

	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/period"
	"github.com/okian/tally/internal/domain/types"
	"github.com/okian/tally/pkg/metrics"
)

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	Now() time.Time
	KPIs(ctx context.Context) ([]model.KPIDefinition, error)
	Submit(ctx context.Context, e model.ScoreEvent) (model.ScoreEvent, error)
	Composite(ctx context.Context, staffID string, p period.Period) (service.CompositeReport, error)
	AttendanceReport(ctx context.Context, staffID string, p period.Period) (service.AttendanceReport, error)
	Leaderboard(ctx context.Context, p period.Period, metric types.Metric, limit int) ([]model.LeaderboardEntry, error)
	CompositeBoard(ctx context.Context, p period.Period) ([]service.BoardRow, error)
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the scoring API.
type Server struct {
	deps         Dependencies
	corsOrigins  []string
	requestLog   *slog.Logger
	maxBodyBytes int64
	mounts       []func(chi.Router)
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:         deps,
		corsOrigins:  []string{"*"},
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with every route registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if s.requestLog != nil {
		r.Use(httplog.RequestLogger(s.requestLog, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/kpis", s.handleListKPIs)
		r.Post("/score-events", s.handlePostScoreEvent)
		r.Route("/staff/{staffID}", func(r chi.Router) {
			r.Get("/composite", s.handleGetComposite)
			r.Get("/attendance", s.handleGetAttendance)
		})
		r.Get("/leaderboard", s.handleGetLeaderboard)
		r.Get("/composites", s.handleGetCompositeBoard)
	})

	for _, mount := range s.mounts {
		mount(r)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", NewKind("api.route", errRouteNotFound))
	})
	return r
}

// ackResponse is returned for accepted or duplicate score events.
type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// errorResponse is the JSON body of every error.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// writeFailure classifies err and writes it.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// monthParam reads ?month=YYYY-MM, defaulting to the current month.
func (s *Server) monthParam(r *http.Request) (period.Period, error) {
	return period.ParseOr(r.URL.Query().Get("month"), period.Of(s.deps.Now()))
}
