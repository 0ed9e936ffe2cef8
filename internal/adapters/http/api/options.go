package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
)

const defaultMaxBodyBytes = 1 << 20

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed by CORS. Empty keeps the default "*".
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithRequestLogger enables per-request access logs on l.
func WithRequestLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.requestLog = l
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithMount registers extra routes on the router, e.g. the API docs.
func WithMount(mount func(chi.Router)) Option {
	return func(s *Server) {
		if mount != nil {
			s.mounts = append(s.mounts, mount)
		}
	}
}
