package api

import (
	"errors"
	"net/http"

	"github.com/okian/tally/internal/adapters/mq/queue"
	"github.com/okian/tally/internal/adapters/repository"
	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/ingest"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/period"
	"github.com/okian/tally/internal/domain/scoring"
)

// Error kinds returned by the handlers.
var (
	ErrServe        = errors.New("serve failed")
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// Error tags a failure with the operation that produced it and an optional kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap tags err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// classify maps an error to the status and code written to the client.
func classify(err error) (int, string) {
	var integrity *scoring.DataIntegrityError
	switch {
	case errors.As(err, &integrity):
		return http.StatusConflict, "data_integrity"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrInvalidLimit):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, service.ErrInvalidMetric):
		return http.StatusBadRequest, "invalid_metric"
	case errors.Is(err, period.ErrInvalidPeriod):
		return http.StatusBadRequest, "invalid_period"
	case errors.Is(err, model.ErrInvalidScoreEvent), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ingest.ErrUnknownKPI):
		return http.StatusUnprocessableEntity, "unknown_kpi"
	case errors.Is(err, ingest.ErrKPIDeleted):
		return http.StatusUnprocessableEntity, "kpi_deleted"
	case errors.Is(err, ingest.ErrPointsExceedMax):
		return http.StatusUnprocessableEntity, "points_exceed_max"
	case errors.Is(err, model.ErrDuplicateDay), errors.Is(err, model.ErrInvalidAttendance):
		return http.StatusConflict, "data_integrity"
	case errors.Is(err, queue.ErrFull), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, queue.ErrClosed), errors.Is(err, service.ErrNotStarted), errors.Is(err, ingest.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

var errRouteNotFound = errors.New("route not found")
