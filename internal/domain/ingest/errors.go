package ingest

import "errors"

// Rejection reasons for score events checked against the catalog.
var (
	ErrUnknownKPI         = errors.New("unknown kpi")
	ErrKPIDeleted         = errors.New("kpi is deleted")
	ErrPointsExceedMax    = errors.New("points exceed kpi maximum")
	ErrCatalogUnavailable = errors.New("kpi catalog unavailable")
)
