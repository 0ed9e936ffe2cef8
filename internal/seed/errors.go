package seed

import "errors"

// Error kinds returned by the seeder.
var (
	ErrInvalidConfig = errors.New("invalid seed config")
	ErrSubmit        = errors.New("submit score events")
)
