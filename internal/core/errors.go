package core

import "errors"

var (
	// ErrOutOfBounds is returned when a position lies outside the grid.
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrPathNotFound marks an unreachable goal. Planners report it as an
	// empty path; the sentinel exists for validation and log fields.
	ErrPathNotFound = errors.New("path not found")

	// ErrBatteryExhausted marks a robot that ran dry away from home.
	ErrBatteryExhausted = errors.New("battery exhausted")

	// ErrInvalidInstance is wrapped by Instance.Validate failures.
	ErrInvalidInstance = errors.New("invalid instance")
)
