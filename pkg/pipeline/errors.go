package pipeline

import "errors"

var (
	// ErrNoItems is returned when the catalog holds nothing usable.
	ErrNoItems = errors.New("no usable items found")

	// ErrStopped is returned when the worker observes a cancellation
	// request. It marks a "stopped by request" outcome, not a failure.
	ErrStopped = errors.New("stopped by request")
)
