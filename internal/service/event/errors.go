package event

import "errors"

// Sentinel errors for the event log service layer.
var (
	// ErrStorage wraps any failure of the durable medium. Callers surface
	// it as a 5xx, distinct from validation failures.
	ErrStorage = errors.New("event storage failure")
)
