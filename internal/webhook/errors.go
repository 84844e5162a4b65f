package webhook

import "fmt"

// ValidationError reports a malformed or incomplete inbound payload.
// It is a client error: rejected at the boundary, never stored, not retried.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}
