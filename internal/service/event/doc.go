// Package event implements the canonical webhook event log.
//
// The service layer owns the append-only discipline: events get their
// timestamp and creation-ordered id here, are never mutated afterwards, and
// are removed only by explicit clear operations. It depends on the
// Repository interface defined in this package and should never import
// from api/.
//
// Repository implementations live in repository/postgres/ and repository/memory/.
package event
