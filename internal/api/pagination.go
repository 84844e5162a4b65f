package api

import (
	"net/http"
	"strconv"

	"github.com/ignite/phishsim-monitor/internal/domain"
)

// PaginationMeta echoes the effective paging window plus the total match
// count before pagination.
type PaginationMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// EventPage is the response envelope for every event list endpoint.
type EventPage struct {
	Events     []domain.WebhookEvent `json:"events"`
	Pagination PaginationMeta        `json:"pagination"`
}

// ParsePagination extracts offset and limit from query params. Negative or
// malformed values fall back to 0/defaultLimit; limit is capped at maxLimit.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return offset, limit
}

// NewEventPage builds the response envelope, normalizing nil slices so the
// JSON always carries an array.
func NewEventPage(events []domain.WebhookEvent, total, offset, limit int) EventPage {
	if events == nil {
		events = []domain.WebhookEvent{}
	}
	return EventPage{
		Events:     events,
		Pagination: PaginationMeta{Total: total, Offset: offset, Limit: limit},
	}
}
