package event

import (
	"context"

	"github.com/ignite/phishsim-monitor/internal/domain"
)

// Repository defines the data access contract for the event log.
// Implementations must be safe for concurrent use and must serialize the
// write path: two concurrent Append calls may never interleave their writes
// against the durable medium.
type Repository interface {
	// Append persists the event, assigns its creation-ordered id, and
	// returns the stored copy.
	Append(ctx context.Context, evt *domain.WebhookEvent) (*domain.WebhookEvent, error)

	// List returns events matching the filter ordered by occurred_at DESC
	// (ties broken by id DESC, so the order is stable), plus the total
	// match count before pagination.
	List(ctx context.Context, f Filter) ([]domain.WebhookEvent, int, error)

	// Clear deletes all events, or all events for one campaign when
	// campaignID is non-empty. Returns the number of deleted events.
	Clear(ctx context.Context, campaignID string) (int, error)
}

// Filter controls filtering and pagination for event lists.
// Zero-value fields are not applied.
type Filter struct {
	CampaignID string
	Kind       domain.EventKind
	// Search matches Email by case-insensitive substring.
	Search string
	Offset int
	Limit  int
}
