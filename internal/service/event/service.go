package event

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/pkg/logger"
)

// DefaultLimit is applied when a list request does not specify one.
const DefaultLimit = 100

// Service implements event log business logic on top of a Repository.
// All public methods are safe for concurrent use if the underlying
// repository is concurrency-safe.
type Service struct {
	repo Repository

	// maxLimit caps page sizes; storageTimeout bounds every repository
	// call so a wedged medium surfaces as ErrStorage, never a hang.
	maxLimit       int
	storageTimeout time.Duration
}

// NewService creates an event log service backed by the given repository.
func NewService(repo Repository, maxLimit int, storageTimeout time.Duration) *Service {
	if maxLimit <= 0 {
		maxLimit = 500
	}
	if storageTimeout <= 0 {
		storageTimeout = 10 * time.Second
	}
	return &Service{repo: repo, maxLimit: maxLimit, storageTimeout: storageTimeout}
}

// Append stamps the event with server receipt time and persists it.
// The store assigns the id; the returned copy is the canonical record.
// Duplicate deliveries produce duplicate log entries: the log does not
// deduplicate, the reconciler does.
func (s *Service) Append(ctx context.Context, evt *domain.WebhookEvent) (*domain.WebhookEvent, error) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()

	stored, err := s.repo.Append(ctx, evt)
	if err != nil {
		// Event loss cannot be recovered from the request alone, so it
		// gets its own log line before the error propagates.
		logger.Error("event append failed", "campaign_id", evt.CampaignID, "kind", string(evt.Kind), "error", err.Error())
		return nil, fmt.Errorf("%w: append: %v", ErrStorage, err)
	}
	return stored, nil
}

// List returns a filtered, paginated page of the log plus the total match
// count. Limit defaults to DefaultLimit and is capped; negative offsets
// are treated as zero.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.WebhookEvent, int, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > s.maxLimit {
		f.Limit = s.maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()

	events, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list: %v", ErrStorage, err)
	}
	if events == nil {
		events = []domain.WebhookEvent{}
	}
	return events, total, nil
}

// Clear irreversibly deletes events: all of them, or one campaign's when
// campaignID is non-empty. There is no soft delete and no undo; the
// destruction of audit history is logged before it happens.
func (s *Service) Clear(ctx context.Context, campaignID string) (int, error) {
	scope := "all"
	if campaignID != "" {
		scope = "campaign " + campaignID
	}
	logger.Warn("clearing event log", "scope", scope)

	ctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()

	n, err := s.repo.Clear(ctx, campaignID)
	if err != nil {
		return 0, fmt.Errorf("%w: clear: %v", ErrStorage, err)
	}
	logger.Info("event log cleared", "scope", scope, "deleted", fmt.Sprint(n))
	return n, nil
}
