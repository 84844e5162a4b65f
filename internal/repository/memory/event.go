// Package memory provides in-memory repository implementations.
//
// They are the reference implementations for tests and back the server's
// dev mode (no DATABASE_URL). The write path is serialized by a single
// mutex, the same single-writer discipline the Postgres repos get from
// the database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/service/event"
)

// EventRepo implements event.Repository in memory.
type EventRepo struct {
	mu     sync.Mutex
	nextID int64
	events []domain.WebhookEvent
}

// NewEventRepo creates an empty in-memory event log.
func NewEventRepo() *EventRepo {
	return &EventRepo{nextID: 1}
}

// Append stores a copy of evt with the next creation-ordered id.
func (r *EventRepo) Append(ctx context.Context, evt *domain.WebhookEvent) (*domain.WebhookEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *evt
	cp.ID = r.nextID
	r.nextID++
	r.events = append(r.events, cp)

	out := cp
	return &out, nil
}

// List filters, sorts newest-first, and paginates.
func (r *EventRepo) List(ctx context.Context, f event.Filter) ([]domain.WebhookEvent, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []domain.WebhookEvent
	for _, e := range r.events {
		if f.CampaignID != "" && e.CampaignID != f.CampaignID {
			continue
		}
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(e.Email), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, e)
	}

	// occurred_at DESC, id DESC: a stable newest-first order even when
	// receipt timestamps collide.
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].OccurredAt.Equal(matched[j].OccurredAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	total := len(matched)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if f.Limit <= 0 || end > total {
		end = total
	}
	page := make([]domain.WebhookEvent, end-f.Offset)
	copy(page, matched[f.Offset:end])
	return page, total, nil
}

// Clear deletes everything, or one campaign's events.
func (r *EventRepo) Clear(ctx context.Context, campaignID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if campaignID == "" {
		n := len(r.events)
		r.events = nil
		return n, nil
	}

	kept := r.events[:0]
	deleted := 0
	for _, e := range r.events {
		if e.CampaignID == campaignID {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return deleted, nil
}
