package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/pkg/distlock"
	"github.com/ignite/phishsim-monitor/internal/pkg/logger"
)

// LockFactory builds a cross-process lock for a campaign key. Nil means
// single-instance deployment; the in-process keyed mutex alone then
// serializes same-campaign reconciles.
type LockFactory func(key string) distlock.DistLock

// Reconciler applies canonical events to campaign aggregates.
type Reconciler struct {
	repo  CampaignRepository
	locks LockFactory

	// storageTimeout bounds each repository call so a wedged campaign
	// store surfaces as a lookup/persist outcome, never a hang. The
	// per-campaign mutex is held across these calls, so an unbounded
	// call would also stall every later event for that campaign.
	storageTimeout time.Duration

	mu       sync.Mutex
	campaign map[string]*sync.Mutex // keyed by external campaign id
}

// New creates a reconciler over the given campaign repository.
func New(repo CampaignRepository, locks LockFactory, storageTimeout time.Duration) *Reconciler {
	if storageTimeout <= 0 {
		storageTimeout = 10 * time.Second
	}
	return &Reconciler{
		repo:           repo,
		locks:          locks,
		storageTimeout: storageTimeout,
		campaign:       make(map[string]*sync.Mutex),
	}
}

func (r *Reconciler) keyMutex(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.campaign[key]
	if !ok {
		m = &sync.Mutex{}
		r.campaign[key] = m
	}
	return m
}

// Reconcile applies evt to the matching campaign aggregate. The
// read-modify-write for one campaign is a critical section: concurrent
// events for the same campaign queue behind each other, while different
// campaigns proceed in parallel.
func (r *Reconciler) Reconcile(ctx context.Context, evt *domain.WebhookEvent) Outcome {
	if evt.Kind == domain.EventUnknown || !evt.Kind.Valid() {
		return Outcome{Kind: OutcomeIgnored}
	}

	m := r.keyMutex(evt.CampaignID)
	m.Lock()
	defer m.Unlock()

	if r.locks != nil {
		lock := r.locks("campaign:" + evt.CampaignID)
		if err := distlock.AcquireWait(ctx, lock, 50*time.Millisecond); err != nil {
			return Outcome{Kind: OutcomeLookupError, Err: fmt.Errorf("acquire campaign lock: %w", err)}
		}
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				logger.Warn("campaign lock release failed", "campaign_id", evt.CampaignID, "error", err.Error())
			}
		}()
	}

	findCtx, cancelFind := context.WithTimeout(ctx, r.storageTimeout)
	c, err := r.repo.FindByExternalID(findCtx, evt.CampaignID)
	cancelFind()
	if errors.Is(err, ErrNotFound) {
		// Campaigns get deleted or drift out of sync with the engine;
		// the event stays in the log, the aggregate stays untouched.
		return Outcome{Kind: OutcomeNoCampaign}
	}
	if err != nil {
		return Outcome{Kind: OutcomeLookupError, Err: fmt.Errorf("find campaign %s: %w", evt.CampaignID, err)}
	}

	target := c.Result(evt.Email)
	if target == nil {
		return Outcome{Kind: OutcomeNoTarget}
	}

	if !apply(target, &c.Stats, evt) {
		// Duplicate delivery with nothing new: no mutation, nothing to save.
		return Outcome{Kind: OutcomeApplied}
	}

	c.UpdatedAt = time.Now().UTC()
	saveCtx, cancelSave := context.WithTimeout(ctx, r.storageTimeout)
	err = r.repo.Save(saveCtx, c)
	cancelSave()
	if err != nil {
		// The mutation is lost but the event is already durably stored;
		// campaign id + event id make the failure replayable.
		logger.Error("campaign save failed after reconcile",
			"campaign_id", evt.CampaignID, "event_id", fmt.Sprint(evt.ID), "error", err.Error())
		return Outcome{Kind: OutcomePersistError, Err: fmt.Errorf("save campaign %s (event %d): %w", evt.CampaignID, evt.ID, err)}
	}

	return Outcome{Kind: OutcomeApplied}
}

// apply mutates the target record and stats for evt. Returns false when the
// event changed nothing (already-seen kind, no status advance, no new
// location data).
//
// Two idempotency rules hold here:
//   - Status only advances along the rank lattice; a late-arriving lower
//     event never regresses it.
//   - Each counter increments exactly once per (target, kind): the bump
//     happens only when that kind's date column transitions nil → set.
func apply(t *domain.TargetResult, stats *domain.CampaignStats, evt *domain.WebhookEvent) bool {
	var (
		status  domain.ResultStatus
		date    **time.Time
		counter *int
	)

	switch evt.Kind {
	case domain.EventOpened:
		status, date, counter = domain.StatusOpened, &t.OpenDate, &stats.Opened
	case domain.EventClicked:
		status, date, counter = domain.StatusClicked, &t.ClickDate, &stats.Clicked
	case domain.EventSubmitted:
		status, date, counter = domain.StatusSubmitted, &t.SubmitDate, &stats.Submitted
	case domain.EventReported:
		status, date, counter = domain.StatusReported, &t.ReportDate, &stats.Reported
	default:
		return false
	}

	changed := false

	if *date == nil {
		ts := evt.OccurredAt
		*date = &ts
		*counter++
		changed = true
	}

	if status.Rank() > t.Status.Rank() {
		t.Status = status
		changed = true
	}

	if evt.SourceIP != "" && t.IP != evt.SourceIP {
		t.IP = evt.SourceIP
		changed = true
	}

	// Coordinates only move as a pair, never one without the other.
	if evt.Latitude != nil && evt.Longitude != nil {
		lat, lng := *evt.Latitude, *evt.Longitude
		t.Latitude, t.Longitude = &lat, &lng
		changed = true
	}

	return changed
}
