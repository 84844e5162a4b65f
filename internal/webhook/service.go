package webhook

import (
	"context"
	"fmt"

	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/notify"
	"github.com/ignite/phishsim-monitor/internal/pkg/logger"
	"github.com/ignite/phishsim-monitor/internal/service/event"
	"github.com/ignite/phishsim-monitor/internal/service/reconcile"
)

// Service runs the ingestion pipeline for one inbound webhook call:
// normalize, append to the log, reconcile the campaign aggregate, publish
// to live clients. Steps run to completion or fail; none are cancellable
// by the sender.
type Service struct {
	events     *event.Service
	reconciler *reconcile.Reconciler
	publisher  notify.Publisher
}

// NewService wires the pipeline.
func NewService(events *event.Service, reconciler *reconcile.Reconciler, publisher notify.Publisher) *Service {
	return &Service{events: events, reconciler: reconciler, publisher: publisher}
}

// Ingest processes one raw engine callback and returns the stored canonical
// event. Error cases:
//   - *ValidationError: nothing was stored.
//   - event.ErrStorage: the event was lost; logged distinctly upstream.
//   - reconcile persist/lookup failure: the event IS stored (the returned
//     event is non-nil alongside the error) and remains the source of truth
//     for replay.
func (s *Service) Ingest(ctx context.Context, p RawPayload) (*domain.WebhookEvent, error) {
	evt, err := Normalize(p)
	if err != nil {
		return nil, err
	}

	stored, err := s.events.Append(ctx, evt)
	if err != nil {
		return nil, err
	}

	outcome := s.reconciler.Reconcile(ctx, stored)
	switch {
	case outcome.Failed():
		return stored, fmt.Errorf("reconcile event %d: %w", stored.ID, outcome.Err)
	case outcome.NoOp():
		// Accepted: campaign or target out of sync with the engine, or an
		// unrecognized kind. The event is retained for audit either way.
		logger.Debug("reconcile no-op",
			"outcome", string(outcome.Kind),
			"campaign_id", stored.CampaignID,
			"email", stored.Email)
	}

	// Fire-and-forget: a broken subscriber never fails the webhook response.
	s.publisher.Publish(stored)

	logger.Info("webhook event ingested",
		"event_id", fmt.Sprint(stored.ID),
		"kind", string(stored.Kind),
		"campaign_id", stored.CampaignID,
		"outcome", string(outcome.Kind))
	return stored, nil
}
