package reconcile

import (
	"context"

	"github.com/ignite/phishsim-monitor/internal/domain"
)

// CampaignRepository defines the data access contract the reconciler needs.
// Campaign rows are provisioned elsewhere (sync against the upstream engine);
// the reconciler only reads and mutates existing ones. Implementations must
// be safe for concurrent use.
type CampaignRepository interface {
	// FindByExternalID returns the campaign whose external id equals id
	// (string comparison), or ErrNotFound.
	FindByExternalID(ctx context.Context, id string) (*domain.Campaign, error)

	// Save persists the full aggregate (stats + results).
	Save(ctx context.Context, c *domain.Campaign) error
}

// OutcomeKind classifies the result of a reconcile call.
type OutcomeKind string

const (
	// OutcomeApplied means the aggregate was mutated and saved.
	OutcomeApplied OutcomeKind = "applied"
	// OutcomeNoCampaign means no campaign matched the event's campaign id.
	OutcomeNoCampaign OutcomeKind = "no_campaign"
	// OutcomeNoTarget means the campaign has no result record for the
	// event's email.
	OutcomeNoTarget OutcomeKind = "no_target"
	// OutcomeIgnored means the event kind carries no aggregate semantics.
	OutcomeIgnored OutcomeKind = "ignored"
	// OutcomeLookupError means the campaign could not be read.
	OutcomeLookupError OutcomeKind = "lookup_error"
	// OutcomePersistError means the mutation was computed but not durably
	// saved. The stored event remains the source of truth for replay.
	OutcomePersistError OutcomeKind = "persist_error"
)

// Outcome reports what a reconcile call did. Err is non-nil only for the
// error kinds.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

// NoOp reports whether the outcome is an accepted no-op (not an error,
// ingestion still succeeds).
func (o Outcome) NoOp() bool {
	return o.Kind == OutcomeNoCampaign || o.Kind == OutcomeNoTarget || o.Kind == OutcomeIgnored
}

// Failed reports whether the outcome must surface as an error to the caller.
func (o Outcome) Failed() bool {
	return o.Kind == OutcomeLookupError || o.Kind == OutcomePersistError
}
