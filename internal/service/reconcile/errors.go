package reconcile

import "errors"

// Sentinel errors for the reconciler.
var (
	// ErrNotFound is returned by CampaignRepository implementations when
	// no campaign matches the external id.
	ErrNotFound = errors.New("campaign not found")
)
