// Package reconcile applies canonical webhook events to campaign aggregates.
//
// The reconciler is the only writer of campaign state. Events for the same
// campaign are applied strictly one after another (keyed mutex in-process,
// optional distributed lock across replicas); events for different campaigns
// proceed concurrently. Events that match no campaign or no target are
// accepted no-ops: campaigns drift out of sync with the upstream engine and
// that is not an error.
package reconcile
