package domain

import (
	"encoding/json"
	"time"
)

// EventKind enumerates the canonical interaction event types reported by the
// phishing engine.
type EventKind string

const (
	EventOpened    EventKind = "email_opened"
	EventClicked   EventKind = "link_clicked"
	EventSubmitted EventKind = "form_submitted"
	EventReported  EventKind = "email_reported"
	EventUnknown   EventKind = "unknown"
)

// Valid returns true if k is one of the canonical event kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventOpened, EventClicked, EventSubmitted, EventReported, EventUnknown:
		return true
	}
	return false
}

// WebhookEvent is a canonical interaction event. Events are immutable once
// stored: the log is append-only and entries are removed only by explicit
// clear operations.
type WebhookEvent struct {
	// ID is assigned by the event store in creation order.
	ID           int64     `json:"id" db:"id"`
	Kind         EventKind `json:"kind" db:"kind"`
	Email        string    `json:"email" db:"email"`
	CampaignID   string    `json:"campaign_id" db:"campaign_id"`
	CampaignName string    `json:"campaign_name,omitempty" db:"campaign_name"`
	UserID       string    `json:"user_id,omitempty" db:"user_id"`
	SourceIP     string    `json:"source_ip,omitempty" db:"source_ip"`
	UserAgent    string    `json:"user_agent,omitempty" db:"user_agent"`
	Latitude     *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64  `json:"longitude,omitempty" db:"longitude"`

	// Message is the original engine message text; Details is the raw
	// nested payload. Both are retained verbatim for audit and debugging.
	Message string          `json:"message" db:"message"`
	Details json.RawMessage `json:"details,omitempty" db:"details"`

	// OccurredAt is server receipt time. The upstream payload carries no
	// authoritative timestamp.
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
}
