// Package webhook turns raw phishing-engine callbacks into canonical events
// and drives the ingestion pipeline: normalize → append → reconcile → notify.
package webhook

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ignite/phishsim-monitor/internal/domain"
)

// FlexString decodes a JSON string or number into its string form. The
// engine sends numeric campaign and user ids; canonical events carry them
// as strings.
type FlexString string

// UnmarshalJSON accepts strings, numbers, and null.
func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// RawPayload is the engine's webhook body. Payload is kept raw: it is
// retained verbatim on the event for audit and parsed opportunistically for
// known detail fields, with no schema validation.
type RawPayload struct {
	Email        string          `json:"email"`
	CampaignID   FlexString      `json:"campaign_id"`
	CampaignName string          `json:"campaign_name"`
	UserID       FlexString      `json:"user_id"`
	Message      string          `json:"message"`
	Payload      json.RawMessage `json:"payload"`
}

// payloadDetails are the known nested fields inside the engine payload.
type payloadDetails struct {
	IP      string `json:"ip"`
	Browser struct {
		UserAgent string `json:"user_agent"`
	} `json:"browser"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// classifyTokens are checked in this exact order; the first substring found
// in the message wins. A message containing both "opened" and "clicked"
// resolves to email_opened. The engine depends on this precedence.
var classifyTokens = []struct {
	token string
	kind  domain.EventKind
}{
	{"opened", domain.EventOpened},
	{"clicked", domain.EventClicked},
	{"submitted", domain.EventSubmitted},
	{"reported", domain.EventReported},
}

// Classify derives the canonical event kind from the engine's message text.
func Classify(message string) domain.EventKind {
	m := strings.ToLower(message)
	for _, c := range classifyTokens {
		if strings.Contains(m, c.token) {
			return c.kind
		}
	}
	return domain.EventUnknown
}

// Normalize converts a raw payload into a canonical event. It is a pure
// transform: no I/O, no timestamps (the store assigns receipt time).
// Fails with *ValidationError iff email or campaign_id is missing or empty,
// the only mandatory-field check.
func Normalize(p RawPayload) (*domain.WebhookEvent, error) {
	if strings.TrimSpace(p.Email) == "" {
		return nil, &ValidationError{Field: "email"}
	}
	if strings.TrimSpace(string(p.CampaignID)) == "" {
		return nil, &ValidationError{Field: "campaign_id"}
	}

	evt := &domain.WebhookEvent{
		Kind:         Classify(p.Message),
		Email:        p.Email,
		CampaignID:   string(p.CampaignID),
		CampaignName: p.CampaignName,
		UserID:       string(p.UserID),
		Message:      p.Message,
		Details:      p.Payload,
	}

	if len(p.Payload) > 0 {
		var d payloadDetails
		// Unparseable details are not an error: the raw payload is still
		// retained on the event.
		if err := json.Unmarshal(p.Payload, &d); err == nil {
			evt.SourceIP = d.IP
			evt.UserAgent = d.Browser.UserAgent
			evt.Latitude = d.Latitude
			evt.Longitude = d.Longitude
		}
	}

	return evt, nil
}
