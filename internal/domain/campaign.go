package domain

import "time"

// ResultStatus enumerates how far a target has progressed through a
// simulated phish. Higher Rank means further along.
type ResultStatus string

const (
	StatusSent      ResultStatus = "SENT"
	StatusOpened    ResultStatus = "OPENED"
	StatusClicked   ResultStatus = "CLICKED"
	StatusSubmitted ResultStatus = "SUBMITTED"
	StatusReported  ResultStatus = "REPORTED"
)

var statusRanks = map[ResultStatus]int{
	StatusSent:      0,
	StatusOpened:    1,
	StatusClicked:   2,
	StatusSubmitted: 3,
	StatusReported:  4,
}

// Rank returns the position of s in the status lattice
// SENT < OPENED < CLICKED < SUBMITTED < REPORTED. Unknown statuses rank
// below SENT so they never win an advance comparison.
func (s ResultStatus) Rank() int {
	if r, ok := statusRanks[s]; ok {
		return r
	}
	return -1
}

// CampaignStats holds per-campaign interaction counters. Counters are
// non-decreasing and incremented at most once per (target, kind).
type CampaignStats struct {
	Opened    int `json:"opened" db:"opened"`
	Clicked   int `json:"clicked" db:"clicked"`
	Submitted int `json:"submitted" db:"submitted"`
	Reported  int `json:"reported" db:"reported"`
}

// TargetResult is the per-target record inside a campaign aggregate.
type TargetResult struct {
	Email      string       `json:"email"`
	Status     ResultStatus `json:"status"`
	OpenDate   *time.Time   `json:"open_date,omitempty"`
	ClickDate  *time.Time   `json:"click_date,omitempty"`
	SubmitDate *time.Time   `json:"submit_date,omitempty"`
	ReportDate *time.Time   `json:"report_date,omitempty"`
	IP         string       `json:"ip,omitempty"`
	Latitude   *float64     `json:"latitude,omitempty"`
	Longitude  *float64     `json:"longitude,omitempty"`
}

// Campaign is the mutable projection of an upstream phishing campaign.
// It is mutated exclusively by the reconciler; dashboards only read it.
type Campaign struct {
	ID string `json:"id" db:"id"`

	// ExternalID is the upstream engine's campaign id. Upstream ids are
	// numeric but canonical events carry string ids, so it is stored and
	// compared as a string.
	ExternalID string `json:"external_id" db:"external_id"`

	Name      string         `json:"name" db:"name"`
	Stats     CampaignStats  `json:"stats"`
	Results   []TargetResult `json:"results"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// Result returns a pointer to the target record matching email, or nil.
func (c *Campaign) Result(email string) *TargetResult {
	for i := range c.Results {
		if c.Results[i].Email == email {
			return &c.Results[i]
		}
	}
	return nil
}
