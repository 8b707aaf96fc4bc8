package model

import "time"

// Entity is a recommendation result record. The vendor does not promise a
// schema beyond JSON objects, so the raw record is kept intact and the
// fields we read get typed accessors.
type Entity map[string]any

// Name returns the entity's display name, or "" if absent.
func (e Entity) Name() string {
	if v, ok := e["name"].(string); ok {
		return v
	}
	return ""
}

// ID returns the entity identifier, or "" if absent.
func (e Entity) ID() string {
	if v, ok := e["entity_id"].(string); ok {
		return v
	}
	return ""
}

// RunStatus tracks a persisted pipeline run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusProcessing RunStatus = "processing"
	RunStatusProcessed  RunStatus = "processed"
	RunStatusError      RunStatus = "error"
)

// CompetitorRun is a persisted competitor-discovery run.
type CompetitorRun struct {
	ID           string    `json:"id"`
	Company      Company   `json:"company"`
	Status       RunStatus `json:"status"`
	Competitors  []Entity  `json:"competitors,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CampaignRun is a persisted campaign-generation run.
type CampaignRun struct {
	ID           string        `json:"id"`
	Company      Company       `json:"company"`
	Title        string        `json:"title,omitempty"`
	Status       RunStatus     `json:"status"`
	Transcript   Transcript    `json:"transcript,omitempty"`
	Plan         *CampaignPlan `json:"plan,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
