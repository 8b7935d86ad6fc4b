package domain

import (
	"encoding/json"
	"time"
)

// AuditEntry records who changed what. Entries for config version bumps are
// written inside the same transaction as the bump itself.
type AuditEntry struct {
	ID        string
	TenantID  string
	ActorID   string
	Action    string
	Entity    string
	EntityID  string
	DiffJSON  json.RawMessage
	CreatedAt time.Time
}

// AuditDiff is the before/after payload stored in DiffJSON.
type AuditDiff struct {
	Previous json.RawMessage `json:"previous"`
	Next     json.RawMessage `json:"next"`
}

type AuditFilter struct {
	TenantID string
	Entity   string
	Limit    int
}
