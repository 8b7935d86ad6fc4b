package domain

import (
	"encoding/json"
	"time"
)

// StageConfig is one row of a tenant's per-stage configuration chain.
// Invariants: at most one active row per (tenant, stage); Version is strictly
// increasing with no gaps or duplicates; rows are never deleted, only
// deactivated when superseded.
type StageConfig struct {
	ID         string
	TenantID   string
	Stage      string
	Version    int
	ConfigJSON json.RawMessage
	IsActive   bool
	UpdatedAt  time.Time
}
