package domain

import (
	"encoding/json"
	"time"
)

// ExecutionLogEntry is an append-only, best-effort record of one simulator
// run. Losing an entry is tolerated; it must never block a response.
type ExecutionLogEntry struct {
	ID              string
	TenantID        string
	RequestID       string
	Stage           string
	LatencyMs       int
	Confidence      float64
	Fallback        bool
	ErrorCode       string
	MessageRedacted string
	ResponseJSON    json.RawMessage
	CreatedAt       time.Time
}
