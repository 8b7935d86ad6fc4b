package domain

import (
	"regexp"
	"time"
)

var identPattern = regexp.MustCompile(`^[a-zA-Z0-9._:/-]+$`)

// Plan is a billing tier carrying the monthly request quota.
type Plan struct {
	ID               string
	Name             string
	MaxRequestsMonth int
}

type Tenant struct {
	ID        string
	Name      string
	Slug      string
	PlanID    string
	CreatedAt time.Time
}

type APIKey struct {
	TokenHash string
	TenantID  string
	Name      string
	Active    bool
	CreatedAt time.Time
}

func ValidateTenantID(id string) error {
	if id == "" || !identPattern.MatchString(id) {
		return ErrInvalidTenantID
	}
	return nil
}

// ValidateStage accepts any identifier-shaped stage name. Stages are
// tenant-defined behavioral contexts, not a closed enum.
func ValidateStage(stage string) error {
	if stage == "" || !identPattern.MatchString(stage) {
		return ErrInvalidStage
	}
	return nil
}
