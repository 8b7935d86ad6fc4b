package ports

import (
	"context"
	"encoding/json"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type StageConfigRepository interface {
	// FindActive returns the single active row for (tenant, stage), or
	// domain.ErrConfigNotFound.
	FindActive(ctx context.Context, tenantID, stage string) (domain.StageConfig, error)
	// UpsertVersion bumps the version chain in one transaction: it reads the
	// active row, deactivates it, inserts the new row as active with the next
	// version, and writes an audit entry. Concurrent calls for the same
	// (tenant, stage) serialize; versions are gap-free.
	UpsertVersion(ctx context.Context, tenantID, stage string, configJSON json.RawMessage, actorID string) (domain.StageConfig, error)
}
