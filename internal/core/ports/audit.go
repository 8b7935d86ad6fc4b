package ports

import (
	"context"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type AuditRepository interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}
