package ports

import (
	"context"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type SecretRepository interface {
	// InsertAndMarkRotated persists a new encrypted secret row and stamps
	// rotated_at on every existing row for the tenant, in one transaction.
	InsertAndMarkRotated(ctx context.Context, secret domain.TenantSecret) (domain.TenantSecret, error)
	// FindCurrent returns the most recently created secret row for the
	// tenant, or domain.ErrSecretNotFound.
	FindCurrent(ctx context.Context, tenantID string) (domain.TenantSecret, error)
}
