package ports

import (
	"context"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type TenantRepository interface {
	FindBySlug(ctx context.Context, slug string) (domain.Tenant, error)
	Upsert(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error)
	FindPlanByName(ctx context.Context, name string) (domain.Plan, error)
}

type APIKeyRepository interface {
	FindByTokenHash(ctx context.Context, tokenHash string) (domain.APIKey, error)
	Upsert(ctx context.Context, key domain.APIKey) error
}
