package ports

import (
	"context"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type UsageRepository interface {
	// Increment atomically adds one to the (tenant, month) counter, creating
	// the row on first use. Safe under concurrent callers.
	Increment(ctx context.Context, tenantID, month string) error
	// FindQuota joins the tenant's plan quota with the month's usage. A
	// missing usage row counts as zero.
	FindQuota(ctx context.Context, tenantID, month string) (domain.QuotaStatus, error)
}
