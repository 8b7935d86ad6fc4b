package usecase

import (
	"context"
	"time"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
	"github.com/Irineu96Silva/projeto-turion/internal/core/ports"
)

// UsageService meters successful requests against the tenant's monthly plan
// quota. The gate (CheckLimit) and the increment are deliberately not atomic
// with each other: a concurrent burst may overshoot the limit slightly. Soft
// limit, accepted policy.
type UsageService struct {
	repo ports.UsageRepository
	now  func() time.Time
}

func NewUsageService(repo ports.UsageRepository) *UsageService {
	return &UsageService{repo: repo, now: time.Now}
}

func (s *UsageService) Increment(ctx context.Context, tenantID string) error {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return err
	}
	return s.repo.Increment(ctx, tenantID, s.currentMonth())
}

func (s *UsageService) CheckLimit(ctx context.Context, tenantID string) (domain.QuotaStatus, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return domain.QuotaStatus{}, err
	}
	return s.repo.FindQuota(ctx, tenantID, s.currentMonth())
}

func (s *UsageService) currentMonth() string {
	return s.now().UTC().Format("2006-01")
}
