package usecase

import (
	"context"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
	"github.com/Irineu96Silva/projeto-turion/internal/core/ports"
)

type AuditService struct {
	repo ports.AuditRepository
}

func NewAuditService(repo ports.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	if err := domain.ValidateTenantID(filter.TenantID); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.repo.List(ctx, filter)
}
