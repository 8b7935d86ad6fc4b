package sqlite

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Irineu96Silva/projeto-turion/internal/adapters/sqlite/gormsqlite"
	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type tenantUsageModel struct {
	TenantID     string `gorm:"column:tenant_id;primaryKey"`
	Month        string `gorm:"column:month;primaryKey"`
	RequestCount int    `gorm:"column:request_count;not null"`
}

func (tenantUsageModel) TableName() string {
	return "tenant_usage"
}

type UsageRepository struct {
	db *gormsqlite.DB
}

func NewUsageRepository(db *gormsqlite.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Increment is insert-with-default-then-atomic-add, never read-modify-write.
func (r *UsageRepository) Increment(ctx context.Context, tenantID, month string) error {
	model := tenantUsageModel{
		TenantID:     tenantID,
		Month:        month,
		RequestCount: 1,
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "month"}},
			DoUpdates: clause.Assignments(map[string]any{
				"request_count": gorm.Expr("request_count + 1"),
			}),
		}).Create(&model).Error
	})
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

func (r *UsageRepository) FindQuota(ctx context.Context, tenantID, month string) (domain.QuotaStatus, error) {
	var row struct {
		PlanName     string
		MaxRequests  int
		RequestCount *int
	}

	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Table("tenants").
			Select("plans.name AS plan_name, plans.max_requests_month AS max_requests, tenant_usage.request_count AS request_count").
			Joins("INNER JOIN plans ON plans.id = tenants.plan_id").
			Joins("LEFT JOIN tenant_usage ON tenant_usage.tenant_id = tenants.id AND tenant_usage.month = ?", month).
			Where("tenants.id = ?", tenantID).
			Take(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.QuotaStatus{}, domain.ErrTenantNotFound
		}
		return domain.QuotaStatus{}, fmt.Errorf("find quota: %w", err)
	}

	usage := 0
	if row.RequestCount != nil {
		usage = *row.RequestCount
	}
	return domain.QuotaStatus{
		Allowed:  usage < row.MaxRequests,
		Usage:    usage,
		Limit:    row.MaxRequests,
		PlanName: row.PlanName,
	}, nil
}
