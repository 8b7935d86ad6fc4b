package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Irineu96Silva/projeto-turion/internal/adapters/sqlite/gormsqlite"
	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type planModel struct {
	ID               string `gorm:"column:id;primaryKey"`
	Name             string `gorm:"column:name;not null"`
	MaxRequestsMonth int    `gorm:"column:max_requests_month;not null"`
}

func (planModel) TableName() string {
	return "plans"
}

type tenantModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;not null"`
	PlanID    string    `gorm:"column:plan_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (tenantModel) TableName() string {
	return "tenants"
}

type apiKeyModel struct {
	TokenHash string    `gorm:"column:token_hash;primaryKey"`
	TenantID  string    `gorm:"column:tenant_id;not null"`
	Name      string    `gorm:"column:name;not null"`
	Active    bool      `gorm:"column:active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (apiKeyModel) TableName() string {
	return "api_keys"
}

type TenantRepository struct {
	db *gormsqlite.DB
}

func NewTenantRepository(db *gormsqlite.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) FindBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	var model tenantModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("slug = ?", slug).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Tenant{}, domain.ErrTenantNotFound
		}
		return domain.Tenant{}, fmt.Errorf("find tenant: %w", err)
	}
	return toTenantDomain(model), nil
}

func (r *TenantRepository) Upsert(ctx context.Context, tenant domain.Tenant) (domain.Tenant, error) {
	model := tenantModel{
		ID:        tenant.ID,
		Name:      tenant.Name,
		Slug:      tenant.Slug,
		PlanID:    tenant.PlanID,
		CreatedAt: tenant.CreatedAt.UTC(),
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "plan_id"}),
		}).Create(&model).Error
	})
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("upsert tenant: %w", err)
	}
	return r.FindBySlug(ctx, tenant.Slug)
}

func (r *TenantRepository) FindPlanByName(ctx context.Context, name string) (domain.Plan, error) {
	var model planModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("name = ?", name).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Plan{}, domain.ErrNotFound
		}
		return domain.Plan{}, fmt.Errorf("find plan: %w", err)
	}
	return domain.Plan{ID: model.ID, Name: model.Name, MaxRequestsMonth: model.MaxRequestsMonth}, nil
}

func toTenantDomain(model tenantModel) domain.Tenant {
	return domain.Tenant{
		ID:        model.ID,
		Name:      model.Name,
		Slug:      model.Slug,
		PlanID:    model.PlanID,
		CreatedAt: model.CreatedAt,
	}
}

type APIKeyRepository struct {
	db *gormsqlite.DB
}

func NewAPIKeyRepository(db *gormsqlite.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) FindByTokenHash(ctx context.Context, tokenHash string) (domain.APIKey, error) {
	var model apiKeyModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("token_hash = ?", tokenHash).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.APIKey{}, domain.ErrNotFound
		}
		return domain.APIKey{}, fmt.Errorf("find api key: %w", err)
	}

	return domain.APIKey{
		TokenHash: model.TokenHash,
		TenantID:  model.TenantID,
		Name:      model.Name,
		Active:    model.Active,
		CreatedAt: model.CreatedAt,
	}, nil
}

func (r *APIKeyRepository) Upsert(ctx context.Context, key domain.APIKey) error {
	model := apiKeyModel{
		TokenHash: key.TokenHash,
		TenantID:  key.TenantID,
		Name:      key.Name,
		Active:    key.Active,
		CreatedAt: key.CreatedAt.UTC(),
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"tenant_id", "name", "active"}),
		}).Create(&model).Error
	})
	if err != nil {
		return fmt.Errorf("upsert api key: %w", err)
	}
	return nil
}
