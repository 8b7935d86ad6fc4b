package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Irineu96Silva/projeto-turion/internal/adapters/sqlite/gormsqlite"
	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type tenantSecretModel struct {
	ID        string     `gorm:"column:id;primaryKey"`
	TenantID  string     `gorm:"column:tenant_id;not null"`
	SecretEnc string     `gorm:"column:secret_enc;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;not null"`
	RotatedAt *time.Time `gorm:"column:rotated_at"`
}

func (tenantSecretModel) TableName() string {
	return "tenant_secrets"
}

type SecretRepository struct {
	db *gormsqlite.DB
}

func NewSecretRepository(db *gormsqlite.DB) *SecretRepository {
	return &SecretRepository{db: db}
}

func (r *SecretRepository) InsertAndMarkRotated(ctx context.Context, secret domain.TenantSecret) (domain.TenantSecret, error) {
	model := tenantSecretModel{
		ID:        secret.ID,
		TenantID:  secret.TenantID,
		SecretEnc: secret.SecretEnc,
		CreatedAt: secret.CreatedAt.UTC(),
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert secret: %w", err)
		}
		// Stamps every row for the tenant, the new one included. The stamp is
		// telemetry; retrieval orders by created_at and ignores it.
		now := time.Now().UTC()
		if err := tx.Model(&tenantSecretModel{}).
			Where("tenant_id = ?", secret.TenantID).
			Update("rotated_at", now).Error; err != nil {
			return fmt.Errorf("mark rotated: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.TenantSecret{}, err
	}

	return toSecretDomain(model), nil
}

func (r *SecretRepository) FindCurrent(ctx context.Context, tenantID string) (domain.TenantSecret, error) {
	var model tenantSecretModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("tenant_id = ?", tenantID).
			Order("created_at DESC").
			First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TenantSecret{}, domain.ErrSecretNotFound
		}
		return domain.TenantSecret{}, fmt.Errorf("find current secret: %w", err)
	}
	return toSecretDomain(model), nil
}

func toSecretDomain(model tenantSecretModel) domain.TenantSecret {
	return domain.TenantSecret{
		ID:        model.ID,
		TenantID:  model.TenantID,
		SecretEnc: model.SecretEnc,
		CreatedAt: model.CreatedAt,
		RotatedAt: model.RotatedAt,
	}
}
