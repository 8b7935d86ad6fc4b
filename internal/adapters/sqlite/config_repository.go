package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Irineu96Silva/projeto-turion/internal/adapters/sqlite/gormsqlite"
	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type stageConfigModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	TenantID   string    `gorm:"column:tenant_id;not null"`
	Stage      string    `gorm:"column:stage;not null"`
	Version    int       `gorm:"column:version;not null"`
	ConfigJSON string    `gorm:"column:config_json;not null"`
	IsActive   bool      `gorm:"column:is_active;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

func (stageConfigModel) TableName() string {
	return "stage_configs"
}

type auditLogModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	TenantID  string    `gorm:"column:tenant_id;not null"`
	ActorID   string    `gorm:"column:actor_id;not null"`
	Action    string    `gorm:"column:action;not null"`
	Entity    string    `gorm:"column:entity;not null"`
	EntityID  string    `gorm:"column:entity_id;not null"`
	DiffJSON  string    `gorm:"column:diff_json;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (auditLogModel) TableName() string {
	return "audit_logs"
}

// StageConfigRepository owns the version chain. All mutation flows through
// one write transaction on the single-writer connection, so competing
// upserts for the same (tenant, stage) cannot interleave.
type StageConfigRepository struct {
	db *gormsqlite.DB
}

func NewStageConfigRepository(db *gormsqlite.DB) *StageConfigRepository {
	return &StageConfigRepository{db: db}
}

func (r *StageConfigRepository) FindActive(ctx context.Context, tenantID, stage string) (domain.StageConfig, error) {
	var model stageConfigModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("tenant_id = ? AND stage = ? AND is_active = ?", tenantID, stage, true).
			First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.StageConfig{}, domain.ErrConfigNotFound
		}
		return domain.StageConfig{}, fmt.Errorf("find active config: %w", err)
	}
	return toConfigDomain(model), nil
}

func (r *StageConfigRepository) UpsertVersion(ctx context.Context, tenantID, stage string, configJSON json.RawMessage, actorID string) (domain.StageConfig, error) {
	var inserted stageConfigModel

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var current stageConfigModel
		hasCurrent := true
		err := tx.Where("tenant_id = ? AND stage = ? AND is_active = ?", tenantID, stage, true).
			First(&current).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hasCurrent = false
		case err != nil:
			return fmt.Errorf("load current config: %w", err)
		}

		nextVersion := 1
		previousJSON := json.RawMessage("null")
		if hasCurrent {
			nextVersion = current.Version + 1
			previousJSON = json.RawMessage(current.ConfigJSON)
			if err := tx.Model(&stageConfigModel{}).
				Where("id = ?", current.ID).
				Update("is_active", false).Error; err != nil {
				return fmt.Errorf("deactivate config: %w", err)
			}
		}

		inserted = stageConfigModel{
			ID:         uuid.NewString(),
			TenantID:   tenantID,
			Stage:      stage,
			Version:    nextVersion,
			ConfigJSON: string(configJSON),
			IsActive:   true,
			UpdatedAt:  time.Now().UTC(),
		}
		if err := tx.Create(&inserted).Error; err != nil {
			return fmt.Errorf("insert config version: %w", err)
		}

		diff, err := json.Marshal(domain.AuditDiff{
			Previous: previousJSON,
			Next:     configJSON,
		})
		if err != nil {
			return fmt.Errorf("marshal audit diff: %w", err)
		}
		audit := auditLogModel{
			ID:        uuid.NewString(),
			TenantID:  tenantID,
			ActorID:   actorID,
			Action:    "config.update",
			Entity:    "stage_configs",
			EntityID:  inserted.ID,
			DiffJSON:  string(diff),
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("insert audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.StageConfig{}, err
	}

	return toConfigDomain(inserted), nil
}

func toConfigDomain(model stageConfigModel) domain.StageConfig {
	return domain.StageConfig{
		ID:         model.ID,
		TenantID:   model.TenantID,
		Stage:      model.Stage,
		Version:    model.Version,
		ConfigJSON: json.RawMessage(model.ConfigJSON),
		IsActive:   model.IsActive,
		UpdatedAt:  model.UpdatedAt,
	}
}
