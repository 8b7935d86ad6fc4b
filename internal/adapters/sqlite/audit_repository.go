package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Irineu96Silva/projeto-turion/internal/adapters/sqlite/gormsqlite"
	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

// AuditRepository reads the audit trail. Writes happen inside the config
// version transaction in StageConfigRepository; there is no standalone write
// path, keeping the trail tied to the mutations it describes.
type AuditRepository struct {
	db *gormsqlite.DB
}

func NewAuditRepository(db *gormsqlite.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	var models []auditLogModel

	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&auditLogModel{}).Where("tenant_id = ?", filter.TenantID)
		if filter.Entity != "" {
			query = query.Where("entity = ?", filter.Entity)
		}
		return query.Order("created_at DESC").Limit(filter.Limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	entries := make([]domain.AuditEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, domain.AuditEntry{
			ID:        model.ID,
			TenantID:  model.TenantID,
			ActorID:   model.ActorID,
			Action:    model.Action,
			Entity:    model.Entity,
			EntityID:  model.EntityID,
			DiffJSON:  json.RawMessage(model.DiffJSON),
			CreatedAt: model.CreatedAt,
		})
	}
	return entries, nil
}
