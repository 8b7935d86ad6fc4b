package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Irineu96Silva/projeto-turion/internal/adapters/sqlite/gormsqlite"
	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type executionLogModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	TenantID        string    `gorm:"column:tenant_id;not null"`
	RequestID       string    `gorm:"column:request_id;not null"`
	Stage           string    `gorm:"column:stage;not null"`
	LatencyMs       int       `gorm:"column:latency_ms;not null"`
	Confidence      float64   `gorm:"column:confidence;not null"`
	Fallback        bool      `gorm:"column:fallback;not null"`
	ErrorCode       string    `gorm:"column:error_code"`
	MessageRedacted string    `gorm:"column:message_redacted"`
	ResponseJSON    string    `gorm:"column:response_json"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
}

func (executionLogModel) TableName() string {
	return "execution_logs"
}

type ExecutionLogRepository struct {
	db *gormsqlite.DB
}

func NewExecutionLogRepository(db *gormsqlite.DB) *ExecutionLogRepository {
	return &ExecutionLogRepository{db: db}
}

func (r *ExecutionLogRepository) Insert(ctx context.Context, entry domain.ExecutionLogEntry) error {
	model := executionLogModel{
		ID:              entry.ID,
		TenantID:        entry.TenantID,
		RequestID:       entry.RequestID,
		Stage:           entry.Stage,
		LatencyMs:       entry.LatencyMs,
		Confidence:      entry.Confidence,
		Fallback:        entry.Fallback,
		ErrorCode:       entry.ErrorCode,
		MessageRedacted: entry.MessageRedacted,
		ResponseJSON:    string(entry.ResponseJSON),
		CreatedAt:       entry.CreatedAt.UTC(),
	}

	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return fmt.Errorf("insert execution log: %w", err)
	}
	return nil
}
