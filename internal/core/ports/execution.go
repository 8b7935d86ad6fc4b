package ports

import (
	"context"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type ExecutionLogRepository interface {
	Insert(ctx context.Context, entry domain.ExecutionLogEntry) error
}
