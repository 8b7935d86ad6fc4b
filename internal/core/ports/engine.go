package ports

import (
	"context"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

// InferenceClient calls the external inference engine. Failures are returned
// as *domain.EngineCallError so the orchestrator can log the classification.
type InferenceClient interface {
	Call(ctx context.Context, payload domain.EnginePayload, signature string) (domain.SimulationResponse, error)
}
