package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
	"github.com/Irineu96Silva/projeto-turion/internal/core/ports"
)

// configSchemaV1 is the contract every stage config must satisfy before it
// enters the version chain.
const configSchemaV1 = `{
  "type": "object",
  "required": ["tone", "cta_style", "template_fallback", "guardrails", "questions"],
  "additionalProperties": false,
  "properties": {
    "tone": {"enum": ["formal", "casual", "empathetic"]},
    "cta_style": {"enum": ["soft", "direct", "urgent"]},
    "template_fallback": {"type": "string", "minLength": 1, "maxLength": 500},
    "guardrails": {
      "type": "object",
      "required": ["on", "max_tokens", "blocked_topics"],
      "additionalProperties": false,
      "properties": {
        "on": {"type": "boolean"},
        "max_tokens": {"type": "integer", "minimum": 1, "maximum": 4096},
        "blocked_topics": {"type": "array", "items": {"type": "string"}}
      }
    },
    "questions": {"type": "array", "items": {"type": "string"}}
  }
}`

var ErrInvalidConfig = errors.New("invalid stage config")

// ConfigService maintains the per-(tenant, stage) configuration chain.
type ConfigService struct {
	repo   ports.StageConfigRepository
	schema *santhosh.Schema
}

func NewConfigService(repo ports.StageConfigRepository) (*ConfigService, error) {
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if err := compiler.AddResource("config-v1.json", strings.NewReader(configSchemaV1)); err != nil {
		return nil, fmt.Errorf("add config schema: %w", err)
	}
	schema, err := compiler.Compile("config-v1.json")
	if err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	return &ConfigService{repo: repo, schema: schema}, nil
}

func (s *ConfigService) GetActive(ctx context.Context, tenantID, stage string) (domain.StageConfig, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return domain.StageConfig{}, err
	}
	if err := domain.ValidateStage(stage); err != nil {
		return domain.StageConfig{}, err
	}
	return s.repo.FindActive(ctx, tenantID, stage)
}

// GetActiveOrNull is the fallback-path lookup: absence is not an error.
// The second return is false when no active row exists.
func (s *ConfigService) GetActiveOrNull(ctx context.Context, tenantID, stage string) (domain.StageConfig, bool, error) {
	cfg, err := s.repo.FindActive(ctx, tenantID, stage)
	if err != nil {
		if errors.Is(err, domain.ErrConfigNotFound) {
			return domain.StageConfig{}, false, nil
		}
		return domain.StageConfig{}, false, err
	}
	return cfg, true, nil
}

// Upsert validates the config and appends a new active version. Deactivation
// of the superseded row and the audit entry commit atomically with it.
func (s *ConfigService) Upsert(ctx context.Context, tenantID, stage string, configJSON json.RawMessage, actorID string) (domain.StageConfig, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return domain.StageConfig{}, err
	}
	if err := domain.ValidateStage(stage); err != nil {
		return domain.StageConfig{}, err
	}
	if err := s.validate(configJSON); err != nil {
		return domain.StageConfig{}, err
	}
	return s.repo.UpsertVersion(ctx, tenantID, stage, configJSON, actorID)
}

func (s *ConfigService) validate(configJSON json.RawMessage) error {
	decoder := json.NewDecoder(bytes.NewReader(configJSON))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return fmt.Errorf("%w: not valid json", ErrInvalidConfig)
	}
	if err := s.schema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
