package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

func newTestConfigService(t *testing.T) (*ConfigService, *stubConfigRepo) {
	t.Helper()
	repo := newStubConfigRepo()
	service, err := NewConfigService(repo)
	if err != nil {
		t.Fatalf("new config service: %v", err)
	}
	return service, repo
}

func TestConfigUpsertAcceptsValidConfig(t *testing.T) {
	service, _ := newTestConfigService(t)

	cfg, err := service.Upsert(context.Background(), "tenant-1", "billing", json.RawMessage(validConfigJSON), "tester")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if cfg.Version != 1 || !cfg.IsActive {
		t.Fatalf("unexpected config row: %+v", cfg)
	}
}

func TestConfigUpsertRejectsInvalidConfig(t *testing.T) {
	service, _ := newTestConfigService(t)
	ctx := context.Background()

	cases := map[string]string{
		"not json":        `{"tone":`,
		"bad tone":        `{"tone":"angry","cta_style":"soft","template_fallback":"x","guardrails":{"on":true,"max_tokens":10,"blocked_topics":[]},"questions":[]}`,
		"missing field":   `{"tone":"formal","cta_style":"soft","guardrails":{"on":true,"max_tokens":10,"blocked_topics":[]},"questions":[]}`,
		"extra field":     `{"tone":"formal","cta_style":"soft","template_fallback":"x","guardrails":{"on":true,"max_tokens":10,"blocked_topics":[]},"questions":[],"extra":1}`,
		"max_tokens high": `{"tone":"formal","cta_style":"soft","template_fallback":"x","guardrails":{"on":true,"max_tokens":9999,"blocked_topics":[]},"questions":[]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := service.Upsert(ctx, "tenant-1", "billing", json.RawMessage(raw), "tester")
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfigGetActiveValidation(t *testing.T) {
	service, _ := newTestConfigService(t)
	ctx := context.Background()

	if _, err := service.GetActive(ctx, "", "billing"); !errors.Is(err, domain.ErrInvalidTenantID) {
		t.Fatalf("expected invalid tenant id, got %v", err)
	}
	if _, err := service.GetActive(ctx, "tenant-1", "no spaces allowed"); !errors.Is(err, domain.ErrInvalidStage) {
		t.Fatalf("expected invalid stage, got %v", err)
	}
	if _, err := service.GetActive(ctx, "tenant-1", "billing"); !errors.Is(err, domain.ErrConfigNotFound) {
		t.Fatalf("expected config not found, got %v", err)
	}
}

func TestConfigGetActiveOrNullAbsence(t *testing.T) {
	service, _ := newTestConfigService(t)

	_, ok, err := service.GetActiveOrNull(context.Background(), "tenant-1", "billing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no active config")
	}
}
