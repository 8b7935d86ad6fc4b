package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

const validConfigJSON = `{
  "tone": "formal",
  "cta_style": "soft",
  "template_fallback": "Olá {name}, tente novamente em instantes.",
  "guardrails": {"on": true, "max_tokens": 512, "blocked_topics": []},
  "questions": ["Qual o valor em aberto?"]
}`

type stubConfigRepo struct {
	mu      sync.Mutex
	active  map[string]domain.StageConfig // key: tenant/stage
	findErr error
}

func newStubConfigRepo() *stubConfigRepo {
	return &stubConfigRepo{active: make(map[string]domain.StageConfig)}
}

func (s *stubConfigRepo) FindActive(_ context.Context, tenantID, stage string) (domain.StageConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return domain.StageConfig{}, s.findErr
	}
	cfg, ok := s.active[tenantID+"/"+stage]
	if !ok {
		return domain.StageConfig{}, domain.ErrConfigNotFound
	}
	return cfg, nil
}

func (s *stubConfigRepo) UpsertVersion(_ context.Context, tenantID, stage string, configJSON json.RawMessage, _ string) (domain.StageConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tenantID + "/" + stage
	next := domain.StageConfig{
		ID:         key,
		TenantID:   tenantID,
		Stage:      stage,
		Version:    s.active[key].Version + 1,
		ConfigJSON: configJSON,
		IsActive:   true,
		UpdatedAt:  time.Now().UTC(),
	}
	s.active[key] = next
	return next, nil
}

type stubEngine struct {
	response domain.SimulationResponse
	err      error
	called   int
	lastSig  string
}

func (s *stubEngine) Call(_ context.Context, _ domain.EnginePayload, signature string) (domain.SimulationResponse, error) {
	s.called++
	s.lastSig = signature
	if s.err != nil {
		return domain.SimulationResponse{}, s.err
	}
	return s.response, nil
}

type stubExecutionRepo struct {
	mu      sync.Mutex
	entries []domain.ExecutionLogEntry
	err     error
}

func (s *stubExecutionRepo) Insert(_ context.Context, entry domain.ExecutionLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

type stubUsageRepo struct {
	mu         sync.Mutex
	increments int
	err        error
}

func (s *stubUsageRepo) Increment(_ context.Context, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.increments++
	return nil
}

func (s *stubUsageRepo) FindQuota(_ context.Context, _, _ string) (domain.QuotaStatus, error) {
	return domain.QuotaStatus{Allowed: true, Limit: 100, PlanName: "free"}, nil
}

type stubSink struct {
	mu      sync.Mutex
	reports []string
}

func (s *stubSink) Report(op string, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, op)
}

type simulatorFixture struct {
	service   *SimulatorService
	configs   *stubConfigRepo
	engine    *stubEngine
	execution *stubExecutionRepo
	usage     *stubUsageRepo
	sink      *stubSink
	runner    *DetachedRunner
}

func newSimulatorFixture(t *testing.T) *simulatorFixture {
	t.Helper()

	configRepo := newStubConfigRepo()
	configService, err := NewConfigService(configRepo)
	if err != nil {
		t.Fatalf("config service: %v", err)
	}

	secretRepo := &stubSecretRepo{}
	vault := NewVaultService(secretRepo, testMasterKey(t))
	if _, err := vault.Rotate(context.Background(), "tenant-1"); err != nil {
		t.Fatalf("seed secret: %v", err)
	}

	eng := &stubEngine{response: domain.SimulationResponse{
		Reply:          "Bom dia! Como posso ajudar?",
		NextBestAction: "offer_payment_link",
		Confidence:     0.92,
	}}
	execution := &stubExecutionRepo{}
	usageRepo := &stubUsageRepo{}
	sink := &stubSink{}
	runner := NewDetachedRunner(sink)

	service := NewSimulatorService(configService, vault, eng, execution, NewUsageService(usageRepo), runner)

	if _, err := configService.Upsert(context.Background(), "tenant-1", "billing", json.RawMessage(validConfigJSON), "tester"); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	return &simulatorFixture{
		service:   service,
		configs:   configRepo,
		engine:    eng,
		execution: execution,
		usage:     usageRepo,
		sink:      sink,
		runner:    runner,
	}
}

func (f *simulatorFixture) run(t *testing.T, req domain.SimulationRequest) domain.SimulationResponse {
	t.Helper()
	response := f.service.Run(context.Background(), "tenant-1", req)
	// Drain detached side effects before asserting on them.
	if err := f.runner.Close(); err != nil {
		t.Fatalf("drain runner: %v", err)
	}
	return response
}

func TestSimulatorSuccessPath(t *testing.T) {
	f := newSimulatorFixture(t)

	response := f.run(t, domain.SimulationRequest{Stage: "billing", Message: "Hello"})

	if response.Reply != "Bom dia! Como posso ajudar?" {
		t.Fatalf("unexpected reply: %q", response.Reply)
	}
	if response.Confidence != 0.92 {
		t.Fatalf("unexpected confidence: %v", response.Confidence)
	}
	if f.engine.called != 1 {
		t.Fatalf("expected 1 engine call, got %d", f.engine.called)
	}
	if len(f.engine.lastSig) != 64 {
		t.Fatalf("expected 64-char signature, got %d", len(f.engine.lastSig))
	}
	if f.usage.increments != 1 {
		t.Fatalf("expected 1 usage increment, got %d", f.usage.increments)
	}
	if len(f.execution.entries) != 1 {
		t.Fatalf("expected 1 execution log, got %d", len(f.execution.entries))
	}
	entry := f.execution.entries[0]
	if entry.Fallback {
		t.Fatal("success path must not be marked fallback")
	}
	if entry.ErrorCode != "" {
		t.Fatalf("unexpected error code %q", entry.ErrorCode)
	}
}

func TestSimulatorFallbackOnEngineFailure(t *testing.T) {
	codes := map[string]error{
		"TIMEOUT":          &domain.EngineCallError{Code: domain.EngineTimeout, Err: errors.New("deadline")},
		"HTTP_ERROR":       &domain.EngineCallError{Code: domain.EngineHTTPError, Err: errors.New("status 502")},
		"INVALID_RESPONSE": &domain.EngineCallError{Code: domain.EngineInvalidResponse, Err: errors.New("shape")},
	}

	for code, engineErr := range codes {
		t.Run(code, func(t *testing.T) {
			f := newSimulatorFixture(t)
			f.engine.err = engineErr

			response := f.run(t, domain.SimulationRequest{Stage: "billing", Message: "Hello", Name: "Ana"})

			if response.Confidence != 0.1 {
				t.Fatalf("expected sentinel confidence 0.1, got %v", response.Confidence)
			}
			if response.NextBestAction != "retry" {
				t.Fatalf("expected retry action, got %q", response.NextBestAction)
			}
			if response.Reply != "Olá Ana, tente novamente em instantes." {
				t.Fatalf("expected template substitution, got %q", response.Reply)
			}
			if f.usage.increments != 0 {
				t.Fatal("fallback must not increment usage")
			}
			if len(f.execution.entries) != 1 {
				t.Fatalf("expected 1 execution log, got %d", len(f.execution.entries))
			}
			entry := f.execution.entries[0]
			if !entry.Fallback || entry.ErrorCode != code {
				t.Fatalf("expected fallback entry with code %s, got fallback=%v code=%q", code, entry.Fallback, entry.ErrorCode)
			}
		})
	}
}

func TestSimulatorFallbackWithoutConfigUsesDefault(t *testing.T) {
	f := newSimulatorFixture(t)
	f.configs.findErr = domain.ErrConfigNotFound

	response := f.run(t, domain.SimulationRequest{Stage: "billing", Message: "Hello"})

	if response.Reply != fallbackReplyDefault {
		t.Fatalf("expected default fallback reply, got %q", response.Reply)
	}
	if response.Confidence != 0.1 || response.NextBestAction != "retry" {
		t.Fatalf("missing fallback sentinels: %+v", response)
	}
	if f.engine.called != 0 {
		t.Fatal("engine must not be called when config is missing")
	}
	if len(f.execution.entries) != 1 || f.execution.entries[0].ErrorCode != "CONFIG_NOT_FOUND" {
		t.Fatalf("unexpected execution entries: %+v", f.execution.entries)
	}
}

func TestSimulatorFallbackOnSecretFailure(t *testing.T) {
	f := newSimulatorFixture(t)

	response := f.service.Run(context.Background(), "tenant-2", domain.SimulationRequest{Stage: "billing", Message: "Hello"})
	if err := f.runner.Close(); err != nil {
		t.Fatalf("drain runner: %v", err)
	}

	// tenant-2 has neither config nor secret; the response is still well formed.
	if response.Confidence != 0.1 || response.NextBestAction != "retry" {
		t.Fatalf("expected fallback response, got %+v", response)
	}
}

func TestSimulatorSideEffectFailuresAreSwallowed(t *testing.T) {
	f := newSimulatorFixture(t)
	f.execution.err = errors.New("db gone")
	f.usage.err = errors.New("db gone")

	response := f.run(t, domain.SimulationRequest{Stage: "billing", Message: "Hello"})

	if response.Confidence != 0.92 {
		t.Fatalf("side effect failure altered the response: %+v", response)
	}
	if len(f.sink.reports) != 2 {
		t.Fatalf("expected 2 sink reports, got %v", f.sink.reports)
	}
}

func TestSimulatorRedactsLoggedMessage(t *testing.T) {
	f := newSimulatorFixture(t)

	f.run(t, domain.SimulationRequest{Stage: "billing", Message: "contact me at alice@example.com"})

	entry := f.execution.entries[0]
	if entry.MessageRedacted != "contact me at ***@example.com" {
		t.Fatalf("expected redacted message, got %q", entry.MessageRedacted)
	}
}
