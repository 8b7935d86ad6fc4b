package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
	"github.com/Irineu96Silva/projeto-turion/internal/core/ports"
)

const (
	fallbackReplyDefault = "Desculpe, não consegui processar sua mensagem. Tente novamente."
	fallbackAction       = "retry"
	fallbackConfidence   = 0.1
)

// SimulatorService runs the end-to-end signed-request pipeline:
// load config → load secret → sign → call engine, falling back to a locally
// synthesized reply on any internal failure. The caller always gets a
// well-formed response; errors never escape Run. Execution logging and usage
// metering happen detached, after the response is decided.
type SimulatorService struct {
	configs *ConfigService
	vault   *VaultService
	engine  ports.InferenceClient
	logs    ports.ExecutionLogRepository
	usage   *UsageService
	runner  *DetachedRunner
}

func NewSimulatorService(
	configs *ConfigService,
	vault *VaultService,
	engine ports.InferenceClient,
	logs ports.ExecutionLogRepository,
	usage *UsageService,
	runner *DetachedRunner,
) *SimulatorService {
	return &SimulatorService{
		configs: configs,
		vault:   vault,
		engine:  engine,
		logs:    logs,
		usage:   usage,
		runner:  runner,
	}
}

func (s *SimulatorService) Run(ctx context.Context, tenantID string, req domain.SimulationRequest) domain.SimulationResponse {
	start := time.Now()
	requestID := uuid.NewString()

	response, errCode := s.attempt(ctx, tenantID, requestID, req)
	fallback := errCode != ""
	if fallback {
		response = s.fallbackResponse(ctx, tenantID, req)
	}

	latency := time.Since(start)
	s.runner.Go("execution-log", func(ctx context.Context) error {
		return s.logExecution(ctx, tenantID, requestID, req, response, latency, fallback, errCode)
	})
	if !fallback {
		s.runner.Go("usage-increment", func(ctx context.Context) error {
			return s.usage.Increment(ctx, tenantID)
		})
	}

	return response
}

// attempt walks the happy path. A non-empty error code means the pipeline
// must fall back.
func (s *SimulatorService) attempt(ctx context.Context, tenantID, requestID string, req domain.SimulationRequest) (domain.SimulationResponse, string) {
	cfg, err := s.configs.GetActive(ctx, tenantID, req.Stage)
	if err != nil {
		return domain.SimulationResponse{}, classifyInternal(err)
	}

	secret, err := s.vault.GetCurrent(ctx, tenantID)
	if err != nil {
		return domain.SimulationResponse{}, classifyInternal(err)
	}

	canonical, err := BuildCanonical(tenantID, req.Stage, requestID, req.Message, cfg.ConfigJSON)
	if err != nil {
		return domain.SimulationResponse{}, classifyInternal(err)
	}
	signature := SignCanonical(canonical, secret)

	payload := domain.EnginePayload{
		TenantID:        tenantID,
		Stage:           req.Stage,
		RequestID:       requestID,
		MessageOriginal: req.Message,
		Name:            req.Name,
		Origin:          req.Origin,
		Config:          cfg.ConfigJSON,
	}

	response, err := s.engine.Call(ctx, payload, signature)
	if err != nil {
		log.Printf("simulator fallback tenant=%s stage=%s: %v", tenantID, req.Stage, err)
		return domain.SimulationResponse{}, classifyInternal(err)
	}
	return response, ""
}

// fallbackResponse synthesizes the sentinel-marked reply. It tries the
// stage's fallback template; if even that lookup fails, the fixed default
// message is used.
func (s *SimulatorService) fallbackResponse(ctx context.Context, tenantID string, req domain.SimulationRequest) domain.SimulationResponse {
	reply := fallbackReplyDefault

	cfg, ok, err := s.configs.GetActiveOrNull(ctx, tenantID, req.Stage)
	if err == nil && ok {
		if template := fallbackTemplate(cfg.ConfigJSON); template != "" {
			reply = strings.ReplaceAll(template, "{name}", req.Name)
		}
	}

	return domain.SimulationResponse{
		Reply:          reply,
		NextBestAction: fallbackAction,
		Confidence:     fallbackConfidence,
	}
}

func (s *SimulatorService) logExecution(
	ctx context.Context,
	tenantID, requestID string,
	req domain.SimulationRequest,
	response domain.SimulationResponse,
	latency time.Duration,
	fallback bool,
	errCode string,
) error {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return s.logs.Insert(ctx, domain.ExecutionLogEntry{
		ID:              uuid.NewString(),
		TenantID:        tenantID,
		RequestID:       requestID,
		Stage:           req.Stage,
		LatencyMs:       int(latency.Milliseconds()),
		Confidence:      response.Confidence,
		Fallback:        fallback,
		ErrorCode:       errCode,
		MessageRedacted: RedactMessage(req.Message),
		ResponseJSON:    responseJSON,
		CreatedAt:       time.Now().UTC(),
	})
}

func fallbackTemplate(configJSON json.RawMessage) string {
	var cfg struct {
		TemplateFallback string `json:"template_fallback"`
	}
	if err := json.Unmarshal(configJSON, &cfg); err != nil {
		return ""
	}
	return cfg.TemplateFallback
}

// classifyInternal maps a pipeline failure to the error code stored in the
// execution log.
func classifyInternal(err error) string {
	var engineErr *domain.EngineCallError
	if errors.As(err, &engineErr) {
		return string(engineErr.Code)
	}
	switch {
	case errors.Is(err, domain.ErrConfigNotFound):
		return "CONFIG_NOT_FOUND"
	case errors.Is(err, domain.ErrSecretNotFound):
		return "SECRET_NOT_FOUND"
	case errors.Is(err, domain.ErrDecryptionFailure):
		return "DECRYPTION_FAILURE"
	default:
		return "INTERNAL"
	}
}
