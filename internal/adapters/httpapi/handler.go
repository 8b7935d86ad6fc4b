package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
	"github.com/Irineu96Silva/projeto-turion/internal/core/usecase"
)

type ctxKey string

const (
	timeFormat             = "2006-01-02T15:04:05.999999999Z07:00"
	actorCtxKey     ctxKey = "api_actor"
	maxJSONBodySize        = 1 << 20
)

type Handler struct {
	authService   *usecase.AuthService
	configService *usecase.ConfigService
	vaultService  *usecase.VaultService
	usageService  *usecase.UsageService
	auditService  *usecase.AuditService
	simulator     *usecase.SimulatorService
}

func NewHandler(
	authService *usecase.AuthService,
	configService *usecase.ConfigService,
	vaultService *usecase.VaultService,
	usageService *usecase.UsageService,
	auditService *usecase.AuditService,
	simulator *usecase.SimulatorService,
) *Handler {
	return &Handler{
		authService:   authService,
		configService: configService,
		vaultService:  vaultService,
		usageService:  usageService,
		auditService:  auditService,
		simulator:     simulator,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", h.healthz)

	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAPIKey)
		pr.Route("/v1/tenants/{tenantID}", func(tr chi.Router) {
			tr.Use(h.requireTenantScope)

			tr.With(h.requireQuota).Post("/simulator/run", h.runSimulator)

			tr.Put("/config/{stage}", h.upsertConfig)
			tr.Get("/config/{stage}", h.getConfig)
			tr.Post("/secrets/rotate", h.rotateSecret)
			tr.Get("/usage", h.getUsage)
			tr.Get("/audit", h.listAudit)
		})
	})

	return r
}

type simulatorRequest struct {
	Stage   string `json:"stage"`
	Message string `json:"message_original"`
	Name    string `json:"name"`
	Origin  string `json:"origin"`
}

type configRequest struct {
	Config json.RawMessage `json:"config"`
}

type configResponse struct {
	ID        string          `json:"id"`
	Stage     string          `json:"stage"`
	Version   int             `json:"config_version"`
	Config    json.RawMessage `json:"config_json"`
	IsActive  bool            `json:"is_active"`
	UpdatedAt string          `json:"updated_at"`
}

type auditResponse struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actor_id"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Diff      json.RawMessage `json:"diff"`
	CreatedAt string          `json:"created_at"`
}

// runSimulator always answers 200 with a well-formed simulation response.
// Internal pipeline failures surface only through the fallback sentinel
// (confidence 0.1, action "retry"), never as an error status.
func (h *Handler) runSimulator(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	var req simulatorRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := ensureEOF(decoder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	simReq := domain.SimulationRequest{
		Stage:   req.Stage,
		Message: req.Message,
		Name:    req.Name,
		Origin:  req.Origin,
	}
	if err := simReq.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	response := h.simulator.Run(r.Context(), tenantID, simReq)
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) upsertConfig(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	stage := chi.URLParam(r, "stage")
	actor := actorFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	var req configRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := ensureEOF(decoder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	cfg, err := h.configService.Upsert(r.Context(), tenantID, stage, req.Config, actor)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toConfigResponse(cfg))
}

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	stage := chi.URLParam(r, "stage")

	cfg, err := h.configService.GetActive(r.Context(), tenantID, stage)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toConfigResponse(cfg))
}

func (h *Handler) rotateSecret(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	rotated, err := h.vaultService.Rotate(r.Context(), tenantID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	// Plaintext leaves the process here and only here.
	writeJSON(w, http.StatusOK, map[string]string{
		"secret":     rotated.Secret,
		"created_at": rotated.CreatedAt.UTC().Format(timeFormat),
	})
}

func (h *Handler) getUsage(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	status, err := h.usageService.CheckLimit(r.Context(), tenantID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"usage":   status.Usage,
		"limit":   status.Limit,
		"plan":    status.PlanName,
		"allowed": status.Allowed,
	})
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be integer")
			return
		}
		limit = parsed
	}

	entries, err := h.auditService.List(r.Context(), domain.AuditFilter{
		TenantID: tenantID,
		Entity:   r.URL.Query().Get("entity"),
		Limit:    limit,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]auditResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, auditResponse{
			ID:        entry.ID,
			ActorID:   entry.ActorID,
			Action:    entry.Action,
			Entity:    entry.Entity,
			EntityID:  entry.EntityID,
			Diff:      entry.DiffJSON,
			CreatedAt: entry.CreatedAt.UTC().Format(timeFormat),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// requireAPIKey authenticates the caller and records the key name as actor.
func (h *Handler) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if token == "" {
			auth := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				token = strings.TrimSpace(auth[7:])
			}
		}

		apiKey, err := h.authService.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, usecase.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), actorCtxKey, apiKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireTenantScope rejects keys used against a tenant other than their own.
func (h *Handler) requireTenantScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey, ok := r.Context().Value(actorCtxKey).(domain.APIKey)
		if !ok || apiKey.TenantID != chi.URLParam(r, "tenantID") {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireQuota is the admission gate in front of the simulator. The check is
// a soft limit: it runs before the pipeline and is not atomic with the
// increment that follows a success.
func (h *Handler) requireQuota(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")

		status, err := h.usageService.CheckLimit(r.Context(), tenantID)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		if !status.Allowed {
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error": domain.ErrQuotaExceeded.Error(),
				"usage": status.Usage,
				"limit": status.Limit,
				"plan":  status.PlanName,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func toConfigResponse(cfg domain.StageConfig) configResponse {
	return configResponse{
		ID:        cfg.ID,
		Stage:     cfg.Stage,
		Version:   cfg.Version,
		Config:    cfg.ConfigJSON,
		IsActive:  cfg.IsActive,
		UpdatedAt: cfg.UpdatedAt.UTC().Format(timeFormat),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("encode json response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTenantID),
		errors.Is(err, domain.ErrInvalidStage),
		errors.Is(err, domain.ErrInvalidMessage),
		errors.Is(err, usecase.ErrInvalidConfig):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConfigNotFound),
		errors.Is(err, domain.ErrSecretNotFound),
		errors.Is(err, domain.ErrTenantNotFound),
		errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func ensureEOF(decoder *json.Decoder) error {
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return errors.New("extra json tokens")
}

func actorFromContext(ctx context.Context) string {
	apiKey, ok := ctx.Value(actorCtxKey).(domain.APIKey)
	if !ok || apiKey.Name == "" {
		return "api"
	}
	return apiKey.Name
}
