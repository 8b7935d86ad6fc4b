package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Irineu96Silva/projeto-turion/internal/adapters/engine"
	"github.com/Irineu96Silva/projeto-turion/internal/adapters/errlog"
	"github.com/Irineu96Silva/projeto-turion/internal/adapters/httpapi"
	sqliteadapter "github.com/Irineu96Silva/projeto-turion/internal/adapters/sqlite"
	"github.com/Irineu96Silva/projeto-turion/internal/adapters/sqlite/gormsqlite"
	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
	"github.com/Irineu96Silva/projeto-turion/internal/core/usecase"
	"github.com/Irineu96Silva/projeto-turion/migrations"
)

type Config struct {
	Addr            string
	DBPath          string
	MasterKeyHex    string
	EngineURL       string
	EngineTimeout   time.Duration
	BootstrapTenant string
	BootstrapPlan   string
	BootstrapAPIKey string
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewServer(ctx context.Context, cfg Config) (*http.Server, io.Closer, error) {
	masterKey, err := usecase.ParseMasterKey(cfg.MasterKeyHex)
	if err != nil {
		return nil, nil, err
	}

	db, err := gormsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	migCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := migrations.Up(migCtx, writeSQLDB); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	secretRepo := sqliteadapter.NewSecretRepository(db)
	configRepo := sqliteadapter.NewStageConfigRepository(db)
	usageRepo := sqliteadapter.NewUsageRepository(db)
	executionRepo := sqliteadapter.NewExecutionLogRepository(db)
	auditRepo := sqliteadapter.NewAuditRepository(db)
	tenantRepo := sqliteadapter.NewTenantRepository(db)
	apiKeyRepo := sqliteadapter.NewAPIKeyRepository(db)

	engineClient, err := engine.NewClient(cfg.EngineURL, cfg.EngineTimeout)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("build engine client: %w", err)
	}

	vaultService := usecase.NewVaultService(secretRepo, masterKey)
	configService, err := usecase.NewConfigService(configRepo)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("build config service: %w", err)
	}
	usageService := usecase.NewUsageService(usageRepo)
	auditService := usecase.NewAuditService(auditRepo)
	authService := usecase.NewAuthService(apiKeyRepo)

	runner := usecase.NewDetachedRunner(errlog.NewSink())
	simulator := usecase.NewSimulatorService(configService, vaultService, engineClient, executionRepo, usageService, runner)

	if cfg.BootstrapTenant != "" {
		if err := bootstrap(ctx, cfg, tenantRepo, apiKeyRepo); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	handler := httpapi.NewHandler(authService, configService, vaultService, usageService, auditService, simulator)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, resourceCloser{closers: []io.Closer{runner, db}}, nil
}

// bootstrap upserts a tenant on its plan and, optionally, an API key scoped
// to it. Tenant and plan administration is otherwise out of band.
func bootstrap(ctx context.Context, cfg Config, tenants *sqliteadapter.TenantRepository, apiKeys *sqliteadapter.APIKeyRepository) error {
	bootCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	planName := cfg.BootstrapPlan
	if planName == "" {
		planName = "free"
	}
	plan, err := tenants.FindPlanByName(bootCtx, planName)
	if err != nil {
		return fmt.Errorf("bootstrap plan %q: %w", planName, err)
	}

	tenant, err := tenants.Upsert(bootCtx, domain.Tenant{
		ID:        uuid.NewString(),
		Name:      cfg.BootstrapTenant,
		Slug:      cfg.BootstrapTenant,
		PlanID:    plan.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("bootstrap tenant: %w", err)
	}

	if cfg.BootstrapAPIKey != "" {
		err := apiKeys.Upsert(bootCtx, domain.APIKey{
			TokenHash: usecase.HashToken(cfg.BootstrapAPIKey),
			TenantID:  tenant.ID,
			Name:      "bootstrap",
			Active:    true,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("bootstrap api key: %w", err)
		}
	}
	return nil
}
