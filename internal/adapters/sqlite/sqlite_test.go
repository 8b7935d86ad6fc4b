package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Irineu96Silva/projeto-turion/internal/adapters/sqlite/gormsqlite"
	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
	"github.com/Irineu96Silva/projeto-turion/migrations"
	"github.com/google/uuid"
)

func newTestDB(t *testing.T) *gormsqlite.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := gormsqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	sqlDB, err := db.WriteSQLDB()
	if err != nil {
		t.Fatalf("writer sql db: %v", err)
	}
	if err := migrations.Up(context.Background(), sqlDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedTenant(t *testing.T, db *gormsqlite.DB, slug, planName string) domain.Tenant {
	t.Helper()
	ctx := context.Background()

	repo := NewTenantRepository(db)
	plan, err := repo.FindPlanByName(ctx, planName)
	if err != nil {
		t.Fatalf("find plan %s: %v", planName, err)
	}
	tenant, err := repo.Upsert(ctx, domain.Tenant{
		ID:        uuid.NewString(),
		Name:      slug,
		Slug:      slug,
		PlanID:    plan.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return tenant
}
