package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

func TestUsageConcurrentIncrements(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "acme", "free")
	repo := NewUsageRepository(db)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Increment(ctx, tenant.ID, "2026-08"); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent increment: %v", err)
	}

	status, err := repo.FindQuota(ctx, tenant.ID, "2026-08")
	if err != nil {
		t.Fatalf("find quota: %v", err)
	}
	if status.Usage != workers {
		t.Fatalf("expected %d requests counted, got %d", workers, status.Usage)
	}
}

func TestUsageQuotaWithoutUsageRow(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "acme", "free")
	repo := NewUsageRepository(db)

	status, err := repo.FindQuota(context.Background(), tenant.ID, "2026-08")
	if err != nil {
		t.Fatalf("find quota: %v", err)
	}
	if status.Usage != 0 {
		t.Fatalf("expected zero usage, got %d", status.Usage)
	}
	if !status.Allowed {
		t.Fatal("fresh tenant must be allowed")
	}
	if status.Limit != 100 || status.PlanName != "free" {
		t.Fatalf("unexpected plan join: %+v", status)
	}
}

func TestUsageQuotaBoundary(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db, "acme", "free")
	repo := NewUsageRepository(db)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if err := repo.Increment(ctx, tenant.ID, "2026-08"); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}

	status, err := repo.FindQuota(ctx, tenant.ID, "2026-08")
	if err != nil {
		t.Fatalf("find quota: %v", err)
	}
	if status.Allowed {
		t.Fatalf("usage %d at limit %d must not be allowed", status.Usage, status.Limit)
	}

	// A new month starts a fresh counter.
	next, err := repo.FindQuota(ctx, tenant.ID, "2026-09")
	if err != nil {
		t.Fatalf("find quota next month: %v", err)
	}
	if !next.Allowed || next.Usage != 0 {
		t.Fatalf("expected fresh month, got %+v", next)
	}
}

func TestUsageQuotaUnknownTenant(t *testing.T) {
	db := newTestDB(t)
	repo := NewUsageRepository(db)

	_, err := repo.FindQuota(context.Background(), "missing", "2026-08")
	if !errors.Is(err, domain.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}
