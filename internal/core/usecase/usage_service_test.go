package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

type recordingUsageRepo struct {
	lastMonth string
	quota     domain.QuotaStatus
}

func (r *recordingUsageRepo) Increment(_ context.Context, _, month string) error {
	r.lastMonth = month
	return nil
}

func (r *recordingUsageRepo) FindQuota(_ context.Context, _, month string) (domain.QuotaStatus, error) {
	r.lastMonth = month
	return r.quota, nil
}

func TestUsageServiceMonthFormat(t *testing.T) {
	repo := &recordingUsageRepo{}
	service := NewUsageService(repo)
	service.now = func() time.Time {
		return time.Date(2026, time.February, 28, 23, 59, 0, 0, time.UTC)
	}

	if err := service.Increment(context.Background(), "tenant-1"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if repo.lastMonth != "2026-02" {
		t.Fatalf("expected month 2026-02, got %q", repo.lastMonth)
	}
}

func TestUsageServiceCheckLimit(t *testing.T) {
	repo := &recordingUsageRepo{quota: domain.QuotaStatus{Allowed: false, Usage: 100, Limit: 100, PlanName: "free"}}
	service := NewUsageService(repo)

	status, err := service.CheckLimit(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("check limit: %v", err)
	}
	if status.Allowed {
		t.Fatal("expected quota to be exhausted")
	}
}

func TestUsageServiceRejectsInvalidTenant(t *testing.T) {
	service := NewUsageService(&recordingUsageRepo{})
	if err := service.Increment(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty tenant id")
	}
}
