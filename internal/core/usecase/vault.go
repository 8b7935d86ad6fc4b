package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
	"github.com/Irineu96Silva/projeto-turion/internal/core/ports"
)

// VaultService custodies per-tenant shared secrets. Secrets live encrypted at
// rest; the master key is loaded once at process start and never changes.
type VaultService struct {
	repo      ports.SecretRepository
	masterKey []byte
}

func NewVaultService(repo ports.SecretRepository, masterKey []byte) *VaultService {
	return &VaultService{repo: repo, masterKey: masterKey}
}

// Rotate generates a fresh secret, stores it encrypted, and returns the
// plaintext. This is the only moment the plaintext is ever handed out.
func (s *VaultService) Rotate(ctx context.Context, tenantID string) (domain.RotatedSecret, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return domain.RotatedSecret{}, err
	}

	entropy := make([]byte, 32)
	if _, err := rand.Read(entropy); err != nil {
		return domain.RotatedSecret{}, fmt.Errorf("generate secret: %w", err)
	}
	plaintext := hex.EncodeToString(entropy)

	encrypted, err := Encrypt(plaintext, s.masterKey)
	if err != nil {
		return domain.RotatedSecret{}, fmt.Errorf("encrypt secret: %w", err)
	}

	row, err := s.repo.InsertAndMarkRotated(ctx, domain.TenantSecret{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		SecretEnc: encrypted,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.RotatedSecret{}, err
	}

	return domain.RotatedSecret{Secret: plaintext, CreatedAt: row.CreatedAt}, nil
}

// GetCurrent decrypts the tenant's most recently created secret.
func (s *VaultService) GetCurrent(ctx context.Context, tenantID string) (string, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return "", err
	}

	row, err := s.repo.FindCurrent(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return Decrypt(row.SecretEnc, s.masterKey)
}
