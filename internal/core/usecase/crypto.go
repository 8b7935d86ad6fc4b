package usecase

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

const (
	gcmIVLength  = 12 // 96 bits, recommended for GCM
	gcmTagLength = 16
)

// Encrypt seals plaintext with AES-256-GCM under a fresh random IV and
// returns base64(iv || tag || ciphertext). Two calls with the same inputs
// produce different blobs.
func Encrypt(plaintext string, masterKey []byte) (string, error) {
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("new gcm: %w", err)
	}

	iv := make([]byte, gcmIVLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("read iv: %w", err)
	}

	// Seal appends ciphertext||tag; the stored layout is iv||tag||ciphertext.
	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-gcmTagLength]
	tag := sealed[len(sealed)-gcmTagLength:]

	blob := make([]byte, 0, gcmIVLength+gcmTagLength+len(ciphertext))
	blob = append(blob, iv...)
	blob = append(blob, tag...)
	blob = append(blob, ciphertext...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens base64(iv || tag || ciphertext). Tag verification failure or
// a malformed blob yields domain.ErrDecryptionFailure, never garbage output.
func Decrypt(encoded string, masterKey []byte) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", domain.ErrDecryptionFailure
	}
	if len(blob) < gcmIVLength+gcmTagLength {
		return "", domain.ErrDecryptionFailure
	}

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("new gcm: %w", err)
	}

	iv := blob[:gcmIVLength]
	tag := blob[gcmIVLength : gcmIVLength+gcmTagLength]
	ciphertext := blob[gcmIVLength+gcmTagLength:]

	sealed := make([]byte, 0, len(ciphertext)+gcmTagLength)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", domain.ErrDecryptionFailure
	}
	return string(plaintext), nil
}

// ParseMasterKey decodes the 64-hex-character process master key.
func ParseMasterKey(hexKey string) ([]byte, error) {
	if len(hexKey) != 64 {
		return nil, errors.New("master key must be 64 hex characters (32 bytes)")
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode master key: %w", err)
	}
	return key, nil
}
