package usecase

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

const testMasterKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testMasterKey(t *testing.T) []byte {
	t.Helper()
	key, err := ParseMasterKey(testMasterKeyHex)
	if err != nil {
		t.Fatalf("parse master key: %v", err)
	}
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testMasterKey(t)

	for _, plaintext := range []string{"", "a", "hello world", strings.Repeat("x", 4096)} {
		encoded, err := Encrypt(plaintext, key)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		decrypted, err := Decrypt(encoded, key)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if decrypted != plaintext {
			t.Fatalf("round trip mismatch: got %q want %q", decrypted, plaintext)
		}
	}
}

func TestEncryptProducesDistinctBlobs(t *testing.T) {
	key := testMasterKey(t)

	first, err := Encrypt("same plaintext", key)
	if err != nil {
		t.Fatalf("first encrypt: %v", err)
	}
	second, err := Encrypt("same plaintext", key)
	if err != nil {
		t.Fatalf("second encrypt: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct ciphertexts for identical plaintext")
	}

	for _, blob := range []string{first, second} {
		decrypted, err := Decrypt(blob, key)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if decrypted != "same plaintext" {
			t.Fatalf("unexpected plaintext %q", decrypted)
		}
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	key := testMasterKey(t)
	otherKey, err := ParseMasterKey(strings.Repeat("ff", 32))
	if err != nil {
		t.Fatalf("parse other key: %v", err)
	}

	encoded, err := Encrypt("secret", key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := Decrypt(encoded, otherKey); !errors.Is(err, domain.ErrDecryptionFailure) {
		t.Fatalf("expected decryption failure, got %v", err)
	}
}

func TestDecryptTamperedBlobFails(t *testing.T) {
	key := testMasterKey(t)

	encoded, err := Encrypt("secret", key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("decode blob: %v", err)
	}
	blob[len(blob)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(blob)

	if _, err := Decrypt(tampered, key); !errors.Is(err, domain.ErrDecryptionFailure) {
		t.Fatalf("expected decryption failure, got %v", err)
	}
}

func TestDecryptTruncatedBlobFails(t *testing.T) {
	key := testMasterKey(t)
	short := base64.StdEncoding.EncodeToString([]byte("too short"))
	if _, err := Decrypt(short, key); !errors.Is(err, domain.ErrDecryptionFailure) {
		t.Fatalf("expected decryption failure, got %v", err)
	}
}

func TestParseMasterKeyLength(t *testing.T) {
	if _, err := ParseMasterKey("abcd"); err == nil {
		t.Fatal("expected error for short key")
	}
	if _, err := ParseMasterKey(strings.Repeat("zz", 32)); err == nil {
		t.Fatal("expected error for non-hex key")
	}
	key, err := ParseMasterKey(testMasterKeyHex)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(key))
	}
}
