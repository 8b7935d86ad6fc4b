package usecase

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// StableSerialize renders JSON deterministically: object keys sorted
// alphabetically at every depth, array order preserved, null kept literal.
// Sender and verifier may build the config independently, so the output must
// not depend on key insertion order.
func StableSerialize(raw json.RawMessage) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber() // keep numbers verbatim across the round trip

	var value any
	if err := decoder.Decode(&value); err != nil {
		return "", fmt.Errorf("decode config: %w", err)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// BuildCanonical produces the v1 signing string:
// tenantId|stage|requestId|sha256Hex(message)|sha256Hex(stableSerialize(config)).
func BuildCanonical(tenantID, stage, requestID, message string, config json.RawMessage) (string, error) {
	stable, err := StableSerialize(config)
	if err != nil {
		return "", err
	}
	msgHash := sha256.Sum256([]byte(message))
	cfgHash := sha256.Sum256([]byte(stable))
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		tenantID, stage, requestID,
		hex.EncodeToString(msgHash[:]),
		hex.EncodeToString(cfgHash[:]),
	), nil
}

// SignCanonical returns the lowercase hex HMAC-SHA256 of the canonical string
// keyed by the tenant secret. Fully deterministic.
func SignCanonical(canonical, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}
