package domain

import "time"

// TenantSecret is one encrypted shared-secret row. Multiple rows may exist
// per tenant; the current secret is always the most recently created one.
// RotatedAt is telemetry only and must never be used as a retrieval filter:
// rotation stamps it on every row for the tenant, including the row the same
// rotation just inserted.
type TenantSecret struct {
	ID        string
	TenantID  string
	SecretEnc string
	CreatedAt time.Time
	RotatedAt *time.Time
}

// RotatedSecret carries the plaintext returned by a rotation. The plaintext
// is handed out exactly once and is not retrievable afterwards.
type RotatedSecret struct {
	Secret    string
	CreatedAt time.Time
}
