package domain

import "errors"

var (
	ErrInvalidTenantID = errors.New("invalid tenant id")
	ErrInvalidStage    = errors.New("invalid stage")
	ErrInvalidMessage  = errors.New("message must be 1..2000 characters")
	ErrNotFound        = errors.New("not found")

	ErrConfigNotFound    = errors.New("no active config for stage")
	ErrSecretNotFound    = errors.New("no secret found for tenant")
	ErrDecryptionFailure = errors.New("secret decryption failed")
	ErrQuotaExceeded     = errors.New("monthly request limit exceeded")
	ErrTenantNotFound    = errors.New("tenant not found")
)

// Engine call failure classification.
type EngineErrorCode string

const (
	EngineTimeout         EngineErrorCode = "TIMEOUT"
	EngineHTTPError       EngineErrorCode = "HTTP_ERROR"
	EngineInvalidResponse EngineErrorCode = "INVALID_RESPONSE"
	EngineUnknown         EngineErrorCode = "UNKNOWN"
)

// EngineCallError wraps a failed external engine call with its classification.
// The code ends up in the execution log so operators can tell timeouts apart
// from shape mismatches.
type EngineCallError struct {
	Code EngineErrorCode
	Err  error
}

func (e *EngineCallError) Error() string {
	return "engine call failed (" + string(e.Code) + "): " + e.Err.Error()
}

func (e *EngineCallError) Unwrap() error {
	return e.Err
}
