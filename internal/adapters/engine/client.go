// Package engine talks to the external inference service. Requests carry the
// HMAC signature computed by the caller; responses are validated against the
// v1 shape before anyone downstream sees them.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Irineu96Silva/projeto-turion/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	// Safety margin guarding against a transport that ignores the client
	// timeout; the context deadline is inner + this.
	outerTimeoutMargin = 1000 * time.Millisecond

	maxResponseBody = 1 << 20
)

const responseSchemaV1 = `{
  "type": "object",
  "required": ["reply", "next_best_action", "confidence"],
  "properties": {
    "reply": {"type": "string"},
    "next_best_action": {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`

type Client struct {
	url     string
	timeout time.Duration
	client  *http.Client
	schema  *santhosh.Schema
}

// NewClient builds an inference client POSTing to url with the operator
// timeout. A zero or negative timeout falls back to 10s.
func NewClient(url string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if err := compiler.AddResource("engine-v1.json", strings.NewReader(responseSchemaV1)); err != nil {
		return nil, fmt.Errorf("add response schema: %w", err)
	}
	schema, err := compiler.Compile("engine-v1.json")
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}

	return &Client{
		url:     url,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
		schema:  schema,
	}, nil
}

// Call POSTs the signed payload. Headers on every request:
//
//	Content-Type:         application/json
//	x-signature:          <lowercase hex HMAC-SHA256>
//	x-signature-version:  v1
//
// Failures come back as *domain.EngineCallError classified as TIMEOUT,
// HTTP_ERROR, INVALID_RESPONSE, or UNKNOWN. There is exactly one attempt per
// call; once the deadline passes the in-flight request is abandoned.
func (c *Client) Call(ctx context.Context, payload domain.EnginePayload, signature string) (domain.SimulationResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.SimulationResponse{}, callError(domain.EngineUnknown, fmt.Errorf("marshal payload: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout+outerTimeoutMargin)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.SimulationResponse{}, callError(domain.EngineUnknown, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-signature", signature)
	req.Header.Set("x-signature-version", "v1")

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return domain.SimulationResponse{}, callError(domain.EngineTimeout, fmt.Errorf("engine timed out after %s", c.timeout))
		}
		return domain.SimulationResponse{}, callError(domain.EngineHTTPError, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.SimulationResponse{}, callError(domain.EngineHTTPError, fmt.Errorf("engine returned status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		if isTimeout(err) {
			return domain.SimulationResponse{}, callError(domain.EngineTimeout, fmt.Errorf("engine timed out after %s", c.timeout))
		}
		return domain.SimulationResponse{}, callError(domain.EngineHTTPError, fmt.Errorf("read response: %w", err))
	}

	return c.validate(raw)
}

func (c *Client) validate(raw []byte) (domain.SimulationResponse, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return domain.SimulationResponse{}, callError(domain.EngineInvalidResponse, fmt.Errorf("response is not json: %w", err))
	}
	if err := c.schema.Validate(value); err != nil {
		return domain.SimulationResponse{}, callError(domain.EngineInvalidResponse, fmt.Errorf("response shape: %w", err))
	}

	var response domain.SimulationResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return domain.SimulationResponse{}, callError(domain.EngineInvalidResponse, err)
	}
	return response, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func callError(code domain.EngineErrorCode, err error) *domain.EngineCallError {
	return &domain.EngineCallError{Code: code, Err: err}
}
