package domain

import "encoding/json"

// SimulationRequest is the caller-facing input to the pipeline.
type SimulationRequest struct {
	Stage   string
	Message string
	Name    string
	Origin  string
}

func (r SimulationRequest) Validate() error {
	if err := ValidateStage(r.Stage); err != nil {
		return err
	}
	if r.Message == "" || len(r.Message) > 2000 {
		return ErrInvalidMessage
	}
	return nil
}

// SimulationResponse is what the caller always receives, whether the engine
// answered or the fallback path synthesized a reply.
type SimulationResponse struct {
	Reply          string  `json:"reply"`
	NextBestAction string  `json:"next_best_action"`
	Confidence     float64 `json:"confidence"`
}

// EnginePayload is the body POSTed to the external inference engine.
type EnginePayload struct {
	TenantID        string          `json:"tenant_id"`
	Stage           string          `json:"stage"`
	RequestID       string          `json:"request_id"`
	MessageOriginal string          `json:"message_original"`
	Name            string          `json:"name,omitempty"`
	Origin          string          `json:"origin,omitempty"`
	Config          json.RawMessage `json:"config"`
}
