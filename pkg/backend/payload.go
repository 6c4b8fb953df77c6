package backend

import (
	"encoding/json"
	"fmt"
)

// PayloadVersion tags the model payload schema. Bump on incompatible
// envelope changes.
const PayloadVersion = "1.0"

// ModelPayload is the envelope uploaded as a model: the serialized work
// items plus backend options and client identification.
type ModelPayload struct {
	Version string         `json:"version"`
	Backend BackendPayload `json:"backend"`
	Run     RunPayload     `json:"run"`
	Client  ClientPayload  `json:"client"`
}

// BackendPayload carries the target backend identity and its
// family-specific options.
type BackendPayload struct {
	Name    string         `json:"name"`
	Version string         `json:"version"`
	Options map[string]any `json:"options,omitempty"`
}

// RunPayload carries the per-run options and the serialized circuits.
type RunPayload struct {
	Options  map[string]any   `json:"options,omitempty"`
	Circuits []CircuitPayload `json:"circuits"`
}

// CircuitPayload is one serialized work item.
type CircuitPayload struct {
	SerializationType    Encoding `json:"serialization_type"`
	CircuitSerialization string   `json:"circuit_serialization"`
}

// ClientPayload identifies the submitting client.
type ClientPayload struct {
	UserAgent string `json:"user_agent"`
}

// RunParameters is the job-creation parameter document.
type RunParameters struct {
	Version string         `json:"version"`
	Shots   int            `json:"shots"`
	Options map[string]any `json:"options,omitempty"`
}

// Encode marshals the payload to its wire form.
func (p ModelPayload) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode model payload: %w", err)
	}
	return data, nil
}

// DecodeModelPayload parses a wire-form payload. Used by tests and by
// tooling that inspects uploaded models; the service itself treats the
// payload as opaque.
func DecodeModelPayload(data []byte) (*ModelPayload, error) {
	var p ModelPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode model payload: %w", err)
	}
	if p.Version == "" {
		return nil, fmt.Errorf("decode model payload: missing version tag")
	}
	return &p, nil
}
