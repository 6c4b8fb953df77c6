package backend

import (
	"encoding/json"
	"fmt"

	"github.com/openqaas/goqaas/internal/version"
)

// familyCodec is the shared codec implementation behind the built-in
// families. Families differ only in defaults, allow-list and batch limit.
type familyCodec struct {
	family   string
	maxItems int // zero means unbounded
	defaults Options
	allowed  []string
}

// Family implements Codec.
func (c *familyCodec) Family() string {
	return c.family
}

// DefaultOptions implements Codec.
func (c *familyCodec) DefaultOptions() Options {
	opts := c.defaults
	// Copy the map so callers cannot mutate the registered defaults.
	opts.Extra = make(map[string]any, len(c.defaults.Extra))
	for k, v := range c.defaults.Extra {
		opts.Extra[k] = v
	}
	return opts
}

// AllowedOptions implements Codec.
func (c *familyCodec) AllowedOptions() []string {
	return c.allowed
}

// EncodeModel implements Codec.
func (c *familyCodec) EncodeModel(items []WorkItem, info BackendInfo, opts Options) ([]byte, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("family %s: no work items", c.family)
	}
	if c.maxItems > 0 && len(items) > c.maxItems {
		return nil, fmt.Errorf("%w: family %s accepts at most %d work item(s), got %d",
			ErrBatchTooLarge, c.family, c.maxItems, len(items))
	}

	circuits := make([]CircuitPayload, 0, len(items))
	for i, item := range items {
		enc, data, err := item.EncodeWork()
		if err != nil {
			return nil, fmt.Errorf("family %s: encode work item %d: %w", c.family, i, err)
		}
		circuits = append(circuits, CircuitPayload{
			SerializationType:    enc,
			CircuitSerialization: string(data),
		})
	}

	run := RunPayload{
		Options: map[string]any{
			"shots":  opts.Shots,
			"memory": opts.Memory,
		},
		Circuits: circuits,
	}
	if opts.SeedSimulator != nil {
		run.Options["seed_simulator"] = *opts.SeedSimulator
	}

	payload := ModelPayload{
		Version: PayloadVersion,
		Backend: BackendPayload{
			Name:    info.Name,
			Version: info.Version,
			Options: opts.Extra,
		},
		Run:    run,
		Client: ClientPayload{UserAgent: version.UserAgent()},
	}
	return payload.Encode()
}

// EncodeParameters implements Codec.
func (c *familyCodec) EncodeParameters(opts Options) ([]byte, error) {
	params := RunParameters{
		Version: PayloadVersion,
		Shots:   opts.Shots,
		Options: opts.Extra,
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("family %s: encode run parameters: %w", c.family, err)
	}
	return data, nil
}
