package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelPayload_RoundTrip(t *testing.T) {
	seed := int64(42)
	original := ModelPayload{
		Version: PayloadVersion,
		Backend: BackendPayload{
			Name:    "aer_simulation_h100",
			Version: "1.0",
			Options: map[string]any{"method": "statevector"},
		},
		Run: RunPayload{
			Options: map[string]any{"shots": float64(1000), "seed_simulator": float64(seed)},
			Circuits: []CircuitPayload{
				{SerializationType: EncodingQASMv3, CircuitSerialization: "OPENQASM 3.0;"},
			},
		},
		Client: ClientPayload{UserAgent: "goqaas/test"},
	}

	data, err := original.Encode()
	require.NoError(t, err)

	decoded, err := DecodeModelPayload(data)
	require.NoError(t, err)
	assert.Equal(t, original, *decoded)
}

func TestDecodeModelPayload_MissingVersion(t *testing.T) {
	_, err := DecodeModelPayload([]byte(`{"backend":{"name":"x"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestDecodeModelPayload_Malformed(t *testing.T) {
	_, err := DecodeModelPayload([]byte(`{not json`))
	require.Error(t, err)
}
