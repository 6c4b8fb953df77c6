package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMergeOptions_Defaults(t *testing.T) {
	codec, err := Lookup("aer")
	require.NoError(t, err)

	opts, err := MergeOptions(codec, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, opts.Shots)
	assert.False(t, opts.Memory)
	assert.Nil(t, opts.SeedSimulator)
}

func TestMergeOptions_Overrides(t *testing.T) {
	codec, err := Lookup("aer")
	require.NoError(t, err)

	opts, err := MergeOptions(codec, map[string]any{
		"shots":  4096,
		"memory": true,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4096, opts.Shots)
	assert.True(t, opts.Memory)
}

func TestMergeOptions_AllowedExtra(t *testing.T) {
	codec, err := Lookup("aer")
	require.NoError(t, err)

	opts, err := MergeOptions(codec, map[string]any{
		"method":    "statevector",
		"precision": "single",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "statevector", opts.Extra["method"])
	assert.Equal(t, "single", opts.Extra["precision"])
}

func TestMergeOptions_UnknownKeyWarnsAndDrops(t *testing.T) {
	codec, err := Lookup("aer")
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	opts, err := MergeOptions(codec, map[string]any{
		"shots":        500,
		"froobnicator": true,
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, 500, opts.Shots)
	assert.NotContains(t, opts.Extra, "froobnicator")

	entries := logs.FilterMessage("unknown backend option ignored").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "froobnicator", entries[0].ContextMap()["option"])
}

func TestMergeOptions_InvalidShots(t *testing.T) {
	codec, err := Lookup("aer")
	require.NoError(t, err)

	_, err = MergeOptions(codec, map[string]any{"shots": 0}, nil)
	require.Error(t, err)
}

func TestMergeOptions_DoesNotMutateDefaults(t *testing.T) {
	codec, err := Lookup("aer")
	require.NoError(t, err)

	_, err = MergeOptions(codec, map[string]any{"method": "statevector"}, nil)
	require.NoError(t, err)

	fresh, err := MergeOptions(codec, nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, fresh.Extra, "method")
}
