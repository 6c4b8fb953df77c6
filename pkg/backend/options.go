package backend

import (
	"fmt"
	"slices"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"
)

// Options are the validated run options for one submission.
//
// Shots, Memory and SeedSimulator are common to every family; Extra
// carries family-specific backend options that were accepted by the
// family's allow-list.
type Options struct {
	// Shots is the number of measurement repetitions per work item.
	Shots int `json:"shots" mapstructure:"shots"`

	// Memory requests per-shot measurement memory where supported.
	Memory bool `json:"memory" mapstructure:"memory"`

	// SeedSimulator fixes the simulator RNG seed. Nil leaves it random.
	SeedSimulator *int64 `json:"seed_simulator,omitempty" mapstructure:"seed_simulator"`

	// Extra holds family-specific options passed through to the backend.
	Extra map[string]any `json:"extra,omitempty" mapstructure:"-"`
}

// Validate checks option invariants shared by all families.
func (o *Options) Validate() error {
	if o.Shots <= 0 {
		return fmt.Errorf("shots must be positive, got %d", o.Shots)
	}
	return nil
}

// MergeOptions layers caller overrides onto the family defaults of codec.
//
// Keys that are neither common options nor on the family allow-list are
// reported with a warning and dropped; they never silently no-op.
func MergeOptions(codec Codec, overrides map[string]any, logger *zap.Logger) (Options, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := codec.DefaultOptions()
	if opts.Extra == nil {
		opts.Extra = map[string]any{}
	}
	if len(overrides) == 0 {
		return opts, nil
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Options{}, fmt.Errorf("build options decoder: %w", err)
	}
	if err := dec.Decode(overrides); err != nil {
		return Options{}, fmt.Errorf("decode options for family %s: %w", codec.Family(), err)
	}

	allowed := codec.AllowedOptions()
	for _, key := range md.Unused {
		if slices.Contains(allowed, key) {
			opts.Extra[key] = overrides[key]
			continue
		}
		logger.Warn("unknown backend option ignored",
			zap.String("family", codec.Family()),
			zap.String("option", key))
	}

	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("options for family %s: %w", codec.Family(), err)
	}
	return opts, nil
}
