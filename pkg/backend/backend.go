// Package backend maps opaque work items onto the payload envelope a
// backend family expects.
//
// The session/job core is family-agnostic: it consumes a Codec to turn
// work items into model bytes and run parameters, and hands raw result
// bytes back to the caller. Decoding results into a richer representation
// stays with the caller.
package backend

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/openqaas/goqaas/pkg/qaas"
)

// Encoding identifies the serialization format of one work item.
type Encoding string

const (
	EncodingQASMv2 Encoding = "qasm_v2"
	EncodingQASMv3 Encoding = "qasm_v3"
	EncodingJSON   Encoding = "json"
)

// WorkItem is one opaque unit of work to execute.
//
// Implementations serialize themselves once at submit time; the core
// never inspects the bytes.
type WorkItem interface {
	// EncodeWork returns the serialized form and its encoding.
	EncodeWork() (Encoding, []byte, error)
}

// RawWorkItem is a ready-made WorkItem around pre-serialized bytes.
type RawWorkItem struct {
	Encoding Encoding
	Data     []byte
}

// EncodeWork implements WorkItem.
func (r RawWorkItem) EncodeWork() (Encoding, []byte, error) {
	if len(r.Data) == 0 {
		return r.Encoding, nil, errors.New("empty work item")
	}
	return r.Encoding, r.Data, nil
}

// BackendInfo identifies the target backend inside a model payload.
type BackendInfo struct {
	Name    string
	Version string
}

// Codec encodes work items for one backend family.
type Codec interface {
	// Family returns the family tag ("aer", "qsim", "aqt").
	Family() string

	// EncodeModel builds the model payload for a batch of work items.
	EncodeModel(items []WorkItem, info BackendInfo, opts Options) ([]byte, error)

	// EncodeParameters builds the run-parameter document for job creation.
	EncodeParameters(opts Options) ([]byte, error)

	// DefaultOptions returns the validated family defaults. Callers merge
	// overrides on top via MergeOptions.
	DefaultOptions() Options

	// AllowedOptions lists the family-specific option keys accepted into
	// Options.Extra. Anything else is warned about and dropped.
	AllowedOptions() []string
}

// ErrUnknownFamily indicates no codec is registered for a platform's
// backend family.
var ErrUnknownFamily = errors.New("unknown backend family")

// ErrBatchTooLarge indicates a family cannot run the given batch size in
// a single job.
var ErrBatchTooLarge = errors.New("batch exceeds family limit")

var (
	registryMu sync.RWMutex
	registry   = map[string]Codec{}
)

// Register installs a codec, replacing any previous codec for the same
// family tag. The built-in families are registered at init time.
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(c.Family())] = c
}

// Lookup returns the codec registered for a family tag.
func Lookup(family string) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[strings.ToLower(family)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}
	return c, nil
}

// ForPlatform selects the codec for a platform by its backend family tag.
func ForPlatform(p qaas.Platform) (Codec, error) {
	return Lookup(p.BackendName)
}

// Info derives the BackendInfo for a platform.
func Info(p qaas.Platform) BackendInfo {
	return BackendInfo{Name: p.Name, Version: p.Version}
}

func init() {
	Register(&familyCodec{
		family: "aer",
		defaults: Options{
			Shots:  1000,
			Memory: false,
			Extra:  map[string]any{},
		},
		allowed: []string{
			"method", "precision", "seed_simulator", "max_parallel_experiments",
			"fusion_enable", "fusion_verbose", "fusion_max_qubit", "fusion_threshold",
		},
	})
	Register(&familyCodec{
		family: "qsim",
		// The qsim runtime executes one circuit per job.
		maxItems: 1,
		defaults: Options{
			Shots: 1000,
			Extra: map[string]any{},
		},
		allowed: []string{"max_fused_gate_size", "ev_noisy_repetitions", "denormals_are_zeros"},
	})
	Register(&familyCodec{
		family: "aqt",
		defaults: Options{
			Shots: 100,
			Extra: map[string]any{},
		},
		allowed: []string{"access_token"},
	})
}
