package qaas

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a session-lease duration.
//
// The control plane encodes durations as a decimal number of seconds with
// an "s" suffix ("3540s"). Duration marshals to that form and accepts
// either it or a Go duration string ("59m") when unmarshaling.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("%ds", int64(time.Duration(d).Seconds())))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDuration parses either the wire form ("3540s") or a Go duration
// string ("59m", "1h20m").
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	// Wire form is all digits followed by "s"; time.ParseDuration also
	// accepts that, so a single parse covers both.
	if secs, err := strconv.ParseInt(strings.TrimSuffix(s, "s"), 10, 64); err == nil && strings.HasSuffix(s, "s") {
		return Duration(time.Duration(secs) * time.Second), nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return Duration(dur), nil
}

// String returns the Go duration representation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// JobStatus is the remote lifecycle state of a job as reported by the
// control plane. Statuses progress waiting -> running -> completed; any
// unrecognized value is treated as a terminal failure by callers.
type JobStatus string

const (
	JobStatusWaiting   JobStatus = "waiting"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
)

// Terminal reports whether no further status progression is possible.
// Unknown statuses are terminal: polling on a drifted status contract
// would never converge.
func (s JobStatus) Terminal() bool {
	return s != JobStatusWaiting && s != JobStatusRunning
}

// Platform describes one compute backend offering. Platforms are
// read-only to this client; selection logic lives with the caller.
type Platform struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Version         string `json:"version"`
	Metadata        string `json:"metadata"`
	MaxQubitCount   int    `json:"max_qubit_count"`
	MaxShotCount    int    `json:"max_shot_count"`
	MaxCircuitCount int    `json:"max_circuit_count"`
	Availability    string `json:"availability"`
	Type            string `json:"type"`
	Technology      string `json:"technology"`
	BackendName     string `json:"backend_name"`
	ProviderName    string `json:"provider_name"`
}

// Session is a time-bounded lease on a platform.
//
// The server reclaims a session unilaterally once MaxDuration elapses or
// it sits idle past MaxIdleDuration; any later operation against it
// fails and the client does not attempt to prevent that.
type Session struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Status          string   `json:"status"`
	DeduplicationID string   `json:"deduplication_id,omitempty"`
	MaxDuration     Duration `json:"max_duration"`
	MaxIdleDuration Duration `json:"max_idle_duration"`
}

// Model is an opaque uploaded work payload, referenced by id from jobs.
// Models are immutable and have no lifecycle beyond creation.
type Model struct {
	ID string `json:"id"`
}

// Job is one server-tracked execution request.
type Job struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Status          JobStatus `json:"status"`
	ProgressMessage string    `json:"progress_message,omitempty"`
}

// JobResult is one produced result record, one per work item in the
// batch. Exactly one of Result/URL is meaningful: a non-empty Result is
// the payload itself, otherwise URL points at a presigned blob that must
// be fetched separately.
type JobResult struct {
	Result string `json:"result"`
	URL    string `json:"url"`
}
