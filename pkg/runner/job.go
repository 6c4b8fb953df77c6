package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openqaas/goqaas/pkg/backend"
	"github.com/openqaas/goqaas/pkg/qaas"
)

// Status is the client-side view of a job's lifecycle.
//
// The progression is Unsubmitted -> Queued -> Running -> Done, with
// Error as a sink reachable from any non-terminal state. Only the server
// advances a submitted job; the client never caches a non-terminal
// status.
type Status int

const (
	StatusUnsubmitted Status = iota
	StatusQueued
	StatusRunning
	StatusDone
	StatusError
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusUnsubmitted:
		return "unsubmitted"
	case StatusQueued:
		return "queued"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// mapStatus folds a remote status string onto the client state machine.
// Anything outside the recognized set is Error.
func mapStatus(remote qaas.JobStatus) Status {
	switch remote {
	case qaas.JobStatusWaiting:
		return StatusQueued
	case qaas.JobStatusRunning:
		return StatusRunning
	case qaas.JobStatusCompleted:
		return StatusDone
	default:
		return StatusError
	}
}

// Job is a handle on one submitted (or not yet submitted) execution
// request. A handle is exclusively owned by its creator and must not be
// shared across goroutines.
type Job struct {
	runner   *Runner
	name     string
	platform qaas.Platform
	items    []backend.WorkItem
	options  map[string]any

	id                   string
	provisionedSessionID string
	lastRemoteStatus     qaas.JobStatus
	lastProgress         string
}

// ID returns the server-assigned job id, empty before Submit.
func (j *Job) ID() string {
	return j.id
}

// Name returns the job's label.
func (j *Job) Name() string {
	return j.name
}

// Submit encodes the work items, uploads the model and creates the job
// against sessionID.
//
// Calling Submit on a handle that already has an id fails fast with
// ErrAlreadySubmitted before any network traffic: silently resubmitting
// would orphan the first job.
func (j *Job) Submit(ctx context.Context, sessionID string) error {
	if j.id != "" {
		return fmt.Errorf("%w (id: %s)", ErrAlreadySubmitted, j.id)
	}
	if sessionID == "" {
		return errors.New("session id is required")
	}

	codec, err := backend.ForPlatform(j.platform)
	if err != nil {
		return err
	}
	opts, err := backend.MergeOptions(codec, j.options, j.runner.opts.Logger)
	if err != nil {
		return err
	}

	payload, err := codec.EncodeModel(j.items, backend.Info(j.platform), opts)
	if err != nil {
		return err
	}
	params, err := codec.EncodeParameters(opts)
	if err != nil {
		return err
	}

	model, err := j.runner.client.CreateModel(ctx, payload)
	if err != nil {
		return err
	}

	job, err := j.runner.client.CreateJob(ctx, qaas.CreateJobRequest{
		Name:       j.name,
		SessionID:  sessionID,
		ModelID:    model.ID,
		Parameters: string(params),
	})
	if err != nil {
		return err
	}

	j.id = job.ID
	return nil
}

// Status queries the current job state. Unsubmitted handles report
// StatusUnsubmitted without network traffic.
func (j *Job) Status(ctx context.Context) (Status, error) {
	if j.id == "" {
		return StatusUnsubmitted, nil
	}

	job, err := j.runner.client.GetJob(ctx, j.id)
	if err != nil {
		return StatusError, err
	}
	j.lastRemoteStatus = job.Status
	j.lastProgress = job.ProgressMessage
	return mapStatus(job.Status), nil
}

// Wait blocks until the job completes, then resolves and returns the raw
// result payloads in submission order.
//
// The deadline comes from ctx: an expired or exceeded deadline returns
// an error wrapping ErrWaitTimeout. Waiting consumes no polling state,
// so a timed-out Wait may simply be called again. A terminal failure or
// unrecognized status returns a *JobFailedError immediately.
func (j *Job) Wait(ctx context.Context) ([][]byte, error) {
	if j.id == "" {
		return nil, ErrNotSubmitted
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, waitErr(err)
		}

		status, err := j.Status(ctx)
		if err != nil {
			return nil, err
		}

		switch status {
		case StatusDone:
			records, err := j.runner.client.GetJobResults(ctx, j.id)
			if err != nil {
				return nil, err
			}
			return j.runner.resolveResults(ctx, records)
		case StatusError:
			return nil, &JobFailedError{
				JobID:           j.id,
				Status:          string(j.lastRemoteStatus),
				ProgressMessage: j.lastProgress,
			}
		}

		select {
		case <-ctx.Done():
			return nil, waitErr(ctx.Err())
		case <-time.After(j.runner.opts.PollInterval):
		}
	}
}

// WaitOne is Wait for single-item submissions: it returns the one raw
// payload directly instead of a one-element slice.
func (j *Job) WaitOne(ctx context.Context) ([]byte, error) {
	results, err := j.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("expected exactly one result, got %d", len(results))
	}
	return results[0], nil
}

// waitErr classifies a context error: a deadline becomes the timeout
// sentinel, a cancellation passes through.
func waitErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrWaitTimeout, err)
	}
	return err
}
