package runner

import (
	"errors"
	"fmt"
)

// Sentinel errors for the job lifecycle.
var (
	// ErrAlreadySubmitted indicates Submit was called on a job handle
	// that already carries a server id. Resubmission is a programming
	// error; no second request is issued.
	ErrAlreadySubmitted = errors.New("job already submitted")

	// ErrNotSubmitted indicates Wait or Status was called before Submit.
	ErrNotSubmitted = errors.New("job not submitted")

	// ErrWaitTimeout indicates the caller-supplied deadline elapsed
	// before the job completed. The job may still finish server-side;
	// Wait can be called again with a fresh deadline.
	ErrWaitTimeout = errors.New("timed out waiting for result")

	// ErrEmptyResult indicates a result record carried neither inline
	// data nor a URL to fetch.
	ErrEmptyResult = errors.New("got result with empty data and url fields")
)

// JobFailedError indicates a job reached an error or unrecognized
// terminal status. Unrecognized statuses are failures, not retried,
// so a drifted status contract cannot cause infinite polling.
type JobFailedError struct {
	// JobID is the server-assigned job id.
	JobID string

	// Status is the remote status string that was observed.
	Status string

	// ProgressMessage is the last progress message, if the server
	// provided one.
	ProgressMessage string
}

// Error implements the error interface.
func (e *JobFailedError) Error() string {
	if e.ProgressMessage != "" {
		return fmt.Sprintf("job %s failed with status %q: %s", e.JobID, e.Status, e.ProgressMessage)
	}
	return fmt.Sprintf("job %s failed with status %q", e.JobID, e.Status)
}

// IsJobFailed returns true if the error indicates a terminal job failure.
func IsJobFailed(err error) bool {
	var jfe *JobFailedError
	return errors.As(err, &jfe)
}

// IsWaitTimeout returns true if the error indicates the wait deadline
// elapsed. Polling state is not consumed; the caller may wait again.
func IsWaitTimeout(err error) bool {
	return errors.Is(err, ErrWaitTimeout)
}
