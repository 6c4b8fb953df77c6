package qaas

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for control-plane operations.
var (
	// ErrSubmissionRejected indicates the server refused a model or job
	// creation payload. Resubmitting the same payload will not succeed;
	// the caller must change it.
	ErrSubmissionRejected = errors.New("submission rejected by server")

	// ErrPlatformNotFound indicates no platform matched the selection.
	ErrPlatformNotFound = errors.New("platform not found")

	// ErrPlatformAmbiguous indicates a selection matched more than one
	// platform where exactly one was required.
	ErrPlatformAmbiguous = errors.New("platform selection is ambiguous")
)

// TransportError wraps any network failure or non-2xx response from the
// control plane. The core never retries these; callers decide.
type TransportError struct {
	// Method and Path identify the attempted request.
	Method string
	Path   string

	// StatusCode is the HTTP status, zero when the request never
	// produced a response (timeout, DNS, TLS).
	StatusCode int

	// Body is a truncated copy of the error response body, if any.
	Body string

	// Err is the underlying error for network-level failures.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("qaas: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
		}
		if e.Err != nil {
			return fmt.Sprintf("qaas: %s %s: status %d: %v", e.Method, e.Path, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("qaas: %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("qaas: %s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport returns true if the error is a control-plane transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsSubmissionRejected returns true if the server rejected a submission
// payload. These failures are not retryable without changing the payload.
func IsSubmissionRejected(err error) bool {
	return errors.Is(err, ErrSubmissionRejected)
}

// rejected reports whether a transport error represents a server-side
// payload rejection rather than a transient transport failure.
func rejected(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	return te.StatusCode >= http.StatusBadRequest && te.StatusCode < http.StatusInternalServerError
}

// classifySubmission wraps 4xx responses from model/job creation with
// ErrSubmissionRejected so callers can separate "fix your payload" from
// "the network failed".
func classifySubmission(err error) error {
	if err == nil {
		return nil
	}
	if rejected(err) {
		return fmt.Errorf("%w: %w", ErrSubmissionRejected, err)
	}
	return err
}
