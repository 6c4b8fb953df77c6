package qaas

import (
	"context"
	"fmt"
	"net/http"
)

// CreateSessionRequest describes a session lease to reserve.
type CreateSessionRequest struct {
	// Name is a human-readable label for the session.
	Name string `json:"name"`

	// ProjectID is filled by the client from its own scope.
	ProjectID string `json:"project_id"`

	// PlatformID selects the compute platform to lease (required).
	PlatformID string `json:"platform_id"`

	// DeduplicationID is an idempotency key. Creating a session whose
	// deduplication id is already bound to a live session on the same
	// platform returns that session instead of a duplicate. The server
	// owns this guarantee; the client does not deduplicate.
	DeduplicationID string `json:"deduplication_id"`

	// MaxDuration is the hard lifetime of the lease.
	MaxDuration Duration `json:"max_duration"`

	// MaxIdleDuration is the idle lifetime, reset on activity.
	MaxIdleDuration Duration `json:"max_idle_duration"`
}

// UpdateSessionRequest carries the mutable session attributes.
type UpdateSessionRequest struct {
	Name            string   `json:"name"`
	MaxDuration     Duration `json:"max_duration"`
	MaxIdleDuration Duration `json:"max_idle_duration"`
}

// CreateSession reserves a session lease on a platform.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	req.ProjectID = c.projectID

	var session Session
	if err := c.request(ctx, http.MethodPost, "/sessions", nil, req, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}

// UpdateSession updates the name and duration bounds of a session.
func (c *Client) UpdateSession(ctx context.Context, sessionID string, req UpdateSessionRequest) (*Session, error) {
	var session Session
	if err := c.request(ctx, http.MethodPatch, "/sessions/"+sessionID, nil, req, &session); err != nil {
		return nil, fmt.Errorf("update session %s: %w", sessionID, err)
	}
	return &session, nil
}

// TerminateSession requests a graceful shutdown of a session. The session
// accepts no new jobs afterwards; jobs already accepted may still be
// observed to completion, as the server defines.
func (c *Client) TerminateSession(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	if err := c.request(ctx, http.MethodPost, "/sessions/"+sessionID+"/terminate", nil, nil, &session); err != nil {
		return nil, fmt.Errorf("terminate session %s: %w", sessionID, err)
	}
	return &session, nil
}

// DeleteSession deletes a session. This is best-effort cleanup: session
// leakage is recoverable through the server-side idle timeout, so owners
// typically log a failure here rather than propagate it.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.request(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, nil, nil); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}
