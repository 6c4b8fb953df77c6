// Package runner orchestrates the remote job lifecycle: session
// provisioning, model upload, job creation, completion polling and
// result resolution.
//
// The runner is deliberately synchronous. Submission and waiting are
// blocking calls driven by the caller's goroutine and context; a caller
// wanting to track several jobs runs one goroutine per job handle. Job
// handles are exclusively owned by their creator and are not safe for
// concurrent use, while the underlying client may be shared freely.
package runner

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openqaas/goqaas/pkg/backend"
	"github.com/openqaas/goqaas/pkg/qaas"
)

// DefaultPollInterval is the pause between job status queries.
const DefaultPollInterval = 5 * time.Second

// SessionDefaults configures sessions the runner provisions implicitly
// when a submission names no session.
type SessionDefaults struct {
	// Name labels provisioned sessions.
	Name string

	// DeduplicationID keys implicit sessions for server-side reuse. A
	// stable value means repeated runs share one live session instead
	// of leasing a new platform slot each time.
	DeduplicationID string

	// MaxDuration is the hard lifetime of provisioned sessions.
	MaxDuration time.Duration

	// MaxIdleDuration is the idle lifetime of provisioned sessions.
	MaxIdleDuration time.Duration
}

// Options configures a Runner.
type Options struct {
	// PollInterval is the pause between status queries.
	// Defaults to DefaultPollInterval.
	PollInterval time.Duration

	// Session holds defaults for implicitly provisioned sessions.
	Session SessionDefaults

	// FetchClient performs the unauthenticated GET against presigned
	// result URLs. Defaults to a client with the same fixed timeout the
	// control-plane transport uses.
	FetchClient *http.Client

	// Logger receives non-fatal events (cleanup failures, ignored
	// options). Defaults to a no-op logger.
	Logger *zap.Logger
}

func (o *Options) applyDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Session.Name == "" {
		o.Session.Name = "goqaas-session"
	}
	if o.Session.DeduplicationID == "" {
		o.Session.DeduplicationID = o.Session.Name
	}
	if o.Session.MaxDuration <= 0 {
		o.Session.MaxDuration = 59 * time.Minute
	}
	if o.Session.MaxIdleDuration <= 0 {
		o.Session.MaxIdleDuration = 20 * time.Minute
	}
	if o.FetchClient == nil {
		o.FetchClient = &http.Client{Timeout: 10 * time.Second}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Runner submits work against a QaaS control plane and tracks it to
// completion. Safe for concurrent use; per-job state lives on the Job
// handles it returns.
type Runner struct {
	client *qaas.Client
	opts   Options
}

// New creates a Runner on top of an existing client.
func New(client *qaas.Client, opts Options) *Runner {
	opts.applyDefaults()
	return &Runner{client: client, opts: opts}
}

// Client returns the underlying control-plane client.
func (r *Runner) Client() *qaas.Client {
	return r.client
}

// SubmitRequest describes one submission.
type SubmitRequest struct {
	// Name labels the job. Generated from the platform family when empty.
	Name string

	// SessionID selects an existing session. Empty means the runner
	// provisions one implicitly from its SessionDefaults; the handle
	// remembers a provisioned id so Run can clean it up.
	SessionID string

	// Platform is the target platform descriptor, as returned by
	// platform listing. Its backend family tag selects the codec.
	Platform qaas.Platform

	// Items are the work units to execute in one batch. Results come
	// back one per item, in this order.
	Items []backend.WorkItem

	// Options are caller overrides merged onto the family defaults.
	// Unknown keys are warned about and dropped.
	Options map[string]any
}

// NewJob builds an unsubmitted job handle. No network traffic happens
// until Submit.
func (r *Runner) NewJob(req SubmitRequest) *Job {
	name := req.Name
	if name == "" {
		name = fmt.Sprintf("qj-%s-%s", req.Platform.BackendName, uuid.NewString()[:8])
	}
	return &Job{
		runner:   r,
		name:     name,
		platform: req.Platform,
		items:    req.Items,
		options:  req.Options,
	}
}

// Submit creates a job handle and submits it, provisioning a session
// first when the request names none.
func (r *Runner) Submit(ctx context.Context, req SubmitRequest) (*Job, error) {
	job := r.NewJob(req)

	sessionID := req.SessionID
	if sessionID == "" {
		session, err := r.ProvisionSession(ctx, req.Platform.ID)
		if err != nil {
			return nil, err
		}
		sessionID = session.ID
		job.provisionedSessionID = session.ID
	}

	if err := job.Submit(ctx, sessionID); err != nil {
		if job.provisionedSessionID != "" {
			r.cleanupSession(ctx, job.provisionedSessionID)
		}
		return nil, err
	}
	return job, nil
}

// ProvisionSession creates a session on a platform using the runner's
// session defaults. The deduplication id makes this idempotent: a live
// session with the same id is reused server-side.
func (r *Runner) ProvisionSession(ctx context.Context, platformID string) (*qaas.Session, error) {
	return r.client.CreateSession(ctx, qaas.CreateSessionRequest{
		Name:            "auto-" + r.opts.Session.Name,
		PlatformID:      platformID,
		DeduplicationID: r.opts.Session.DeduplicationID,
		MaxDuration:     qaas.Duration(r.opts.Session.MaxDuration),
		MaxIdleDuration: qaas.Duration(r.opts.Session.MaxIdleDuration),
	})
}

// Run executes a request end to end: submit, wait for completion,
// resolve results. When the runner provisioned the session implicitly it
// is deleted afterwards; cleanup failures are logged and never mask the
// job's result or error.
func (r *Runner) Run(ctx context.Context, req SubmitRequest) ([][]byte, error) {
	job, err := r.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	if job.provisionedSessionID != "" {
		// Cleanup must run even when ctx is already done or expired.
		defer r.cleanupSession(context.WithoutCancel(ctx), job.provisionedSessionID)
	}
	return job.Wait(ctx)
}

// cleanupSession deletes a session, swallowing any failure.
func (r *Runner) cleanupSession(ctx context.Context, sessionID string) {
	if err := r.client.DeleteSession(ctx, sessionID); err != nil {
		r.opts.Logger.Warn("session cleanup failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}
