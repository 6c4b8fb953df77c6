package qaas

import (
	"context"
	"fmt"
	"net/http"
)

// CreateModel uploads a serialized work payload and returns its handle.
//
// A 4xx response (payload too large, malformed serialization) is wrapped
// with ErrSubmissionRejected; resubmitting the same bytes will not help.
func (c *Client) CreateModel(ctx context.Context, payload []byte) (*Model, error) {
	body := struct {
		Payload string `json:"payload"`
	}{Payload: string(payload)}

	var model Model
	if err := c.request(ctx, http.MethodPost, "/models", nil, body, &model); err != nil {
		return nil, fmt.Errorf("create model: %w", classifySubmission(err))
	}
	return &model, nil
}

// CreateJobRequest describes one execution request against a session.
//
// This client speaks the model-based protocol generation: the work
// payload is uploaded once via CreateModel and referenced here by id.
type CreateJobRequest struct {
	Name      string `json:"name"`
	SessionID string `json:"session_id"`
	ModelID   string `json:"model_id"`

	// Parameters carries run parameters (shots, options) as a JSON
	// document produced by the backend codec.
	Parameters string `json:"parameters,omitempty"`
}

// CreateJob creates a job referencing an uploaded model. Jobs are created
// exactly once; only the server advances their status afterwards.
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	var job Job
	if err := c.request(ctx, http.MethodPost, "/jobs", nil, req, &job); err != nil {
		return nil, fmt.Errorf("create job: %w", classifySubmission(err))
	}
	return &job, nil
}

// GetJob fetches the current status of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	var job Job
	if err := c.request(ctx, http.MethodGet, "/jobs/"+jobID, nil, nil, &job); err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return &job, nil
}

// GetJobResults fetches the result records of a completed job.
//
// Records map 1:1 and in-order to the work items of the batch; the order
// returned by the server is preserved.
func (c *Client) GetJobResults(ctx context.Context, jobID string) ([]JobResult, error) {
	var out struct {
		JobResults []JobResult `json:"job_results"`
	}
	if err := c.request(ctx, http.MethodGet, "/jobs/"+jobID+"/results", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get job results %s: %w", jobID, err)
	}
	return out.JobResults, nil
}
