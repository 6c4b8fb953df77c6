package runner

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/openqaas/goqaas/pkg/qaas"
)

// resolveResults turns result records into raw payloads, preserving the
// server's order so callers can zip them back against their work items.
func (r *Runner) resolveResults(ctx context.Context, records []qaas.JobResult) ([][]byte, error) {
	payloads := make([][]byte, 0, len(records))
	for i, rec := range records {
		payload, err := r.resolveResult(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

// resolveResult returns a record's payload. Inline data wins; otherwise
// the presigned URL is dereferenced with exactly one unauthenticated GET.
func (r *Runner) resolveResult(ctx context.Context, rec qaas.JobResult) ([]byte, error) {
	if rec.Result != "" {
		return []byte(rec.Result), nil
	}
	if rec.URL == "" {
		return nil, ErrEmptyResult
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rec.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build result fetch request: %w", err)
	}

	resp, err := r.opts.FetchClient.Do(req)
	if err != nil {
		return nil, &qaas.TransportError{Method: http.MethodGet, Path: rec.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &qaas.TransportError{Method: http.MethodGet, Path: rec.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &qaas.TransportError{Method: http.MethodGet, Path: rec.URL, Err: fmt.Errorf("read result body: %w", err)}
	}
	return body, nil
}
