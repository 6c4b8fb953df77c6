package runner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openqaas/goqaas/pkg/qaas"
	"github.com/openqaas/goqaas/pkg/runner"
	"github.com/openqaas/goqaas/test/qaastest"
)

func TestResults_URLDereference(t *testing.T) {
	srv := qaastest.NewServer(t, qaastest.Options{})
	r := newTestRunner(t, srv)
	ctx := context.Background()

	job, err := r.Submit(ctx, runner.SubmitRequest{
		Platform: aerPlatform(),
		Items:    workItems(1),
	})
	require.NoError(t, err)

	url := srv.StoreBlob("r1", []byte("<payload>"))
	srv.SetJobResults(job.ID(), []qaas.JobResult{{Result: "", URL: url}})

	payload, err := job.WaitOne(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("<payload>"), payload)

	// Exactly one GET against the presigned URL.
	assert.Equal(t, 1, srv.RequestCount("GET", "/store/r1"))
}

func TestResults_InlineSkipsNetwork(t *testing.T) {
	srv := qaastest.NewServer(t, qaastest.Options{})
	r := newTestRunner(t, srv)
	ctx := context.Background()

	job, err := r.Submit(ctx, runner.SubmitRequest{
		Platform: aerPlatform(),
		Items:    workItems(1),
	})
	require.NoError(t, err)

	// URL is set but must be ignored because inline data is present.
	url := srv.StoreBlob("r2", []byte("should not be fetched"))
	srv.SetJobResults(job.ID(), []qaas.JobResult{{Result: "payload", URL: url}})

	payload, err := job.WaitOne(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), payload)
	assert.Equal(t, 0, srv.RequestCount("GET", "/store/r2"))
}

func TestResults_EmptyRecord(t *testing.T) {
	srv := qaastest.NewServer(t, qaastest.Options{})
	r := newTestRunner(t, srv)
	ctx := context.Background()

	job, err := r.Submit(ctx, runner.SubmitRequest{
		Platform: aerPlatform(),
		Items:    workItems(1),
	})
	require.NoError(t, err)

	srv.SetJobResults(job.ID(), []qaas.JobResult{{Result: "", URL: ""}})

	_, err = job.Wait(ctx)
	require.ErrorIs(t, err, runner.ErrEmptyResult)
}

func TestResults_URLFetchFailure(t *testing.T) {
	srv := qaastest.NewServer(t, qaastest.Options{})
	r := newTestRunner(t, srv)
	ctx := context.Background()

	job, err := r.Submit(ctx, runner.SubmitRequest{
		Platform: aerPlatform(),
		Items:    workItems(1),
	})
	require.NoError(t, err)

	// URL points at a blob that does not exist.
	srv.SetJobResults(job.ID(), []qaas.JobResult{{URL: srv.URL() + "/store/missing"}})

	_, err = job.Wait(ctx)
	require.Error(t, err)
	assert.True(t, qaas.IsTransport(err))
}

func TestResults_MixedBatchOrder(t *testing.T) {
	srv := qaastest.NewServer(t, qaastest.Options{})
	r := newTestRunner(t, srv)
	ctx := context.Background()

	job, err := r.Submit(ctx, runner.SubmitRequest{
		Platform: aerPlatform(),
		Items:    workItems(3),
	})
	require.NoError(t, err)

	urlB := srv.StoreBlob("b", []byte("B"))
	srv.SetJobResults(job.ID(), []qaas.JobResult{
		{Result: "A"},
		{URL: urlB},
		{Result: "C"},
	})

	results, err := job.Wait(ctx)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []byte("A"), results[0])
	assert.Equal(t, []byte("B"), results[1])
	assert.Equal(t, []byte("C"), results[2])
}
