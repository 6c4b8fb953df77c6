package qaas_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openqaas/goqaas/pkg/qaas"
	"github.com/openqaas/goqaas/test/qaastest"
)

func newTestClient(t *testing.T, srv *qaastest.Server) *qaas.Client {
	t.Helper()
	client, err := qaas.New(qaas.Config{
		ProjectID: qaastest.ProjectID,
		SecretKey: qaastest.Token,
		BaseURL:   srv.URL(),
	})
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       qaas.Config
		wantField string
	}{
		{
			name: "valid",
			cfg:  qaas.Config{ProjectID: "p", SecretKey: "s"},
		},
		{
			name:      "missing project id",
			cfg:       qaas.Config{SecretKey: "s"},
			wantField: "ProjectID",
		},
		{
			name:      "missing secret key",
			cfg:       qaas.Config{ProjectID: "p"},
			wantField: "SecretKey",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := qaas.New(tt.cfg)
			if tt.wantField != "" {
				require.Error(t, err)
				var cfgErr *qaas.ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, tt.wantField, cfgErr.Field)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, qaas.DefaultBaseURL, client.BaseURL())
		})
	}
}

func TestClient_AuthRequired(t *testing.T) {
	srv := qaastest.NewServer(t, qaastest.Options{})

	client, err := qaas.New(qaas.Config{
		ProjectID: qaastest.ProjectID,
		SecretKey: "wrong-token",
		BaseURL:   srv.URL(),
	})
	require.NoError(t, err)

	_, err = client.ListPlatforms(context.Background(), qaas.ListPlatformsOptions{})
	require.Error(t, err)
	assert.True(t, qaas.IsTransport(err))

	var te *qaas.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
}

func TestClient_NetworkFailure(t *testing.T) {
	// Point at a server that is already closed.
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	client, err := qaas.New(qaas.Config{
		ProjectID: "p",
		SecretKey: "s",
		BaseURL:   ts.URL,
	})
	require.NoError(t, err)

	_, err = client.ListPlatforms(context.Background(), qaas.ListPlatformsOptions{})
	require.Error(t, err)
	assert.True(t, qaas.IsTransport(err))

	var te *qaas.TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.Error(t, errors.Unwrap(te))
}

func TestClient_SubmissionRejected(t *testing.T) {
	srv := qaastest.NewServer(t, qaastest.Options{})
	client := newTestClient(t, srv)

	// The fake rejects empty model payloads with a 400.
	_, err := client.CreateModel(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, qaas.IsSubmissionRejected(err))
	assert.True(t, qaas.IsTransport(err))
}

func TestClient_ServerErrorIsNotSubmissionRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	client, err := qaas.New(qaas.Config{ProjectID: "p", SecretKey: "s", BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = client.CreateModel(context.Background(), []byte("payload"))
	require.Error(t, err)
	assert.True(t, qaas.IsTransport(err))
	assert.False(t, qaas.IsSubmissionRejected(err))
}
