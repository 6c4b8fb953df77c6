package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openqaas/goqaas/pkg/qaas"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, qaas.DefaultBaseURL, cfg.APIURL)
		assert.Equal(t, 5*time.Second, cfg.PollInterval)
		assert.Zero(t, cfg.RateLimit)
		assert.Equal(t, "goqaas-session", cfg.Session.Name)
		assert.Equal(t, "goqaas-session", cfg.Session.DeduplicationID)
		assert.Equal(t, 59*time.Minute, cfg.Session.MaxDuration)
		assert.Equal(t, 20*time.Minute, cfg.Session.MaxIdleDuration)
	})

	t.Run("EnvironmentFallback", func(t *testing.T) {
		t.Setenv("QAAS_PROJECT_ID", "env-project")
		t.Setenv("QAAS_SECRET_KEY", "env-secret")
		t.Setenv("QAAS_API_URL", "http://localhost:7777")
		t.Setenv("QAAS_POLL_INTERVAL", "250ms")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "env-project", cfg.ProjectID)
		assert.Equal(t, "env-secret", cfg.SecretKey)
		assert.Equal(t, "http://localhost:7777", cfg.APIURL)
		assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	})

	t.Run("ProfileFile", func(t *testing.T) {
		path := writeProfile(t, `
project_id: profile-project
secret_key: profile-secret
session:
  name: workshop
  max_duration: 2h
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "profile-project", cfg.ProjectID)
		assert.Equal(t, "workshop", cfg.Session.Name)
		assert.Equal(t, 2*time.Hour, cfg.Session.MaxDuration)
		// Unset profile fields keep their defaults.
		assert.Equal(t, 20*time.Minute, cfg.Session.MaxIdleDuration)
	})

	t.Run("EnvironmentOverridesProfile", func(t *testing.T) {
		path := writeProfile(t, `
project_id: profile-project
secret_key: profile-secret
`)
		t.Setenv("QAAS_PROJECT_ID", "env-wins")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env-wins", cfg.ProjectID)
		assert.Equal(t, "profile-secret", cfg.SecretKey)
	})

	t.Run("ProfileFromEnvVar", func(t *testing.T) {
		path := writeProfile(t, `
project_id: pointed-at
secret_key: s
`)
		t.Setenv("QAAS_PROFILE", path)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "pointed-at", cfg.ProjectID)
	})
}

func TestLoadProfile(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("Empty", func(t *testing.T) {
		path := writeProfile(t, "   \n")
		_, err := LoadProfile(path)
		require.Error(t, err)
	})

	t.Run("UnknownField", func(t *testing.T) {
		path := writeProfile(t, `
project_id: p
secrit_key: typo
`)
		_, err := LoadProfile(path)
		require.Error(t, err)
	})

	t.Run("BadDuration", func(t *testing.T) {
		path := writeProfile(t, `
project_id: p
poll_interval: eventually
`)
		_, err := LoadProfile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "poll_interval")
	})
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{ProjectID: "p", SecretKey: "s"}
	require.NoError(t, cfg.Validate())

	require.Error(t, (&Config{SecretKey: "s"}).Validate())
	require.Error(t, (&Config{ProjectID: "p"}).Validate())
}

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
