// Package config loads client configuration from the environment and
// optional profile files.
//
// Precedence, lowest to highest: built-in defaults, profile file,
// QAAS_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/openqaas/goqaas/pkg/qaas"
)

// envPrefix is the prefix for environment bindings (QAAS_PROJECT_ID,
// QAAS_SECRET_KEY, QAAS_API_URL, ...).
const envPrefix = "QAAS"

// EnvProfile names the environment variable pointing at a profile file.
const EnvProfile = "QAAS_PROFILE"

// SessionConfig holds defaults for implicitly provisioned sessions.
type SessionConfig struct {
	// Name labels provisioned sessions.
	Name string `mapstructure:"name"`

	// DeduplicationID keys sessions for server-side reuse.
	DeduplicationID string `mapstructure:"deduplication_id"`

	// MaxDuration is the hard session lifetime.
	MaxDuration time.Duration `mapstructure:"max_duration"`

	// MaxIdleDuration is the idle session lifetime.
	MaxIdleDuration time.Duration `mapstructure:"max_idle_duration"`
}

// Config is the full client configuration surface.
type Config struct {
	// ProjectID scopes all sessions and jobs (required).
	ProjectID string `mapstructure:"project_id"`

	// SecretKey is the API token (required).
	SecretKey string `mapstructure:"secret_key"`

	// APIURL is the control-plane endpoint. Empty selects the
	// production default.
	APIURL string `mapstructure:"api_url"`

	// PollInterval is the pause between job status queries.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// RateLimit caps control-plane requests per second. Zero is
	// unlimited.
	RateLimit float64 `mapstructure:"rate_limit"`

	// Session holds defaults for implicitly provisioned sessions.
	Session SessionConfig `mapstructure:"session"`
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProjectID) == "" {
		return &qaas.ConfigError{Field: "ProjectID", Message: "project id is required (QAAS_PROJECT_ID)"}
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return &qaas.ConfigError{Field: "SecretKey", Message: "secret key is required (QAAS_SECRET_KEY)"}
	}
	return nil
}

// ClientConfig converts to the transport-level configuration.
func (c *Config) ClientConfig() qaas.Config {
	return qaas.Config{
		ProjectID: c.ProjectID,
		SecretKey: c.SecretKey,
		BaseURL:   c.APIURL,
	}
}

// Load resolves the configuration from defaults, an optional profile
// file and the environment.
//
// profilePath may be empty; in that case the file named by QAAS_PROFILE
// is used when set, and no file otherwise. Load does not validate:
// callers decide when a partially resolved config is acceptable.
func Load(profilePath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if profilePath == "" {
		profilePath = v.GetString("profile")
	}
	if profilePath != "" {
		profile, err := LoadProfile(profilePath)
		if err != nil {
			return nil, err
		}
		applyProfile(v, profile)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Keys must be registered for environment bindings to survive
	// Unmarshal, so the required fields default to empty strings.
	v.SetDefault("project_id", "")
	v.SetDefault("secret_key", "")
	v.SetDefault("api_url", qaas.DefaultBaseURL)
	v.SetDefault("poll_interval", 5*time.Second)
	v.SetDefault("rate_limit", 0.0)
	v.SetDefault("session.name", "goqaas-session")
	v.SetDefault("session.deduplication_id", "goqaas-session")
	v.SetDefault("session.max_duration", 59*time.Minute)
	v.SetDefault("session.max_idle_duration", 20*time.Minute)
}

// applyProfile layers non-zero profile values between defaults and
// environment overrides.
func applyProfile(v *viper.Viper, p *Config) {
	set := func(key string, val any, zero bool) {
		if !zero {
			v.SetDefault(key, val)
		}
	}
	set("project_id", p.ProjectID, p.ProjectID == "")
	set("secret_key", p.SecretKey, p.SecretKey == "")
	set("api_url", p.APIURL, p.APIURL == "")
	set("poll_interval", p.PollInterval, p.PollInterval == 0)
	set("rate_limit", p.RateLimit, p.RateLimit == 0)
	set("session.name", p.Session.Name, p.Session.Name == "")
	set("session.deduplication_id", p.Session.DeduplicationID, p.Session.DeduplicationID == "")
	set("session.max_duration", p.Session.MaxDuration, p.Session.MaxDuration == 0)
	set("session.max_idle_duration", p.Session.MaxIdleDuration, p.Session.MaxIdleDuration == 0)
}
