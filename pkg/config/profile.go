package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// profileFile is the on-disk shape of a profile. Durations are Go
// duration strings ("59m", "1h20m") and parsed after decoding.
type profileFile struct {
	ProjectID    string  `yaml:"project_id"`
	SecretKey    string  `yaml:"secret_key"`
	APIURL       string  `yaml:"api_url"`
	PollInterval string  `yaml:"poll_interval"`
	RateLimit    float64 `yaml:"rate_limit"`
	Session      struct {
		Name            string `yaml:"name"`
		DeduplicationID string `yaml:"deduplication_id"`
		MaxDuration     string `yaml:"max_duration"`
		MaxIdleDuration string `yaml:"max_idle_duration"`
	} `yaml:"session"`
}

// LoadProfile reads and parses a YAML profile file.
//
// Unknown fields are rejected rather than silently ignored, so a typo in
// a profile surfaces as an error instead of a mysteriously missing
// setting.
//
// Returns an error if:
//   - The file cannot be read (not found, permission denied, etc.)
//   - The content is not valid YAML or contains unknown fields
//   - A duration field does not parse
func LoadProfile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("profile file not found: %s", path)
		}
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	return ParseProfile(data, path)
}

// ParseProfile parses profile bytes. The path parameter is used only for
// error messages.
func ParseProfile(data []byte, path string) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("profile file is empty")
	}

	var file profileFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}

	cfg := &Config{
		ProjectID: file.ProjectID,
		SecretKey: file.SecretKey,
		APIURL:    file.APIURL,
		RateLimit: file.RateLimit,
	}
	cfg.Session.Name = file.Session.Name
	cfg.Session.DeduplicationID = file.Session.DeduplicationID

	var err error
	if cfg.PollInterval, err = parseOptionalDuration(file.PollInterval, "poll_interval", path); err != nil {
		return nil, err
	}
	if cfg.Session.MaxDuration, err = parseOptionalDuration(file.Session.MaxDuration, "session.max_duration", path); err != nil {
		return nil, err
	}
	if cfg.Session.MaxIdleDuration, err = parseOptionalDuration(file.Session.MaxIdleDuration, "session.max_idle_duration", path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseOptionalDuration(s, field, path string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("profile %s: %s: %w", path, field, err)
	}
	return d, nil
}
