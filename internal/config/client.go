package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientConfig drives the terminal client. Values are layered: defaults,
// then the YAML profile, then LEKE_* environment variables. Flags are
// applied by the caller last.
type ClientConfig struct {
	APIURL       string        `yaml:"api_url"`
	Timeout      time.Duration `yaml:"timeout"`
	HistoryLimit int           `yaml:"history_limit"`
	ClearOnExit  bool          `yaml:"clear_on_exit"`
	WordWrap     int           `yaml:"word_wrap"`
	PlainOutput  bool          `yaml:"plain_output"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		APIURL:       "http://localhost:5000/api",
		Timeout:      2 * time.Minute,
		HistoryLimit: 5,
		ClearOnExit:  true,
		WordWrap:     80,
	}
}

// DefaultProfilePath is ~/.config/leke/config.yaml, or "" when the home
// directory is unknown.
func DefaultProfilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "leke", "config.yaml")
}

// LoadClient builds the client configuration. A missing profile is not an
// error; a malformed one is.
func LoadClient(profilePath string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	if profilePath != "" {
		data, err := os.ReadFile(profilePath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read profile %s: %w", profilePath, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse profile %s: %w", profilePath, err)
			}
		}
	}

	cfg.APIURL = getEnvOrDefault("LEKE_API_URL", cfg.APIURL)
	if d, err := time.ParseDuration(os.Getenv("LEKE_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	cfg.HistoryLimit = getEnvAsIntOrDefault("LEKE_HISTORY_LIMIT", cfg.HistoryLimit)
	cfg.ClearOnExit = getEnvAsBoolOrDefault("LEKE_CLEAR_ON_EXIT", cfg.ClearOnExit)
	cfg.WordWrap = getEnvAsIntOrDefault("LEKE_WORD_WRAP", cfg.WordWrap)
	cfg.PlainOutput = getEnvAsBoolOrDefault("LEKE_PLAIN", cfg.PlainOutput)

	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 5
	}
	return cfg, nil
}
