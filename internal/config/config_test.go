package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "LEKE_TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "LEKE_TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "LEKE_TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "LEKE_TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "LEKE_TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsFloatOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal float64
		expected   float64
	}{
		{"parses float", "0.2", 0.7, 0.2},
		{"uses default for empty", "", 0.7, 0.7},
		{"uses default for garbage", "warm", 0.7, 0.7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("LEKE_TEST_FLOAT", tc.envValue)

			result := getEnvAsFloatOrDefault("LEKE_TEST_FLOAT", tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	t.Setenv("TEST_REQUIRED", "value123")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_BACKEND", "LLM_PROVIDER", "LLM_TEMPERATURE", "LLM_MAX_TOKENS", "DB_FILE", "MAX_UPLOAD_MB"} {
		t.Setenv(key, "")
	}
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("LLM_API_KEY", "")

	cfg := Load()

	if cfg.Port != "5000" {
		t.Errorf("Expected port 5000, got %q", cfg.Port)
	}
	if cfg.StoreBackend != StoreFile || cfg.DBFile != "db.json" {
		t.Errorf("Expected file store at db.json, got %q at %q", cfg.StoreBackend, cfg.DBFile)
	}
	if cfg.LLMProvider != "deepseek" || cfg.LLMAPIKey != "sk-test" {
		t.Errorf("Expected deepseek with DEEPSEEK_API_KEY, got %q / %q", cfg.LLMProvider, cfg.LLMAPIKey)
	}
	if cfg.LLMTemperature != 0.7 || cfg.LLMMaxTokens != 2000 {
		t.Errorf("Expected 0.7 / 2000, got %v / %d", cfg.LLMTemperature, cfg.LLMMaxTokens)
	}
	if cfg.MaxUploadBytes() != 16<<20 {
		t.Errorf("Expected 16 MB upload limit, got %d", cfg.MaxUploadBytes())
	}
}

func TestLoad_BackendRequiresURL(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "echo")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when DATABASE_URL is missing for postgres")
		}
	}()
	Load()
}

func TestLoad_LocalProvidersNeedNoKey(t *testing.T) {
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("LLM_PROVIDER", "Ollama")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")

	cfg := Load()
	if cfg.LLMProvider != "ollama" {
		t.Errorf("Expected provider to be lowercased, got %q", cfg.LLMProvider)
	}
}

func TestLoadClient_Layers(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "config.yaml")
	content := "api_url: http://remote:9000/api\nhistory_limit: 8\nclear_on_exit: false\ntimeout: 30s\n"
	if err := os.WriteFile(profile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEKE_API_URL", "")
	t.Setenv("LEKE_TIMEOUT", "")
	t.Setenv("LEKE_CLEAR_ON_EXIT", "")
	t.Setenv("LEKE_HISTORY_LIMIT", "3")
	t.Setenv("LEKE_WORD_WRAP", "")
	t.Setenv("LEKE_PLAIN", "")

	cfg, err := LoadClient(profile)
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.APIURL != "http://remote:9000/api" {
		t.Errorf("Expected profile API URL, got %q", cfg.APIURL)
	}
	if cfg.HistoryLimit != 3 {
		t.Errorf("Expected env to override history limit, got %d", cfg.HistoryLimit)
	}
	if cfg.ClearOnExit {
		t.Error("Expected clear_on_exit false from profile")
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.Timeout)
	}
}

func TestLoadClient_MissingProfileUsesDefaults(t *testing.T) {
	t.Setenv("LEKE_API_URL", "")
	t.Setenv("LEKE_HISTORY_LIMIT", "")
	t.Setenv("LEKE_CLEAR_ON_EXIT", "")
	t.Setenv("LEKE_TIMEOUT", "")
	t.Setenv("LEKE_WORD_WRAP", "")
	t.Setenv("LEKE_PLAIN", "")

	cfg, err := LoadClient(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg != DefaultClientConfig() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadClient_MalformedProfile(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(profile, []byte("api_url: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadClient(profile); err == nil {
		t.Error("Expected an error for a malformed profile")
	}
}
