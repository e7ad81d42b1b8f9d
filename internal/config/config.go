package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMongo    = "mongo"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Storage
	StoreBackend  string
	DBFile        string
	DatabaseURL   string
	MigrationsDir string
	RedisURL      string
	MongoURI      string
	MongoDatabase string

	// Model
	LLMProvider       string
	LLMModel          string
	LLMAPIKey         string
	DeepSeekAPIURL    string
	OllamaHost        string
	LLMTemperature    float64
	LLMMaxTokens      int
	LLMConcurrentReqs int

	// Limits
	MaxUploadMB   int
	ChatRateLimit int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "5000"),
		Env:      getEnvOrDefault("ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		StoreBackend:  strings.ToLower(getEnvOrDefault("STORE_BACKEND", StoreFile)),
		DBFile:        getEnvOrDefault("DB_FILE", "db.json"),
		MigrationsDir: getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "leke"),

		LLMProvider:       strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "deepseek")),
		LLMModel:          getEnvOrDefault("LLM_MODEL", ""),
		DeepSeekAPIURL:    getEnvOrDefault("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		OllamaHost:        getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434"),
		LLMTemperature:    getEnvAsFloatOrDefault("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:      getEnvAsIntOrDefault("LLM_MAX_TOKENS", 2000),
		LLMConcurrentReqs: getEnvAsIntOrDefault("LLM_CONCURRENT_REQUESTS", 5),

		MaxUploadMB:   getEnvAsIntOrDefault("MAX_UPLOAD_MB", 16),
		ChatRateLimit: getEnvAsIntOrDefault("CHAT_RATE_LIMIT", 30),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "*"),
	}

	switch cfg.StoreBackend {
	case StorePostgres:
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	case StoreRedis:
		cfg.RedisURL = mustGetEnv("REDIS_URL")
	case StoreMongo:
		cfg.MongoURI = mustGetEnv("MONGO_URI")
	}

	cfg.LLMAPIKey = getEnvOrDefault("LLM_API_KEY", os.Getenv("DEEPSEEK_API_KEY"))
	if cfg.requiresAPIKey() && cfg.LLMAPIKey == "" {
		panic(fmt.Sprintf("LLM_API_KEY (or DEEPSEEK_API_KEY) is required for provider %s", cfg.LLMProvider))
	}

	return cfg
}

func (c *Config) requiresAPIKey() bool {
	switch c.LLMProvider {
	case "ollama", "echo":
		return false
	}
	return true
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// MaxUploadBytes is the largest multipart body /api/chat accepts.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
