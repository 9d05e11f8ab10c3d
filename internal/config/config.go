package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for promptune
type Config struct {
	LLM       LLMConfig       `json:"llm"`
	Embedding EmbeddingConfig `json:"embedding"`
	Database  DatabaseConfig  `json:"database"`
	Server    ServerConfig    `json:"server"`
	Optimizer OptimizerConfig `json:"optimizer"`
}

// LLMConfig holds LLM API configuration (vLLM/LiteLLM/OpenAI-compatible)
type LLMConfig struct {
	URL         string  `json:"url"`
	APIKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// EmbeddingConfig holds embedding API configuration, used by the
// semantic-similarity Evaluator (internal/adapters/evaluators)
type EmbeddingConfig struct {
	URL        string `json:"url"`
	APIKey     string `json:"api_key"`
	Model      string `json:"model"`      // e.g., "text-embedding-3-small"
	Dimensions int    `json:"dimensions"` // e.g., 1536
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Path is used for a local SQLite-free run history file when PostgresURL
	// is not set.
	Path string `json:"path"`
	// PostgresURL, when set, persists OptimizationRun/TrialRecord history
	// through internal/adapters/postgres instead.
	PostgresURL string `json:"postgres_url"`
}

// ServerConfig holds the progress-reporting HTTP server configuration
// (internal/adapters/http, internal/adapters/progress)
type ServerConfig struct {
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	CORSOrigins []string `json:"cors_origins"` // Allowed CORS origins
}

// OptimizerConfig holds the defaults a run starts from when the CLI or the
// optimize-run request does not override them; overridden per run by
// ports.Options when optimizer.Optimize is invoked.
type OptimizerConfig struct {
	MaxIterations      int     `json:"max_iterations"`
	BatchSize          int     `json:"batch_size"`
	EarlyStopThreshold float64 `json:"early_stop_threshold"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".promptune")

	return &Config{
		LLM: LLMConfig{
			URL:         "http://localhost:8000/v1",
			APIKey:      "",
			Model:       "Qwen/Qwen3-8B-AWQ",
			MaxTokens:   4096,
			Temperature: 0.7,
		},
		Embedding: EmbeddingConfig{
			URL:        "http://localhost:11434/v1",
			APIKey:     "",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		},
		Database: DatabaseConfig{
			Path:        filepath.Join(dataDir, "promptune.db"),
			PostgresURL: "",
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Optimizer: OptimizerConfig{
			MaxIterations:      100,
			BatchSize:          8,
			EarlyStopThreshold: 0.95,
		},
	}
}

// envString loads a string environment variable into the target pointer if set
func envString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// envInt loads an integer environment variable into the target pointer if set and valid
func envInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*target = i
		}
	}
}

// envFloat loads a float64 environment variable into the target pointer if set and valid
func envFloat(key string, target *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}

// envStringSlice loads a comma-separated environment variable into a string slice
func envStringSlice(key string, target *[]string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			*target = result
		}
	}
}

// Load loads configuration from a config file, then overlays environment
// variables, then validates the result.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to parse config file %s: %v\n", configPath, err)
		}
	}

	envString("PROMPTUNE_LLM_URL", &cfg.LLM.URL)
	envString("PROMPTUNE_LLM_API_KEY", &cfg.LLM.APIKey)
	envString("PROMPTUNE_LLM_MODEL", &cfg.LLM.Model)
	envInt("PROMPTUNE_LLM_MAX_TOKENS", &cfg.LLM.MaxTokens)
	envFloat("PROMPTUNE_LLM_TEMPERATURE", &cfg.LLM.Temperature)

	envString("PROMPTUNE_EMBEDDING_URL", &cfg.Embedding.URL)
	envString("PROMPTUNE_EMBEDDING_API_KEY", &cfg.Embedding.APIKey)
	envString("PROMPTUNE_EMBEDDING_MODEL", &cfg.Embedding.Model)
	envInt("PROMPTUNE_EMBEDDING_DIMENSIONS", &cfg.Embedding.Dimensions)

	envString("PROMPTUNE_DB_PATH", &cfg.Database.Path)
	envString("PROMPTUNE_POSTGRES_URL", &cfg.Database.PostgresURL)

	envString("PROMPTUNE_SERVER_HOST", &cfg.Server.Host)
	envInt("PROMPTUNE_SERVER_PORT", &cfg.Server.Port)
	envStringSlice("PROMPTUNE_CORS_ORIGINS", &cfg.Server.CORSOrigins)

	envInt("PROMPTUNE_MAX_ITERATIONS", &cfg.Optimizer.MaxIterations)
	envInt("PROMPTUNE_BATCH_SIZE", &cfg.Optimizer.BatchSize)
	envFloat("PROMPTUNE_EARLY_STOP_THRESHOLD", &cfg.Optimizer.EarlyStopThreshold)

	dataDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsEmbeddingConfigured returns true if an embedding service is configured
func (c *Config) IsEmbeddingConfigured() bool {
	return c.Embedding.URL != ""
}

// isValidURL validates that a URL has proper format
func isValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server port must be between 1 and 65535")
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, "LLM temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 1 {
		errs = append(errs, "LLM max_tokens must be positive")
	}
	if c.LLM.URL == "" {
		errs = append(errs, "LLM URL is required")
	} else if !isValidURL(c.LLM.URL) {
		errs = append(errs, "LLM URL must be a valid URL")
	}

	if c.Database.PostgresURL == "" && c.Database.Path == "" {
		errs = append(errs, "either PostgreSQL URL or database path is required")
	}
	if c.Database.PostgresURL != "" && !isValidURL(c.Database.PostgresURL) {
		errs = append(errs, "PostgreSQL URL must be a valid URL")
	}

	if c.Embedding.URL != "" {
		if !isValidURL(c.Embedding.URL) {
			errs = append(errs, "Embedding URL must be a valid URL")
		}
		if c.Embedding.Dimensions < 1 {
			errs = append(errs, "Embedding dimensions must be positive when URL is set")
		}
	}

	if c.Optimizer.MaxIterations < 0 {
		errs = append(errs, "optimizer max_iterations must be >= 0")
	}
	if c.Optimizer.BatchSize < 1 {
		errs = append(errs, "optimizer batch_size must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() string {
	if path := os.Getenv("PROMPTUNE_CONFIG"); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}

	configDir := filepath.Join(homeDir, ".config", "promptune")
	configPath := filepath.Join(configDir, "config.json")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	altPath := filepath.Join(homeDir, ".promptune", "config.json")
	if _, err := os.Stat(altPath); err == nil {
		return altPath
	}

	return configPath
}
