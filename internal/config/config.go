package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_KEY: API key for the LLM provider (required)
// - LLM_API_URL: API endpoint URL (default: https://openrouter.ai/api/v1)
// - LLM_MODEL: Model name to use (default: openai/gpt-3.5-turbo)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 8000)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.3)
// - LLM_TIMEOUT: Request timeout in seconds (default: 30)
// - LLM_SITE_URL: Site URL for HTTP referer header (optional)
// - LLM_APP_NAME: Application name for X-Title header (optional)
//
// Correction Configuration:
// - CORRECT_BATCH_SIZE: Subtitle lines per model invocation (default: 50)
// - CORRECT_MAX_ATTEMPTS: Attempts per batch before giving up (default: 4)
// - CORRECT_RATE_LIMIT_BASE_DELAY: First rate-limit backoff (default: 5s)
// - CORRECT_RATE_LIMIT_STEP: Backoff growth per attempt (default: 5s)
// - CORRECT_OVERLOAD_DELAY: Delay after a transient overload (default: 3s)
// - CORRECT_RETRY_DELAY: Delay after other retryable failures (default: 2s)
// - CORRECT_BATCH_COOLDOWN: Pause between batches (default: 1s)
// - CORRECT_REFERENCE_LIMIT: Max runes of reference excerpt (default: 20000)
// - CORRECT_RULES_FILE: Optional file overriding the correction rule text,
//   one rule per non-empty line
//
// Media Directory Configuration:
// - MEDIA_DIRS: Comma-separated directories to scan (default: /media)
//
// Server Configuration:
// - HTTP_ADDR: Listen address for the HTTP API (default: :8080)
// - DB_PATH: SQLite database path (default: ./data/refsub.db)
// - WORKER_COUNT: Concurrent correction jobs (default: 1)
// - CRON_EXPR: Scan schedule (default: 0 0 * * *)
// - LOG_LEVEL: Minimum log level (default: info)
type Config struct {
	// LLM Configuration
	LLM LLMConfig `json:"llm"`

	// Correction Configuration
	Correct CorrectConfig `json:"correct"`

	// Media Directory Configuration
	Media MediaConfig `json:"media"`

	// Server Configuration
	Server ServerConfig `json:"server"`
}

// LLMConfig holds the configuration for LLM client
// Supports any OpenAI-compatible provider (OpenRouter, OpenAI, etc.)
type LLMConfig struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
	SiteURL     string  `json:"site_url"`
	AppName     string  `json:"app_name"`
}

// CorrectConfig holds the tunables of the correction pipeline
type CorrectConfig struct {
	BatchSize          int           `json:"batch_size"`
	MaxAttempts        int           `json:"max_attempts"`
	RateLimitBaseDelay time.Duration `json:"rate_limit_base_delay"`
	RateLimitStep      time.Duration `json:"rate_limit_step"`
	OverloadDelay      time.Duration `json:"overload_delay"`
	RetryDelay         time.Duration `json:"retry_delay"`
	BatchCooldown      time.Duration `json:"batch_cooldown"`
	ReferenceLimit     int           `json:"reference_limit"`
	RulesFile          string        `json:"rules_file"`
}

// Rules loads the correction rule override, if configured. Returns nil when
// no override is set so the built-in rule set applies.
func (c CorrectConfig) Rules() ([]string, error) {
	if c.RulesFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	var rules []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rules = append(rules, line)
		}
	}
	return rules, nil
}

// MediaConfig holds the configuration for media directories
type MediaConfig struct {
	Dirs []string `json:"dirs"`
}

// MediaPaths returns the directories to scan for subtitle files
func (c MediaConfig) MediaPaths() []string {
	ret := make([]string, 0, len(c.Dirs))
	for _, dir := range c.Dirs {
		if dir != "" {
			ret = append(ret, dir)
		}
	}
	return ret
}

// ServerConfig holds the daemon configuration
type ServerConfig struct {
	HTTPAddr    string `json:"http_addr"`
	DBPath      string `json:"db_path"`
	WorkerCount int    `json:"worker_count"`
	CronExpr    string `json:"cron_expr"`
	LogLevel    string `json:"log_level"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		LLM: LLMConfig{
			APIKey:      getEnvString("LLM_API_KEY", ""),
			APIURL:      getEnvString("LLM_API_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnvString("LLM_MODEL", "openai/gpt-3.5-turbo"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 8000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.3),
			Timeout:     getEnvInt("LLM_TIMEOUT", 30),
			SiteURL:     getEnvString("LLM_SITE_URL", ""),
			AppName:     getEnvString("LLM_APP_NAME", ""),
		},
		Correct: CorrectConfig{
			BatchSize:          getEnvInt("CORRECT_BATCH_SIZE", 50),
			MaxAttempts:        getEnvInt("CORRECT_MAX_ATTEMPTS", 4),
			RateLimitBaseDelay: getEnvDuration("CORRECT_RATE_LIMIT_BASE_DELAY", 5*time.Second),
			RateLimitStep:      getEnvDuration("CORRECT_RATE_LIMIT_STEP", 5*time.Second),
			OverloadDelay:      getEnvDuration("CORRECT_OVERLOAD_DELAY", 3*time.Second),
			RetryDelay:         getEnvDuration("CORRECT_RETRY_DELAY", 2*time.Second),
			BatchCooldown:      getEnvDuration("CORRECT_BATCH_COOLDOWN", time.Second),
			ReferenceLimit:     getEnvInt("CORRECT_REFERENCE_LIMIT", 20000),
			RulesFile:          getEnvString("CORRECT_RULES_FILE", ""),
		},
		Media: MediaConfig{
			Dirs: getEnvStringList("MEDIA_DIRS", []string{"/media"}),
		},
		Server: ServerConfig{
			HTTPAddr:    getEnvString("HTTP_ADDR", ":8080"),
			DBPath:      getEnvString("DB_PATH", "./data/refsub.db"),
			WorkerCount: getEnvInt("WORKER_COUNT", 1),
			CronExpr:    getEnvString("CRON_EXPR", "0 0 * * *"),
			LogLevel:    getEnvString("LOG_LEVEL", "info"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Correct.BatchSize < 1 {
		return fmt.Errorf("CORRECT_BATCH_SIZE must be greater than 0")
	}
	if c.Correct.MaxAttempts < 1 {
		return fmt.Errorf("CORRECT_MAX_ATTEMPTS must be greater than 0")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvStringList gets a comma-separated list from environment variables with default
func getEnvStringList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var ret []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			ret = append(ret, part)
		}
	}
	if len(ret) == 0 {
		return defaultValue
	}
	return ret
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration value from environment variables with default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
