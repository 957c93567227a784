// Package config holds the coachsim configuration and its loader.
//
// Priority: defaults, then YAML file, then COACHSIM_* environment
// variables.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete coachsim configuration.
type Config struct {
	Server ServerConfig `yaml:"server" env:"SERVER"`
	LLM    LLMConfig    `yaml:"llm" env:"LLM"`
	Memory MemoryConfig `yaml:"memory" env:"MEMORY"`
	Redis  RedisConfig  `yaml:"redis" env:"REDIS"`
	Letta  LettaConfig  `yaml:"letta" env:"LETTA"`
	Intake IntakeConfig `yaml:"intake" env:"INTAKE"`
	Log    LogConfig    `yaml:"log" env:"LOG"`
}

// ServerConfig configures the HTTP listener and its middleware.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`

	// CORSAllowedOrigins lists the frontend origins permitted by the
	// CORS middleware.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`

	// APIKeys, when non-empty, turns on API-key auth for /api routes.
	APIKeys []string `yaml:"api_keys" env:"API_KEYS"`

	// RateLimitRPS and RateLimitBurst configure per-client rate
	// limiting. RPS 0 disables the limiter.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// LLMConfig configures the OpenRouter provider.
type LLMConfig struct {
	APIKey     string        `yaml:"api_key" env:"API_KEY"`
	Model      string        `yaml:"model" env:"MODEL"`
	BaseURL    string        `yaml:"base_url" env:"BASE_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxRetries int           `yaml:"max_retries" env:"MAX_RETRIES"`

	// SiteURL and SiteName feed OpenRouter's attribution headers.
	SiteURL  string `yaml:"site_url" env:"SITE_URL"`
	SiteName string `yaml:"site_name" env:"SITE_NAME"`
}

// MemoryConfig selects the agent memory backend.
type MemoryConfig struct {
	// Backend is "inmemory" or "redis".
	Backend string `yaml:"backend" env:"BACKEND"`

	// MaxEntries caps each agent's memory log. 0 means unbounded.
	MaxEntries int `yaml:"max_entries" env:"MAX_ENTRIES"`
}

// RedisConfig configures the optional Redis connection.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	PoolSize int    `yaml:"pool_size" env:"POOL_SIZE"`
}

// LettaConfig configures the memory-agent proxy.
type LettaConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// AgentIDs maps demo user ids to upstream agent ids. YAML only.
	AgentIDs map[string]string `yaml:"agent_ids" env:"-"`
}

// IntakeConfig configures the live intake flow.
type IntakeConfig struct {
	// TotalQuestions is the number of answers a live intake session
	// collects before completing.
	TotalQuestions int `yaml:"total_questions" env:"TOTAL_QUESTIONS"`
}

// LogConfig configures zap.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json or console.
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths passed to zap; defaults to stdout.
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, "invalid metrics port")
	}
	if c.LLM.Model == "" {
		errs = append(errs, "llm.model is required")
	}
	switch c.Memory.Backend {
	case "", "inmemory", "redis":
	default:
		errs = append(errs, fmt.Sprintf("unknown memory backend %q", c.Memory.Backend))
	}
	if c.Memory.Backend == "redis" && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr is required for the redis memory backend")
	}
	if c.Intake.TotalQuestions <= 0 {
		errs = append(errs, "intake.total_questions must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
