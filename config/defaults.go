package config

import "time"

// DefaultConfig returns the development defaults. Every field can be
// overridden by YAML or environment.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8000,
			MetricsPort:     9090,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute, // pipelines hold the connection across many LLM calls
			ShutdownTimeout: 15 * time.Second,
			CORSAllowedOrigins: []string{
				"http://localhost:3000",
			},
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		LLM: LLMConfig{
			Model:      "meta-llama/llama-3.3-70b-instruct",
			BaseURL:    "https://openrouter.ai/api/v1",
			Timeout:    60 * time.Second,
			MaxRetries: 2,
			SiteURL:    "http://localhost:3000",
			SiteName:   "coachsim",
		},
		Memory: MemoryConfig{
			Backend:    "inmemory",
			MaxEntries: 500,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			DB:       0,
			PoolSize: 10,
		},
		Letta: LettaConfig{
			BaseURL: "http://localhost:8283",
			Timeout: 30 * time.Second,
		},
		Intake: IntakeConfig{
			TotalQuestions: 5,
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			OutputPaths: []string{"stdout"},
		},
	}
}
