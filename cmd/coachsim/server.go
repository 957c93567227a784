package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ashleymikali/relationship-coach-simulator/agent"
	"github.com/ashleymikali/relationship-coach-simulator/agent/intake"
	"github.com/ashleymikali/relationship-coach-simulator/agent/memory"
	"github.com/ashleymikali/relationship-coach-simulator/api/handlers"
	"github.com/ashleymikali/relationship-coach-simulator/config"
	"github.com/ashleymikali/relationship-coach-simulator/internal/metrics"
	"github.com/ashleymikali/relationship-coach-simulator/internal/server"
	"github.com/ashleymikali/relationship-coach-simulator/letta"
	"github.com/ashleymikali/relationship-coach-simulator/llm/openrouter"
	"github.com/ashleymikali/relationship-coach-simulator/llm/retry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Server wires the whole demo backend: provider, agents, handlers,
// middleware, and the two HTTP listeners (API and metrics).
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	collector *metrics.Collector

	api     *server.Manager
	metrics *server.Manager

	redisClient *redis.Client
	cancel      context.CancelFunc
}

// NewServer builds the full dependency graph from config.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	collector := metrics.NewCollector("coachsim", logger)

	provider := openrouter.New(openrouter.Config{
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
		SiteURL:  cfg.LLM.SiteURL,
		SiteName: cfg.LLM.SiteName,
	}, logger)

	retryer := retry.NewBackoffRetryer(&retry.Policy{
		MaxRetries:   cfg.LLM.MaxRetries,
		InitialDelay: retry.DefaultPolicy().InitialDelay,
		MaxDelay:     retry.DefaultPolicy().MaxDelay,
		Multiplier:   retry.DefaultPolicy().Multiplier,
		Jitter:       true,
	}, logger)

	client := agent.NewClient(provider, retryer, collector.RecordLLMStep, logger)

	var redisClient *redis.Client
	if cfg.Memory.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
	}

	stores := memory.NewFactory(memory.Config{
		Backend:    cfg.Memory.Backend,
		MaxEntries: cfg.Memory.MaxEntries,
	}, redisClient, logger)

	registry := agent.NewRegistry(stores, logger)
	intakeManager := intake.NewManager(registry, client, cfg.Intake.TotalQuestions, logger)

	lettaClient := letta.New(letta.Config{
		BaseURL:  cfg.Letta.BaseURL,
		APIKey:   cfg.Letta.APIKey,
		Timeout:  cfg.Letta.Timeout,
		AgentIDs: cfg.Letta.AgentIDs,
	}, logger)

	healthHandler := handlers.NewHealthHandler(logger)
	healthHandler.RegisterCheck(handlers.NewPingCheck("openrouter", func(ctx context.Context) error {
		status, err := provider.HealthCheck(ctx)
		if err != nil {
			return err
		}
		if !status.Healthy {
			return fmt.Errorf("provider unhealthy")
		}
		return nil
	}))
	if redisClient != nil {
		healthHandler.RegisterCheck(handlers.NewPingCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}

	usersHandler := handlers.NewUsersHandler(registry, logger)
	intakeHandler := handlers.NewIntakeHandler(registry, client, logger)
	liveHandler := handlers.NewLiveIntakeHandler(registry, intakeManager, logger)
	matchHandler := handlers.NewMatchHandler(registry, client, logger)
	chatHandler := handlers.NewChatHandler(client, logger)
	lettaHandler := handlers.NewLettaHandler(lettaClient, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", healthHandler.HandleHealth)
	mux.HandleFunc("GET /ready", healthHandler.HandleReady)
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, map[string]string{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})
	mux.HandleFunc("GET /api/users", usersHandler.HandleListUsers)
	mux.HandleFunc("POST /api/intake/{user_id}", intakeHandler.HandleRunIntake)
	mux.HandleFunc("POST /api/intake/live/start/{user_id}", liveHandler.HandleStart)
	mux.HandleFunc("POST /api/intake/live/answer/{session_id}", liveHandler.HandleAnswer)
	mux.HandleFunc("GET /api/intake/live/status/{session_id}", liveHandler.HandleStatus)
	mux.HandleFunc("POST /api/report/{user_a_id}/{user_b_id}", matchHandler.HandleReport)
	mux.HandleFunc("POST /api/date/exchange/{user_a_id}/{user_b_id}", matchHandler.HandleExchange)
	mux.HandleFunc("POST /api/pipeline/{user_a_id}/{user_b_id}", matchHandler.HandlePipeline)
	mux.HandleFunc("POST /api/chat/stream", chatHandler.HandleStream)
	mux.HandleFunc("POST /api/letta/intake/store", lettaHandler.HandleStoreIntake)
	mux.HandleFunc("GET /api/letta/intake/get", lettaHandler.HandleGetIntake)

	skipAuth := []string{"/api/health", "/ready", "/version"}
	middlewares := []Middleware{
		Recovery(logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(logger),
		MetricsMiddleware(collector),
		CORS(cfg.Server.CORSAllowedOrigins),
	}
	if cfg.Server.RateLimitRPS > 0 {
		middlewares = append(middlewares, RateLimiter(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger))
	}
	middlewares = append(middlewares, APIKeyAuth(cfg.Server.APIKeys, skipAuth, logger))

	handler := Chain(mux, middlewares...)

	apiConfig := server.DefaultConfig()
	apiConfig.Addr = fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	if cfg.Server.ReadTimeout > 0 {
		apiConfig.ReadTimeout = cfg.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout > 0 {
		apiConfig.WriteTimeout = cfg.Server.WriteTimeout
	}
	if cfg.Server.ShutdownTimeout > 0 {
		apiConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}

	s := &Server{
		cfg:         cfg,
		logger:      logger,
		collector:   collector,
		api:         server.NewManager(handler, apiConfig, logger),
		redisClient: redisClient,
		cancel:      cancel,
	}

	if cfg.Server.MetricsPort > 0 {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("GET /metrics", collector.Handler())

		metricsConfig := server.DefaultConfig()
		metricsConfig.Addr = fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		s.metrics = server.NewManager(metricsMux, metricsConfig, logger)
	}

	return s
}

// Start brings up the API listener and, when configured, the metrics
// listener.
func (s *Server) Start() error {
	if err := s.api.Start(); err != nil {
		return err
	}
	if s.metrics != nil {
		if err := s.metrics.Start(); err != nil {
			s.api.Shutdown(context.Background())
			return err
		}
	}
	return nil
}

// WaitForShutdown blocks until a signal or server error, then stops
// everything.
func (s *Server) WaitForShutdown() {
	s.api.WaitForShutdown()
	s.shutdownRest()
}

// Shutdown stops both listeners and closes shared clients.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.api.Shutdown(ctx)
	s.shutdownRest()
	return err
}

func (s *Server) shutdownRest() {
	s.cancel()
	if s.metrics != nil {
		if err := s.metrics.Shutdown(context.Background()); err != nil {
			s.logger.Error("metrics server shutdown failed", zap.Error(err))
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Warn("redis close failed", zap.Error(err))
		}
	}
}
