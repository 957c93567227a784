// Package agent implements the matchmaking agents: one advocate
// matchmaker per demo user and a singleton neutral evaluator, each
// with its own append-only memory.
package agent

import (
	"context"
	"time"

	"github.com/ashleymikali/relationship-coach-simulator/agent/memory"
	"github.com/ashleymikali/relationship-coach-simulator/llm"
	"github.com/ashleymikali/relationship-coach-simulator/llm/retry"
	"github.com/ashleymikali/relationship-coach-simulator/llm/tokenizer"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"go.uber.org/zap"
)

// BaseAgent carries the identity and memory shared by all agents.
type BaseAgent struct {
	Name   string
	Role   string
	Memory memory.Store
	logger *zap.Logger
}

func newBaseAgent(name, role string, store memory.Store, logger *zap.Logger) BaseAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseAgent{
		Name:   name,
		Role:   role,
		Memory: store,
		logger: logger.With(zap.String("agent", name)),
	}
}

// StepObserver records the outcome of one LLM orchestration step, for
// metrics.
type StepObserver func(step string, duration time.Duration, err error)

// Client wraps the LLM provider with retries, token estimation, and
// per-step observability. All agent orchestration goes through it.
type Client struct {
	provider llm.Provider
	retryer  retry.Retryer
	est      *tokenizer.Estimator
	observe  StepObserver
	logger   *zap.Logger
}

// NewClient builds a Client. retryer and observe may be nil.
func NewClient(provider llm.Provider, retryer retry.Retryer, observe StepObserver, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retryer == nil {
		retryer = retry.NewBackoffRetryer(&retry.Policy{MaxRetries: 0}, logger)
	}
	return &Client{
		provider: provider,
		retryer:  retryer,
		est:      tokenizer.NewEstimator(""),
		observe:  observe,
		logger:   logger.With(zap.String("component", "agent_client")),
	}
}

// Model reports the provider's configured model slug.
func (c *Client) Model() string { return c.provider.Model() }

// Chat runs one completion for the named orchestration step and returns
// the first choice's text.
func (c *Client) Chat(ctx context.Context, step string, messages []types.Message, temperature float32) (string, error) {
	if est, err := c.est.CountMessages(messages); err == nil {
		c.logger.Debug("llm step",
			zap.String("step", step),
			zap.Int("prompt_tokens_est", est),
			zap.Float32("temperature", temperature),
		)
	}

	start := time.Now()
	var resp *llm.ChatResponse
	err := c.retryer.Do(ctx, func() error {
		var callErr error
		resp, callErr = c.provider.Completion(ctx, &llm.ChatRequest{
			Messages:    messages,
			Temperature: temperature,
		})
		return callErr
	})
	duration := time.Since(start)

	if c.observe != nil {
		c.observe(step, duration, err)
	}
	if err != nil {
		c.logger.Warn("llm step failed",
			zap.String("step", step),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return "", err
	}

	text, err := llm.FirstText(resp)
	if err != nil {
		c.logger.Warn("llm step returned no choices", zap.String("step", step))
		return "", err
	}

	c.logger.Debug("llm step done",
		zap.String("step", step),
		zap.Duration("duration", duration),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return text, nil
}
