// =============================================================================
// OpenRouter Provider
// =============================================================================
// OpenRouter exposes an OpenAI-compatible Chat Completions API, so this
// provider speaks that format: JSON POST for completions, SSE for streaming.
// =============================================================================

package openrouter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ashleymikali/relationship-coach-simulator/internal/tlsutil"
	"github.com/ashleymikali/relationship-coach-simulator/llm"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	defaultEndpointPath = "/chat/completions"
	defaultModelsPath   = "/models"
)

// Config holds the configuration for the OpenRouter provider.
type Config struct {
	// APIKey is the OpenRouter API key. Required.
	APIKey string

	// Model is the model slug to use when none is set on the request.
	Model string

	// BaseURL overrides the API root. Defaults to DefaultBaseURL.
	BaseURL string

	// Timeout is the HTTP client timeout. Defaults to 60s if zero.
	Timeout time.Duration

	// SiteURL and SiteName populate OpenRouter's optional attribution
	// headers (HTTP-Referer / X-Title).
	SiteURL  string
	SiteName string
}

// Provider is the OpenRouter chat completion client.
type Provider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a new OpenRouter provider with the given config.
func New(cfg Config, logger *zap.Logger) *Provider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(timeout),
		logger: logger.With(zap.String("component", "openrouter")),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return "openrouter" }

// Model returns the configured default model.
func (p *Provider) Model() string { return p.cfg.Model }

// buildHeaders applies auth and attribution headers to the HTTP request.
func (p *Provider) buildHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.SiteURL != "" {
		req.Header.Set("HTTP-Referer", p.cfg.SiteURL)
	}
	if p.cfg.SiteName != "" {
		req.Header.Set("X-Title", p.cfg.SiteName)
	}
}

// endpoint builds the full URL for a given path.
func (p *Provider) endpoint(path string) string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + path
}

// chooseModel resolves the model slug for a request.
func (p *Provider) chooseModel(req *llm.ChatRequest) string {
	if req != nil && req.Model != "" {
		return req.Model
	}
	return p.cfg.Model
}

// HealthCheck verifies the provider is reachable.
func (p *Provider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(defaultModelsPath), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return &llm.HealthStatus{Healthy: false, Latency: latency}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readErrorMessage(resp.Body)
		return &llm.HealthStatus{Healthy: false, Latency: latency},
			fmt.Errorf("openrouter health check failed: status=%d msg=%s", resp.StatusCode, msg)
	}

	return &llm.HealthStatus{Healthy: true, Latency: latency}, nil
}

// Completion performs a non-streaming chat completion.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if len(req.Messages) == 0 {
		return nil, &llm.Error{
			Code:       llm.ErrInvalidRequest,
			Message:    "messages cannot be empty",
			HTTPStatus: http.StatusBadRequest,
			Provider:   p.Name(),
		}
	}

	body := wireRequest{
		Model:       p.chooseModel(req),
		Messages:    convertMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(defaultEndpointPath), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &llm.Error{
			Code: llm.ErrUpstreamError, Message: err.Error(),
			HTTPStatus: http.StatusBadGateway, Retryable: true, Provider: p.Name(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrorMessage(resp.Body)
		return nil, mapHTTPError(resp.StatusCode, msg, p.Name())
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &llm.Error{
			Code: llm.ErrUpstreamError, Message: err.Error(),
			HTTPStatus: http.StatusBadGateway, Retryable: true, Provider: p.Name(),
		}
	}

	result := toChatResponse(wire, p.Name())
	if wire.Created != 0 {
		result.CreatedAt = time.Unix(wire.Created, 0)
	}
	return result, nil
}

// Stream performs a streaming chat completion via SSE.
func (p *Provider) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	if len(req.Messages) == 0 {
		return nil, &llm.Error{
			Code:       llm.ErrInvalidRequest,
			Message:    "messages cannot be empty",
			HTTPStatus: http.StatusBadRequest,
			Provider:   p.Name(),
		}
	}

	body := wireRequest{
		Model:       p.chooseModel(req),
		Messages:    convertMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
		Stream:      true,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(defaultEndpointPath), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.buildHeaders(httpReq)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &llm.Error{
			Code: llm.ErrUpstreamError, Message: err.Error(),
			HTTPStatus: http.StatusBadGateway, Retryable: true, Provider: p.Name(),
		}
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		msg := readErrorMessage(resp.Body)
		return nil, mapHTTPError(resp.StatusCode, msg, p.Name())
	}

	return streamSSE(ctx, resp.Body, p.Name()), nil
}

// streamSSE parses an OpenAI-compatible SSE stream into a chunk channel.
// The caller must have verified the response status before calling this.
func streamSSE(ctx context.Context, body io.ReadCloser, providerName string) <-chan llm.StreamChunk {
	ch := make(chan llm.StreamChunk)
	go func() {
		defer body.Close()
		defer close(ch)
		reader := bufio.NewReader(body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					select {
					case <-ctx.Done():
						return
					case ch <- llm.StreamChunk{Err: &llm.Error{
						Code: llm.ErrUpstreamError, Message: err.Error(),
						HTTPStatus: http.StatusBadGateway, Retryable: true, Provider: providerName,
					}}:
					}
				}
				return
			}
			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}

			var wire wireResponse
			if err := json.Unmarshal([]byte(data), &wire); err != nil {
				select {
				case <-ctx.Done():
					return
				case ch <- llm.StreamChunk{Err: &llm.Error{
					Code: llm.ErrUpstreamError, Message: err.Error(),
					HTTPStatus: http.StatusBadGateway, Retryable: true, Provider: providerName,
				}}:
				}
				return
			}

			for _, choice := range wire.Choices {
				chunk := llm.StreamChunk{
					ID:           wire.ID,
					Provider:     providerName,
					Model:        wire.Model,
					Index:        choice.Index,
					FinishReason: choice.FinishReason,
					Delta: types.Message{
						Role: types.RoleAssistant,
					},
				}
				if choice.Delta != nil {
					chunk.Delta.Content = choice.Delta.Content
				}
				select {
				case <-ctx.Done():
					return
				case ch <- chunk:
				}
			}
		}
	}()
	return ch
}
