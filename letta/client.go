// Package letta is a thin REST proxy to a Letta memory-agent
// deployment. The demo forwards intake summaries to per-user Letta
// agents and reads them back by prompting the agent's MCP tools.
package letta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ashleymikali/relationship-coach-simulator/internal/tlsutil"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"go.uber.org/zap"
)

// Config holds the Letta connection settings.
type Config struct {
	// BaseURL is the Letta API root, e.g. http://localhost:8283.
	BaseURL string

	// APIKey is the bearer token.
	APIKey string

	// Timeout for upstream calls. Defaults to 60s.
	Timeout time.Duration

	// AgentIDs maps demo user ids to Letta agent ids.
	AgentIDs map[string]string
}

// Client talks to the Letta messages endpoint.
type Client struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a Letta client.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:    cfg,
		client: tlsutil.SecureHTTPClient(timeout),
		logger: logger.With(zap.String("component", "letta")),
	}
}

// Configured reports whether base URL and API key are both set.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.APIKey != ""
}

// AgentIDForUser resolves the Letta agent id for a demo user.
func (c *Client) AgentIDForUser(userID string) (string, error) {
	if id := c.cfg.AgentIDs[userID]; id != "" {
		return id, nil
	}
	return "", types.NewErrorf(types.ErrInvalidRequest, "no Letta agent ID configured for %s", userID).
		WithHTTPStatus(http.StatusBadRequest)
}

// IntakeSummary is the payload forwarded to the Letta agent.
type IntakeSummary struct {
	UserID       string   `json:"user_id"`
	DisplayName  string   `json:"display_name"`
	Preferences  []string `json:"preferences"`
	Dealbreakers []string `json:"dealbreakers"`
	DatingThesis string   `json:"dating_thesis"`
	Source       string   `json:"source"` // "profile" | "live_intake" | "combined"
}

// StoreIntake tells the user's Letta agent to persist an intake
// summary via its store_intake_summary tool. Returns the raw upstream
// response.
func (c *Client) StoreIntake(ctx context.Context, req IntakeSummary) (json.RawMessage, error) {
	agentID, err := c.AgentIDForUser(req.UserID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Use the MCP tool store_intake_summary with these exact fields.\n"+
			"user_id: %s\n"+
			"display_name: %s\n"+
			"preferences: %s\n"+
			"dealbreakers: %s\n"+
			"dating_thesis: %s\n"+
			"source: %s\n"+
			"Then reply ONLY with the memory label stored.",
		req.UserID, req.DisplayName,
		strings.Join(req.Preferences, "; "), strings.Join(req.Dealbreakers, "; "),
		req.DatingThesis, req.Source,
	)

	return c.sendMessage(ctx, agentID, prompt)
}

// GetIntake asks the user's Letta agent to retrieve the stored intake
// summary from long-term memory.
func (c *Client) GetIntake(ctx context.Context, userID string) (json.RawMessage, error) {
	agentID, err := c.AgentIDForUser(userID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Retrieve the intake summary for %s from memory using the MCP tool retrieve_user_memory.\n"+
			"Return EXACTLY valid JSON.",
		userID,
	)

	return c.sendMessage(ctx, agentID, prompt)
}

// sendMessage POSTs one user message to the agent's messages endpoint.
// Upstream errors surface as 502 to our callers.
func (c *Client) sendMessage(ctx context.Context, agentID, prompt string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/agents/%s/messages", c.cfg.BaseURL, agentID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, types.NewErrorf(types.ErrUpstreamError, "Letta API unreachable: %v", err).
			WithHTTPStatus(http.StatusBadGateway).WithRetryable(true)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewErrorf(types.ErrUpstreamError, "failed to read Letta response: %v", err).
			WithHTTPStatus(http.StatusBadGateway)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("letta upstream error",
			zap.Int("status", resp.StatusCode),
			zap.String("agent_id", agentID),
		)
		return nil, types.NewErrorf(types.ErrUpstreamError, "Letta API error: %d %s", resp.StatusCode, data).
			WithHTTPStatus(http.StatusBadGateway)
	}

	return json.RawMessage(data), nil
}
