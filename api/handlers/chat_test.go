package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashleymikali/relationship-coach-simulator/agent"
	"github.com/ashleymikali/relationship-coach-simulator/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/chat/stream", strings.NewReader(body))
}

func TestHandleStream(t *testing.T) {
	long := strings.Repeat("All three agents agree on the verdict here. ", 4)
	_, client, provider := newTestEnv(t, func(req *llm.ChatRequest) (string, error) {
		return long, nil
	})
	h := NewChatHandler(client, nil)

	rec := httptest.NewRecorder()
	h.HandleStream(rec, streamRequest(`{"user_text":"Explain the demo"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: meta")
	assert.Contains(t, body, `"model":"fake/model"`)
	assert.Contains(t, body, "event: transcript")
	assert.Contains(t, body, `"speaker":"user"`)
	assert.Contains(t, body, "Neutral evaluator online.")
	assert.Contains(t, body, "event: done")
	assert.Contains(t, body, `"status":"complete"`)

	// The long answer is re-chunked into multiple deltas.
	deltas := strings.Count(body, "event: delta")
	assert.Greater(t, deltas, 1)

	// Upstream saw the evaluator persona and the user's question.
	provider.mu.Lock()
	call := provider.calls[0]
	provider.mu.Unlock()
	require.Len(t, call.Messages, 2)
	assert.Equal(t, agent.ChatStreamSystemPrompt, call.Messages[0].Content)
	assert.Equal(t, "Explain the demo", call.Messages[1].Content)
	assert.InDelta(t, 0.4, call.Temperature, 0.001)
}

func TestHandleStream_ProviderErrorEmitsErrorEvent(t *testing.T) {
	_, client, _ := newTestEnv(t, func(req *llm.ChatRequest) (string, error) {
		return "", errors.New("model offline")
	})
	h := NewChatHandler(client, nil)

	rec := httptest.NewRecorder()
	h.HandleStream(rec, streamRequest(`{"user_text":"hi"}`))

	// Stream already started, so the failure arrives as an event.
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "event: error")
	assert.Contains(t, body, "model offline")
	assert.NotContains(t, body, "event: done")
}

func TestHandleStream_BadBody(t *testing.T) {
	_, client, provider := newTestEnv(t, nil)
	h := NewChatHandler(client, nil)

	rec := httptest.NewRecorder()
	h.HandleStream(rec, streamRequest(`{"user_text":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, provider.callCount())
}
