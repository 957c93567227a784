package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ashleymikali/relationship-coach-simulator/agent"
	"github.com/ashleymikali/relationship-coach-simulator/api"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"go.uber.org/zap"
)

const (
	chatTemperature = 0.4
	chatChunkRunes  = 60
	chatChunkDelay  = 50 * time.Millisecond
)

// ChatHandler streams evaluator answers over SSE. The upstream call is
// a single completion; the response is re-chunked client-side so the
// demo UI renders a steady typing effect.
type ChatHandler struct {
	client *agent.Client
	logger *zap.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(client *agent.Client, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		client: client,
		logger: logger.With(zap.String("component", "chat_handler")),
	}
}

// HandleStream answers one user message as a named-event SSE stream:
// meta, transcript, delta chunks, then done (or error).
func (h *ChatHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	var req api.ChatStreamRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteErrorMessage(w, http.StatusInternalServerError, types.ErrInternalError,
			"streaming unsupported by connection", h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	send("meta", map[string]any{
		"timestamp": float64(time.Now().UnixMilli()) / 1000.0,
		"model":     h.client.Model(),
	})
	send("transcript", map[string]string{"speaker": "user", "text": req.UserText})
	send("transcript", map[string]string{
		"speaker": "agent#3",
		"text":    "Neutral evaluator online. Generating an explainable response.",
	})

	messages := []types.Message{
		types.NewSystemMessage(agent.ChatStreamSystemPrompt),
		types.NewUserMessage(req.UserText),
	}

	text, err := h.client.Chat(r.Context(), "chat_stream", messages, chatTemperature)
	if err != nil {
		h.logger.Warn("chat stream completion failed", zap.Error(err))
		send("error", map[string]string{"error": err.Error()})
		return
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i += chatChunkRunes {
		end := i + chatChunkRunes
		if end > len(runes) {
			end = len(runes)
		}
		send("delta", map[string]string{"speaker": "agent#3", "text": string(runes[i:end])})

		select {
		case <-r.Context().Done():
			return
		case <-time.After(chatChunkDelay):
		}
	}

	send("done", map[string]string{"status": "complete"})
}
