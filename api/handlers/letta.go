package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ashleymikali/relationship-coach-simulator/api"
	"github.com/ashleymikali/relationship-coach-simulator/letta"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"go.uber.org/zap"
)

// LettaHandler proxies intake summaries to the Letta memory agents.
type LettaHandler struct {
	client *letta.Client
	logger *zap.Logger
}

// NewLettaHandler creates a Letta proxy handler.
func NewLettaHandler(client *letta.Client, logger *zap.Logger) *LettaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LettaHandler{
		client: client,
		logger: logger.With(zap.String("component", "letta_handler")),
	}
}

// LettaProxyResponse wraps the raw upstream agent reply.
type LettaProxyResponse struct {
	OK            bool            `json:"ok"`
	LettaResponse json.RawMessage `json:"letta_response"`
}

func (h *LettaHandler) configured(w http.ResponseWriter) bool {
	if h.client.Configured() {
		return true
	}
	WriteErrorMessage(w, http.StatusServiceUnavailable, types.ErrServiceUnavailable,
		"Letta integration is not configured", h.logger)
	return false
}

// HandleStoreIntake forwards an intake summary to the user's Letta
// agent for long-term storage.
func (h *LettaHandler) HandleStoreIntake(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}

	var req api.LettaStoreIntakeRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if req.UserID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest,
			"user_id is required", h.logger)
		return
	}

	resp, err := h.client.StoreIntake(r.Context(), letta.IntakeSummary{
		UserID:       req.UserID,
		DisplayName:  req.DisplayName,
		Preferences:  req.Preferences,
		Dealbreakers: req.Dealbreakers,
		DatingThesis: req.DatingThesis,
		Source:       req.Source,
	})
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, LettaProxyResponse{OK: true, LettaResponse: resp})
}

// HandleGetIntake asks the user's Letta agent to recall the stored
// intake summary.
func (h *LettaHandler) HandleGetIntake(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest,
			"user_id query parameter is required", h.logger)
		return
	}

	resp, err := h.client.GetIntake(r.Context(), userID)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, LettaProxyResponse{OK: true, LettaResponse: resp})
}
