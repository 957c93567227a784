package handlers

import (
	"net/http"
	"strings"

	"github.com/ashleymikali/relationship-coach-simulator/agent"
	"github.com/ashleymikali/relationship-coach-simulator/agent/intake"
	"github.com/ashleymikali/relationship-coach-simulator/api"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"go.uber.org/zap"
)

// IntakeHandler runs profile-based intake summaries.
type IntakeHandler struct {
	registry *agent.Registry
	client   *agent.Client
	logger   *zap.Logger
}

// NewIntakeHandler creates an intake handler.
func NewIntakeHandler(registry *agent.Registry, client *agent.Client, logger *zap.Logger) *IntakeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeHandler{
		registry: registry,
		client:   client,
		logger:   logger.With(zap.String("component", "intake_handler")),
	}
}

// HandleRunIntake summarizes one user's profile into intake memory.
func (h *IntakeHandler) HandleRunIntake(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	mm := h.registry.Matchmaker(userID)
	if mm == nil {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrNotFound,
			"no matchmaker agent for user "+userID, h.logger)
		return
	}

	summary, err := mm.RunIntakeSummary(r.Context(), h.client, "")
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, api.IntakeResponse{
		UserID:  userID,
		Summary: summary,
	})
}

// LiveIntakeHandler drives interactive intake sessions.
type LiveIntakeHandler struct {
	registry *agent.Registry
	manager  *intake.Manager
	logger   *zap.Logger
}

// NewLiveIntakeHandler creates a live intake handler.
func NewLiveIntakeHandler(registry *agent.Registry, manager *intake.Manager, logger *zap.Logger) *LiveIntakeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveIntakeHandler{
		registry: registry,
		manager:  manager,
		logger:   logger.With(zap.String("component", "live_intake_handler")),
	}
}

// HandleStart opens a session and returns the first question.
func (h *LiveIntakeHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if h.registry.User(userID) == nil {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrNotFound,
			"unknown user "+userID, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, h.manager.Start(userID))
}

// HandleAnswer records one answer and returns the next question, or
// the final summary once the session completes.
func (h *LiveIntakeHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	var req api.LiveAnswerRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.AnswerText) == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest,
			"answer_text must not be empty", h.logger)
		return
	}

	result, err := h.manager.SubmitAnswer(r.Context(), sessionID, req.AnswerText)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// HandleStatus reports session progress.
func (h *LiveIntakeHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.manager.Status(r.PathValue("session_id"))
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}
