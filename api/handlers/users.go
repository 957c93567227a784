package handlers

import (
	"net/http"

	"github.com/ashleymikali/relationship-coach-simulator/agent"
	"github.com/ashleymikali/relationship-coach-simulator/api"
	"go.uber.org/zap"
)

// UsersHandler serves the seeded demo profiles.
type UsersHandler struct {
	registry *agent.Registry
	logger   *zap.Logger
}

// NewUsersHandler creates a users handler.
func NewUsersHandler(registry *agent.Registry, logger *zap.Logger) *UsersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsersHandler{
		registry: registry,
		logger:   logger.With(zap.String("component", "users_handler")),
	}
}

// HandleListUsers returns all demo users.
func (h *UsersHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, api.UsersResponse{Users: h.registry.ListUsers()})
}
