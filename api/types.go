// Package api defines the request and response bodies of the HTTP
// surface.
package api

import (
	"github.com/ashleymikali/relationship-coach-simulator/agent"
	"github.com/ashleymikali/relationship-coach-simulator/types"
)

// UsersResponse lists the demo users.
type UsersResponse struct {
	Users []types.Profile `json:"users"`
}

// IntakeResponse is the result of running an intake summary.
type IntakeResponse struct {
	UserID  string              `json:"user_id"`
	Summary types.IntakeSummary `json:"summary"`
}

// ReportResponse carries a plain-text match report.
type ReportResponse struct {
	Report string `json:"report"`
}

// PipelineResponse is the result of a full matchmaking pipeline run.
type PipelineResponse struct {
	UserAID     string                  `json:"user_a_id"`
	UserBID     string                  `json:"user_b_id"`
	Dates       []*agent.ExchangeResult `json:"dates"`
	FinalReport string                  `json:"final_report"`
}

// ChatStreamRequest is the body of POST /api/chat/stream.
type ChatStreamRequest struct {
	UserText string `json:"user_text"`
}

// LiveAnswerRequest is the body of POST /api/intake/live/answer/{session_id}.
type LiveAnswerRequest struct {
	AnswerText string `json:"answer_text"`
}

// LettaStoreIntakeRequest is the body of POST /api/letta/intake/store.
type LettaStoreIntakeRequest struct {
	UserID       string   `json:"user_id"`
	DisplayName  string   `json:"display_name"`
	Preferences  []string `json:"preferences"`
	Dealbreakers []string `json:"dealbreakers"`
	DatingThesis string   `json:"dating_thesis"`
	Source       string   `json:"source"` // "profile" | "live_intake" | "combined"
}
