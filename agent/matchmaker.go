package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ashleymikali/relationship-coach-simulator/agent/memory"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"go.uber.org/zap"
)

// Matchmaker advocates for a single user: it runs their intake, plays
// them on simulated dates, and accumulates advocate notes in memory.
type Matchmaker struct {
	BaseAgent
	UserID  string
	Profile types.Profile
}

// NewMatchmaker creates the advocate agent for a user.
func NewMatchmaker(profile types.Profile, store memory.Store, logger *zap.Logger) *Matchmaker {
	return &Matchmaker{
		BaseAgent: newBaseAgent(
			"Matchmaker_"+profile.UserID,
			fmt.Sprintf("Advocate and simulator for user %s", profile.UserID),
			store,
			logger,
		),
		UserID:  profile.UserID,
		Profile: profile,
	}
}

// RunIntakeSummary generates the structured intake summary for this
// user with one LLM call and stores it in memory. extraContext carries
// live-intake Q/A notes when present.
//
// A reply that fails to parse as JSON degrades to a fallback summary
// whose thesis is the first 240 characters of the raw reply.
func (m *Matchmaker) RunIntakeSummary(ctx context.Context, client *Client, extraContext string) (types.IntakeSummary, error) {
	prompt := intakePrompt(m.Profile, extraContext)

	raw, err := client.Chat(ctx, "intake_summary", []types.Message{
		types.NewUserMessage(prompt),
	}, 0.7)
	if err != nil {
		return types.IntakeSummary{}, err
	}

	summary := parseIntakeSummary(raw)

	payload, _ := json.Marshal(summary)
	if err := m.Memory.Write(ctx, memory.Entry{
		Text: fmt.Sprintf("Intake summary for %s: %s", m.Profile.DisplayName, payload),
		Type: memory.TypeIntakeSummary,
		Metadata: map[string]string{
			"user_id": m.UserID,
		},
	}); err != nil {
		m.logger.Warn("failed to store intake summary", zap.Error(err))
	}

	return summary, nil
}

// HasIntakeSummary reports whether an intake summary is already in
// memory, preferring the type lookup and falling back to a substring
// search.
func (m *Matchmaker) HasIntakeSummary(ctx context.Context) bool {
	if latest, err := m.Memory.Latest(ctx, memory.TypeIntakeSummary); err == nil && latest != nil {
		return true
	}
	hits, err := m.Memory.Search(ctx, "Intake summary", 1)
	return err == nil && len(hits) > 0
}

func parseIntakeSummary(raw string) types.IntakeSummary {
	var summary types.IntakeSummary
	if err := ExtractJSON(raw, &summary); err != nil {
		return fallbackIntakeSummary(raw)
	}
	return summary
}

func fallbackIntakeSummary(raw string) types.IntakeSummary {
	thesis := trimSpaceTo(raw, 240)
	return types.IntakeSummary{
		Preferences:  []string{"Unable to parse preferences"},
		Dealbreakers: []string{"Unable to parse dealbreakers"},
		DatingThesis: thesis,
	}
}
