package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ashleymikali/relationship-coach-simulator/agent"
	"github.com/ashleymikali/relationship-coach-simulator/agent/memory"
	"github.com/ashleymikali/relationship-coach-simulator/llm"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu      sync.Mutex
	respond func(call int, req *llm.ChatRequest) (string, error)
	calls   []*llm.ChatRequest
}

func (f *fakeProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	text, err := f.respond(call, req)
	if err != nil {
		return nil, err
	}
	return &llm.ChatResponse{
		Model: "fake/model",
		Choices: []llm.ChatChoice{{
			Message: types.NewAssistantMessage(text),
		}},
	}, nil
}

func (f *fakeProvider) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	ch := make(chan llm.StreamChunk)
	close(ch)
	return ch, nil
}

func (f *fakeProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true, Latency: time.Millisecond}, nil
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake/model" }

func newManager(respond func(call int, req *llm.ChatRequest) (string, error)) (*Manager, *agent.Registry) {
	registry := agent.NewRegistry(memory.NewFactory(memory.Config{}, nil, nil), nil)
	client := agent.NewClient(&fakeProvider{respond: respond}, nil, nil, nil)
	return NewManager(registry, client, 5, nil), registry
}

func TestStart(t *testing.T) {
	m, _ := newManager(func(call int, req *llm.ChatRequest) (string, error) {
		return "", nil
	})

	res := m.Start("user_001")
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, 0, res.StepIndex)
	assert.Contains(t, res.Question, "What matters most to you")

	status, err := m.Status(res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "user_001", status.UserID)
	assert.Equal(t, 5, status.TotalQuestions)
	assert.Equal(t, 0, status.QuestionsAnswered)
	assert.False(t, status.IsComplete)
	assert.False(t, status.CreatedAt.IsZero())
}

func TestSubmitAnswer_AdaptiveQuestion(t *testing.T) {
	m, registry := newManager(func(call int, req *llm.ChatRequest) (string, error) {
		return "What role does spontaneity play for you?", nil
	})

	res := m.Start("user_001")
	ans, err := m.SubmitAnswer(context.Background(), res.SessionID, "Honesty matters most.")
	require.NoError(t, err)

	assert.Equal(t, 1, ans.StepIndex)
	assert.False(t, ans.IsComplete)
	require.NotNil(t, ans.Question)
	assert.Equal(t, "What role does spontaneity play for you?", *ans.Question)
	assert.Nil(t, ans.FinalSummary)

	// The Q/A pair lands in the matchmaker memory.
	entry, err := registry.Matchmaker("user_001").Memory.Latest(context.Background(), memory.TypeIntakeLive)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Contains(t, entry.Text, "Q: What matters most to you")
	assert.Contains(t, entry.Text, "A: Honesty matters most.")
	assert.Equal(t, res.SessionID, entry.Metadata["session_id"])
	assert.Equal(t, "0", entry.Metadata["step_index"])
}

func TestSubmitAnswer_FallbackQuestions(t *testing.T) {
	m, _ := newManager(func(call int, req *llm.ChatRequest) (string, error) {
		return "", errors.New("model offline")
	})

	res := m.Start("user_001")

	for i, want := range fallbackQuestions {
		ans, err := m.SubmitAnswer(context.Background(), res.SessionID, fmt.Sprintf("answer %d", i+1))
		require.NoError(t, err)
		require.NotNil(t, ans.Question)
		assert.Equal(t, want, *ans.Question, "step %d", i+1)
	}
}

func TestSubmitAnswer_CompletesWithFinalSummary(t *testing.T) {
	summaryJSON := `{"preferences":["p"],"dealbreakers":["d"],"dating_thesis":"combined view"}`
	m, registry := newManager(func(call int, req *llm.ChatRequest) (string, error) {
		return summaryJSON, nil
	})

	res := m.Start("user_001")
	var final *AnswerResult
	for i := 1; i <= 5; i++ {
		ans, err := m.SubmitAnswer(context.Background(), res.SessionID, fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
		final = ans
	}

	assert.True(t, final.IsComplete)
	assert.Nil(t, final.Question)
	assert.Equal(t, 5, final.StepIndex)
	require.NotNil(t, final.FinalSummary)
	assert.Equal(t, "combined view", final.FinalSummary.DatingThesis)

	// Intake summary written with the joined Q/A context.
	mm := registry.Matchmaker("user_001")
	entry, err := mm.Memory.Latest(context.Background(), memory.TypeIntakeSummary)
	require.NoError(t, err)
	require.NotNil(t, entry)

	status, err := m.Status(res.SessionID)
	require.NoError(t, err)
	assert.True(t, status.IsComplete)
	assert.Equal(t, 5, status.QuestionsAnswered)

	// Further answers are rejected.
	_, err = m.SubmitAnswer(context.Background(), res.SessionID, "one more")
	require.Error(t, err)
	assert.Equal(t, types.ErrSessionComplete, types.GetErrorCode(err))
}

func TestSubmitAnswer_FinalSummaryPromptCarriesQA(t *testing.T) {
	provider := &fakeProvider{}
	provider.respond = func(call int, req *llm.ChatRequest) (string, error) {
		return `{"preferences":[],"dealbreakers":[],"dating_thesis":"t"}`, nil
	}
	registry := agent.NewRegistry(memory.NewFactory(memory.Config{}, nil, nil), nil)
	m := NewManager(registry, agent.NewClient(provider, nil, nil, nil), 5, nil)

	res := m.Start("user_002")
	for i := 1; i <= 5; i++ {
		_, err := m.SubmitAnswer(context.Background(), res.SessionID, fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
	}

	provider.mu.Lock()
	last := provider.calls[len(provider.calls)-1]
	provider.mu.Unlock()
	prompt := last.Messages[0].Content
	assert.Contains(t, prompt, "Live Intake Notes (Q/A):")
	assert.Contains(t, prompt, "Q1:")
	assert.Contains(t, prompt, "A5: answer 5")
}

func TestUnknownSession(t *testing.T) {
	m, _ := newManager(func(call int, req *llm.ChatRequest) (string, error) {
		return "", nil
	})

	_, err := m.SubmitAnswer(context.Background(), "nope", "hi")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))

	_, err = m.Status("nope")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}
