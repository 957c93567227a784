package handlers

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ashleymikali/relationship-coach-simulator/agent"
	"github.com/ashleymikali/relationship-coach-simulator/agent/memory"
	"github.com/ashleymikali/relationship-coach-simulator/llm"
	"github.com/ashleymikali/relationship-coach-simulator/types"
)

type fakeProvider struct {
	mu      sync.Mutex
	respond func(req *llm.ChatRequest) (string, error)
	calls   []*llm.ChatRequest
}

func (f *fakeProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	text, err := f.respond(req)
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

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

const testScoreJSON = `{"score_a":7,"score_b":8,"compatibility":72,"reasons":["steady pacing"],"quote":"Jordan: that landed well"}`

// scriptedRespond answers every orchestration step by prompt content,
// so handlers that fan out over many steps can share one provider.
func scriptedRespond(req *llm.ChatRequest) (string, error) {
	last := req.Messages[len(req.Messages)-1].Content
	system := ""
	if len(req.Messages) > 1 {
		system = req.Messages[0].Content
	}

	switch {
	case strings.Contains(last, "dating profile for intake"):
		return `{"preferences":["honesty"],"dealbreakers":["flakiness"],"dating_thesis":"warm and direct"}`, nil
	case strings.Contains(last, "setting the scene"):
		return "A quiet wine bar with mismatched chairs.", nil
	case strings.Contains(last, "test moment"):
		return "[The waiter brings the wrong order]", nil
	case strings.Contains(system, "roleplaying as"):
		return "That sounds about right to me.", nil
	case strings.Contains(last, "bullet-point observations"):
		return "• Both stayed calm\n• Humor landed\n• No flags", nil
	case strings.Contains(last, "delta insight"):
		return "A_DELTA: a\nB_DELTA: b\nSHARED_SIGNAL: s", nil
	case strings.Contains(last, "advocate reflection"):
		return "GREEN_FLAGS:\n- calm\nCONCERNS:\n- none\nNEXT_QUESTION:\nWhat next?", nil
	case strings.Contains(last, "scoring a first date"):
		return testScoreJSON, nil
	case strings.Contains(last, "final matchmaking pipeline report"):
		return "VERDICT: ACCEPT\n\nPIPELINE REASONING", nil
	case strings.Contains(last, "neutral matchmaking evaluator"):
		return "VERDICT: ACCEPT\n\nREPORT REASONING", nil
	default:
		return "Neutral evaluator reply for the demo audience.", nil
	}
}

func newTestEnv(t *testing.T, respond func(req *llm.ChatRequest) (string, error)) (*agent.Registry, *agent.Client, *fakeProvider) {
	t.Helper()
	if respond == nil {
		respond = scriptedRespond
	}
	provider := &fakeProvider{respond: respond}
	registry := agent.NewRegistry(memory.NewFactory(memory.Config{}, nil, nil), nil)
	client := agent.NewClient(provider, nil, nil, nil)
	return registry, client, provider
}
