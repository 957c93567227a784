package agent

import (
	"context"
	"sync"
	"time"

	"github.com/ashleymikali/relationship-coach-simulator/agent/memory"
	"github.com/ashleymikali/relationship-coach-simulator/llm"
	"github.com/ashleymikali/relationship-coach-simulator/types"
)

// fakeProvider scripts LLM replies for orchestration tests. respond
// sees each request in order and returns the reply text.
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

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeProvider) call(i int) *llm.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func newTestClient(respond func(call int, req *llm.ChatRequest) (string, error)) (*Client, *fakeProvider) {
	p := &fakeProvider{respond: respond}
	return NewClient(p, nil, nil, nil), p
}

func newTestRegistry() *Registry {
	return NewRegistry(memory.NewFactory(memory.Config{}, nil, nil), nil)
}
