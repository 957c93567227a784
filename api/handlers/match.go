package handlers

import (
	"net/http"

	"github.com/ashleymikali/relationship-coach-simulator/agent"
	"github.com/ashleymikali/relationship-coach-simulator/api"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const pipelineDateCount = 3

// MatchHandler runs the evaluator flows for a user pair.
type MatchHandler struct {
	registry *agent.Registry
	client   *agent.Client
	logger   *zap.Logger
}

// NewMatchHandler creates a match handler.
func NewMatchHandler(registry *agent.Registry, client *agent.Client, logger *zap.Logger) *MatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchHandler{
		registry: registry,
		client:   client,
		logger:   logger.With(zap.String("component", "match_handler")),
	}
}

// pair resolves both matchmakers from the path, writing the 404 itself
// when either side is unknown.
func (h *MatchHandler) pair(w http.ResponseWriter, r *http.Request) (a, b *agent.Matchmaker, ok bool) {
	userA := r.PathValue("user_a_id")
	userB := r.PathValue("user_b_id")

	a = h.registry.Matchmaker(userA)
	if a == nil {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrNotFound,
			"no matchmaker agent for user "+userA, h.logger)
		return nil, nil, false
	}
	b = h.registry.Matchmaker(userB)
	if b == nil {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrNotFound,
			"no matchmaker agent for user "+userB, h.logger)
		return nil, nil, false
	}
	return a, b, true
}

// warmIntake runs intake summaries for any matchmaker that has none
// yet. The two sides are independent, so they run concurrently.
func (h *MatchHandler) warmIntake(r *http.Request, a, b *agent.Matchmaker) error {
	g, ctx := errgroup.WithContext(r.Context())
	for _, mm := range []*agent.Matchmaker{a, b} {
		mm := mm
		if mm.HasIntakeSummary(ctx) {
			continue
		}
		g.Go(func() error {
			_, err := mm.RunIntakeSummary(ctx, h.client, "")
			return err
		})
	}
	return g.Wait()
}

// HandleReport generates a compatibility report for two users.
func (h *MatchHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	a, b, ok := h.pair(w, r)
	if !ok {
		return
	}

	report, err := h.registry.Evaluator().GenerateMatchReport(r.Context(), h.client, a, b)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, api.ReportResponse{Report: report})
}

// HandleExchange runs one simulated date between two users.
func (h *MatchHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	a, b, ok := h.pair(w, r)
	if !ok {
		return
	}
	if err := h.warmIntake(r, a, b); err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}

	result, err := h.registry.Evaluator().RunDateExchange(r.Context(), h.client, a, b)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// HandlePipeline runs the full flow for a pair. The dates stay
// sequential so each exchange builds on the memories of the previous
// ones.
func (h *MatchHandler) HandlePipeline(w http.ResponseWriter, r *http.Request) {
	a, b, ok := h.pair(w, r)
	if !ok {
		return
	}
	if err := h.warmIntake(r, a, b); err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}

	evaluator := h.registry.Evaluator()
	exchanges := make([]*agent.ExchangeResult, 0, pipelineDateCount)
	for i := 0; i < pipelineDateCount; i++ {
		result, err := evaluator.RunDateExchange(r.Context(), h.client, a, b)
		if err != nil {
			WriteAnyError(w, err, h.logger)
			return
		}
		exchanges = append(exchanges, result)
	}

	finalReport, err := evaluator.GeneratePipelineReport(r.Context(), h.client, a, b, exchanges)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, api.PipelineResponse{
		UserAID:     a.UserID,
		UserBID:     b.UserID,
		Dates:       exchanges,
		FinalReport: finalReport,
	})
}
