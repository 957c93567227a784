// Package intake runs the live intake interview: a counter-driven Q&A
// session that feeds the matchmaker's intake summary.
package intake

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ashleymikali/relationship-coach-simulator/agent"
	"github.com/ashleymikali/relationship-coach-simulator/agent/memory"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const firstQuestion = "What matters most to you in a romantic relationship, and how would you describe your ideal relationship dynamic?"

// Deterministic fallback bank, used when adaptive question generation
// fails. Keeps the demo reliable offline.
var fallbackQuestions = []string{
	"How do you like to handle conflict or tension when it comes up with a partner?",
	"What are your biggest dealbreakers or red flags in dating?",
	"What does a great week in a relationship look like for you (time together vs. alone, routines, etc.)?",
	"What kind of emotional support do you like to give and receive?",
}

type session struct {
	id         string
	userID     string
	stepIndex  int
	questions  []string
	answers    []string
	createdAt  time.Time
	isComplete bool
}

// StartResult is the response to starting a session.
type StartResult struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	StepIndex int    `json:"step_index"`
}

// AnswerResult is the response to submitting an answer. Question is
// empty and FinalSummary set once the session completes.
type AnswerResult struct {
	SessionID    string               `json:"session_id"`
	Question     *string              `json:"question"`
	StepIndex    int                  `json:"step_index"`
	IsComplete   bool                 `json:"is_complete"`
	FinalSummary *types.IntakeSummary `json:"final_summary"`
}

// Status reports session progress.
type Status struct {
	SessionID         string    `json:"session_id"`
	UserID            string    `json:"user_id"`
	StepIndex         int       `json:"step_index"`
	TotalQuestions    int       `json:"total_questions"`
	QuestionsAnswered int       `json:"questions_answered"`
	IsComplete        bool      `json:"is_complete"`
	CreatedAt         time.Time `json:"created_at"`
}

// Manager holds live intake sessions in memory, keyed by UUID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session

	registry       *agent.Registry
	client         *agent.Client
	totalQuestions int
	now            func() time.Time
	logger         *zap.Logger
}

// NewManager creates a session manager. totalQuestions <= 0 defaults
// to 5.
func NewManager(registry *agent.Registry, client *agent.Client, totalQuestions int, logger *zap.Logger) *Manager {
	if totalQuestions <= 0 {
		totalQuestions = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:       make(map[string]*session),
		registry:       registry,
		client:         client,
		totalQuestions: totalQuestions,
		now:            time.Now,
		logger:         logger.With(zap.String("component", "intake_live")),
	}
}

// Start opens a new session for the user and returns the first, fixed
// question.
func (m *Manager) Start(userID string) StartResult {
	s := &session{
		id:        uuid.NewString(),
		userID:    userID,
		questions: []string{firstQuestion},
		createdAt: m.now(),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info("live intake started",
		zap.String("session_id", s.id),
		zap.String("user_id", userID),
	)

	return StartResult{SessionID: s.id, Question: firstQuestion, StepIndex: 0}
}

// SubmitAnswer records the answer to the current question and either
// returns the next question or, after the final answer, re-runs the
// intake summary over the collected Q/A pairs.
func (m *Manager) SubmitAnswer(ctx context.Context, sessionID, answerText string) (*AnswerResult, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return nil, types.NewErrorf(types.ErrNotFound, "session %s not found", sessionID).
			WithHTTPStatus(http.StatusNotFound)
	}
	if s.isComplete {
		m.mu.Unlock()
		return nil, types.NewErrorf(types.ErrSessionComplete, "session %s is already complete", sessionID).
			WithHTTPStatus(http.StatusNotFound)
	}

	s.answers = append(s.answers, answerText)
	currentQuestion := s.questions[s.stepIndex]
	currentStep := s.stepIndex
	s.stepIndex++
	done := s.stepIndex >= m.totalQuestions
	if done {
		s.isComplete = true
	}
	userID := s.userID
	questions := append([]string(nil), s.questions...)
	answers := append([]string(nil), s.answers...)
	m.mu.Unlock()

	mm := m.registry.Matchmaker(userID)
	if mm != nil {
		if err := mm.Memory.Write(ctx, memory.Entry{
			Text: fmt.Sprintf("Q: %s\nA: %s", currentQuestion, answerText),
			Type: memory.TypeIntakeLive,
			Metadata: map[string]string{
				"session_id": sessionID,
				"step_index": strconv.Itoa(currentStep),
			},
		}); err != nil {
			m.logger.Warn("failed to store live intake answer", zap.Error(err))
		}
	}

	if done {
		summary := m.finalSummary(ctx, mm, questions, answers)
		return &AnswerResult{
			SessionID:    sessionID,
			Question:     nil,
			StepIndex:    currentStep + 1,
			IsComplete:   true,
			FinalSummary: &summary,
		}, nil
	}

	next := m.nextQuestion(ctx, currentQuestion, answerText, currentStep+1)

	m.mu.Lock()
	s.questions = append(s.questions, next)
	m.mu.Unlock()

	return &AnswerResult{
		SessionID:  sessionID,
		Question:   &next,
		StepIndex:  currentStep + 1,
		IsComplete: false,
	}, nil
}

// Status returns the progress of a session.
func (m *Manager) Status(sessionID string) (*Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, types.NewErrorf(types.ErrNotFound, "session %s not found", sessionID).
			WithHTTPStatus(http.StatusNotFound)
	}
	return &Status{
		SessionID:         s.id,
		UserID:            s.userID,
		StepIndex:         s.stepIndex,
		TotalQuestions:    m.totalQuestions,
		QuestionsAnswered: len(s.answers),
		IsComplete:        s.isComplete,
		CreatedAt:         s.createdAt,
	}, nil
}

// finalSummary joins the Q/A pairs and re-runs the matchmaker intake
// with them as extra context.
func (m *Manager) finalSummary(ctx context.Context, mm *agent.Matchmaker, questions, answers []string) types.IntakeSummary {
	if mm == nil {
		return types.IntakeSummary{
			Preferences:  []string{},
			Dealbreakers: []string{},
			DatingThesis: "No agent available for this user.",
		}
	}

	pairs := make([]string, 0, len(answers))
	for i := 0; i < len(questions) && i < len(answers); i++ {
		pairs = append(pairs, fmt.Sprintf("Q%d: %s\nA%d: %s", i+1, questions[i], i+1, answers[i]))
	}
	extraContext := strings.Join(pairs, "\n\n")

	summary, err := mm.RunIntakeSummary(ctx, m.client, extraContext)
	if err != nil {
		m.logger.Warn("final intake summary failed", zap.Error(err))
		return types.IntakeSummary{
			Preferences:  []string{"Unable to parse preferences"},
			Dealbreakers: []string{"Unable to parse dealbreakers"},
			DatingThesis: "",
		}
	}
	return summary
}

// nextQuestion generates the adaptive follow-up, falling back to the
// deterministic bank on error or an empty reply. stepIndex is the
// 0-based index of the question being generated.
func (m *Manager) nextQuestion(ctx context.Context, prevQuestion, prevAnswer string, stepIndex int) string {
	prompt := fmt.Sprintf(`You are conducting a dating intake interview. Generate the next question (question #%d of 5).

Previous question: %s
Their answer: %s

Generate a follow-up question that:
1) References their previous answer in ONE sentence (adaptive feel)
2) Stays short and conversational
3) Explores a different aspect of dating/relationships (values, communication style, deal-breakers, lifestyle compatibility, emotional needs)
4) Is open-ended and encourages thoughtful response

Return ONLY the question text, no extra commentary.
`, stepIndex+1, prevQuestion, prevAnswer)

	reply, err := m.client.Chat(ctx, "intake_next_question", []types.Message{
		types.NewUserMessage(prompt),
	}, 0.6)
	if err == nil {
		if q := strings.TrimSpace(reply); q != "" {
			return q
		}
	} else {
		m.logger.Warn("adaptive question generation failed, using fallback", zap.Error(err))
	}

	idx := stepIndex - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(fallbackQuestions)-1 {
		idx = len(fallbackQuestions) - 1
	}
	return fallbackQuestions[idx]
}
