package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ashleymikali/relationship-coach-simulator/agent/memory"
	"github.com/ashleymikali/relationship-coach-simulator/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedIntake(t *testing.T, mm *Matchmaker, thesis string) {
	t.Helper()
	client, _ := newTestClient(func(call int, req *llm.ChatRequest) (string, error) {
		return fmt.Sprintf(`{"preferences":["p1"],"dealbreakers":["d1"],"dating_thesis":%q}`, thesis), nil
	})
	_, err := mm.RunIntakeSummary(context.Background(), client, "")
	require.NoError(t, err)
}

const scoreJSON = `{
  "score_a": 8,
  "score_b": 6,
  "compatibility": 72,
  "reasons": ["good listening", "handled the test moment", "shared humor"],
  "quote": "Jordan: I actually love board games."
}`

// scriptDateExchange answers the 13 calls RunDateExchange makes, in
// order: scene, test moment, 6 turns, notes, delta, two reflections,
// score.
func scriptDateExchange(call int, req *llm.ChatRequest) (string, error) {
	switch {
	case call == 0:
		return "A quiet cafe with rain on the windows.", nil
	case call == 1:
		return "The waiter brings the wrong order", nil
	case call >= 2 && call <= 7:
		return fmt.Sprintf("Turn %d reply.", call-2), nil
	case call == 8:
		return "• Handled the mix-up with humor\n• Styles complement each other\n• No red flags", nil
	case call == 9:
		return "A_DELTA: said plans, showed flexibility.\nB_DELTA: said spontaneity, showed patience.\nSHARED_SIGNAL: good repair after friction.", nil
	case call == 10 || call == 11:
		return "GREEN_FLAGS:\n- laughed together\n\nCONCERNS:\n- pacing\n\nNEXT_QUESTION:\nHow do you recharge?", nil
	case call == 12:
		return scoreJSON, nil
	}
	return "", fmt.Errorf("unexpected call %d", call)
}

func TestRunDateExchange(t *testing.T) {
	r := newTestRegistry()
	a := r.Matchmaker("user_001")
	b := r.Matchmaker("user_002")
	seedIntake(t, a, "thesis A")
	seedIntake(t, b, "thesis B")

	client, provider := newTestClient(scriptDateExchange)
	ev := r.Evaluator()

	result, err := ev.RunDateExchange(context.Background(), client, a, b)
	require.NoError(t, err)
	assert.Equal(t, 13, provider.callCount())

	assert.Equal(t, "A quiet cafe with rain on the windows.", result.Scene)

	require.Len(t, result.Transcript, 6)
	for i, turn := range result.Transcript {
		if i%2 == 0 {
			assert.Equal(t, "A", turn.Speaker)
			assert.Equal(t, "Jordan", turn.Name)
		} else {
			assert.Equal(t, "B", turn.Speaker)
			assert.Equal(t, "Alex", turn.Name)
		}
	}

	// The bare test moment gets bracket-wrapped and lands in turn 2's
	// user prompt; other turns just continue.
	turn2 := provider.call(4)
	require.Len(t, turn2.Messages, 2)
	assert.Contains(t, turn2.Messages[1].Content, "[The waiter brings the wrong order]")
	turn3 := provider.call(5)
	assert.Equal(t, "Continue the conversation naturally.", turn3.Messages[1].Content)

	// Turn system prompts carry the profile, intake, scene, and the
	// running transcript.
	turn5 := provider.call(7)
	sys := turn5.Messages[0].Content
	assert.Contains(t, sys, "roleplaying as Alex")
	assert.Contains(t, sys, "thesis B")
	assert.Contains(t, sys, result.Scene)
	assert.Contains(t, sys, "Jordan: Turn 0 reply.")

	assert.Equal(t, []string{
		"Handled the mix-up with humor",
		"Styles complement each other",
		"No red flags",
	}, result.EvaluatorNotes)
	assert.Contains(t, result.DeltaInsight, "SHARED_SIGNAL")

	require.Len(t, result.Reflections, 2)
	assert.Contains(t, result.Reflections["user_001"], "GREEN_FLAGS")

	assert.Equal(t, 8, result.Score.ScoreA)
	assert.Equal(t, 6, result.Score.ScoreB)
	assert.Equal(t, 72, result.Score.Compatibility)
	assert.Equal(t, "Jordan: I actually love board games.", result.Score.Quote)

	// Memory writes on all three agents.
	ctx := context.Background()
	exch, err := a.Memory.Latest(ctx, memory.TypeDateExchange)
	require.NoError(t, err)
	require.NotNil(t, exch)
	assert.Contains(t, exch.Text, "Date exchange with Alex:")
	assert.Equal(t, "user_002", exch.Metadata["partner_user_id"])

	refl, err := b.Memory.Latest(ctx, memory.TypeMatchmakerReflection)
	require.NoError(t, err)
	require.NotNil(t, refl)
	assert.Equal(t, "user_001", refl.Metadata["partner_user_id"])

	for _, typ := range []string{
		memory.TypeDateExchangeEval,
		memory.TypeDateDeltaInsight,
		memory.TypeDateScore,
	} {
		entry, err := ev.Memory.Latest(ctx, typ)
		require.NoError(t, err)
		assert.NotNil(t, entry, typ)
	}
}

func TestRunDateExchange_BestEffortStepsDegrade(t *testing.T) {
	r := newTestRegistry()
	a := r.Matchmaker("user_001")
	b := r.Matchmaker("user_003")
	seedIntake(t, a, "thesis A")
	seedIntake(t, b, "thesis C")

	client, _ := newTestClient(func(call int, req *llm.ChatRequest) (string, error) {
		// Delta insight and both reflections fail.
		if call >= 9 && call <= 11 {
			return "", errors.New("transient upstream error")
		}
		return scriptDateExchange(call, req)
	})

	result, err := r.Evaluator().RunDateExchange(context.Background(), client, a, b)
	require.NoError(t, err)
	assert.Empty(t, result.DeltaInsight)
	assert.Empty(t, result.Reflections["user_001"])
	assert.Empty(t, result.Reflections["user_003"])

	entry, err := r.Evaluator().Memory.Latest(context.Background(), memory.TypeDateDeltaInsight)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRunDateExchange_SceneErrorFails(t *testing.T) {
	r := newTestRegistry()
	client, _ := newTestClient(func(call int, req *llm.ChatRequest) (string, error) {
		return "", errors.New("boom")
	})
	_, err := r.Evaluator().RunDateExchange(context.Background(), client, r.Matchmaker("user_001"), r.Matchmaker("user_002"))
	require.Error(t, err)
}

func TestParseDateScore(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want DateScore
	}{
		{
			name: "complete",
			raw:  scoreJSON,
			want: DateScore{
				ScoreA: 8, ScoreB: 6, Compatibility: 72,
				Reasons: []string{"good listening", "handled the test moment", "shared humor"},
				Quote:   "Jordan: I actually love board games.",
			},
		},
		{
			name: "missing fields default",
			raw:  `{"score_a": 7}`,
			want: DateScore{
				ScoreA: 7, ScoreB: 5, Compatibility: 50,
				Reasons: []string{"Unable to parse reasons"},
			},
		},
		{
			name: "out of range clamped",
			raw:  `{"score_a": 15, "score_b": -3, "compatibility": 140, "reasons": ["r"]}`,
			want: DateScore{
				ScoreA: 10, ScoreB: 0, Compatibility: 100,
				Reasons: []string{"r"},
			},
		},
		{
			name: "unparseable",
			raw:  "I refuse to answer in JSON.",
			want: DateScore{
				ScoreA: 5, ScoreB: 5, Compatibility: 50,
				Reasons: []string{"Scoring failed - unable to parse LLM response"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDateScore(tt.raw))
		})
	}
}

func TestParseEvaluatorNotes(t *testing.T) {
	raw := "# Observations\n• First note\n- Second note\n* Third note\n• Fourth note"
	assert.Equal(t, []string{"First note", "Second note", "Third note"}, parseEvaluatorNotes(raw))

	assert.Empty(t, parseEvaluatorNotes("   "))
}

func TestGenerateMatchReport(t *testing.T) {
	r := newTestRegistry()
	a := r.Matchmaker("user_001")
	b := r.Matchmaker("user_003")
	seedIntake(t, a, "thesis A")
	seedIntake(t, b, "thesis C")

	// A prior exchange supplies a quotable line.
	require.NoError(t, a.Memory.Write(context.Background(), memory.Entry{
		Text: "Date exchange with Sam:\nA park.\n\nJordan: Hello.\nSam: I value honesty too.",
		Type: memory.TypeDateExchange,
		Metadata: map[string]string{
			"partner_user_id": "user_003",
		},
	}))

	client, provider := newTestClient(func(call int, req *llm.ChatRequest) (string, error) {
		return "VERDICT: ACCEPT\n\nREASONING:\n• fits\n", nil
	})

	report, err := r.Evaluator().GenerateMatchReport(context.Background(), client, a, b)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(report, "VERDICT: ACCEPT"))

	prompt := provider.call(0).Messages[0].Content
	assert.Contains(t, prompt, "USER A: Jordan")
	assert.Contains(t, prompt, "USER B: Sam")
	assert.Contains(t, prompt, "thesis A")
	assert.Contains(t, prompt, `QUOTE: "Sam: I value honesty too."`)

	entry, err := r.Evaluator().Memory.Latest(context.Background(), memory.TypeMatchReport)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "user_001", entry.Metadata["user_a_id"])
	assert.Equal(t, "user_003", entry.Metadata["user_b_id"])
}

func TestGenerateMatchReport_NoIntakeNoQuote(t *testing.T) {
	r := newTestRegistry()
	client, provider := newTestClient(func(call int, req *llm.ChatRequest) (string, error) {
		return "VERDICT: REJECT", nil
	})

	_, err := r.Evaluator().GenerateMatchReport(context.Background(), client,
		r.Matchmaker("user_001"), r.Matchmaker("user_002"))
	require.NoError(t, err)

	prompt := provider.call(0).Messages[0].Content
	assert.Contains(t, prompt, "No intake summary available")
	assert.NotContains(t, prompt, "QUOTE:")
}

func TestGeneratePipelineReport(t *testing.T) {
	r := newTestRegistry()
	a := r.Matchmaker("user_001")
	b := r.Matchmaker("user_002")
	seedIntake(t, a, "thesis A")
	seedIntake(t, b, "thesis B")

	exchanges := []*ExchangeResult{
		{Score: DateScore{ScoreA: 8, ScoreB: 6, Compatibility: 70, Quote: "q1"}},
		{Score: DateScore{ScoreA: 6, ScoreB: 8, Compatibility: 80, Quote: "q2"}},
		{Score: DateScore{ScoreA: 7, ScoreB: 7, Compatibility: 60}},
	}

	client, provider := newTestClient(func(call int, req *llm.ChatRequest) (string, error) {
		return "VERDICT: ACCEPT", nil
	})

	report, err := r.Evaluator().GeneratePipelineReport(context.Background(), client, a, b, exchanges)
	require.NoError(t, err)
	assert.Equal(t, "VERDICT: ACCEPT", report)

	prompt := provider.call(0).Messages[0].Content
	assert.Contains(t, prompt, "observing 3 simulated date exchange(s)")
	assert.Contains(t, prompt, "Average Compatibility: 70.0/100")
	assert.Contains(t, prompt, "Jordan Performance: 7.0/10")
	assert.Contains(t, prompt, `"q1"`)
	assert.Contains(t, prompt, `"q2"`)

	entry, err := r.Evaluator().Memory.Latest(context.Background(), memory.TypePipelineReport)
	require.NoError(t, err)
	require.NotNil(t, entry)
}
