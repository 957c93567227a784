package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ashleymikali/relationship-coach-simulator/agent/memory"
	"github.com/ashleymikali/relationship-coach-simulator/types"
	"go.uber.org/zap"
)

// TranscriptTurn is one line of a simulated date conversation.
type TranscriptTurn struct {
	Speaker string `json:"speaker"` // "A" or "B"
	Name    string `json:"name"`
	Text    string `json:"text"`
}

// DateScore is the structured result of scoring one exchange.
type DateScore struct {
	ScoreA        int      `json:"score_a"`
	ScoreB        int      `json:"score_b"`
	Compatibility int      `json:"compatibility"`
	Reasons       []string `json:"reasons"`
	Quote         string   `json:"quote"`
}

// ExchangeResult is everything one simulated date produces.
type ExchangeResult struct {
	Scene          string            `json:"scene"`
	Transcript     []TranscriptTurn  `json:"transcript"`
	EvaluatorNotes []string          `json:"evaluator_notes"`
	DeltaInsight   string            `json:"delta_insight"`
	Reflections    map[string]string `json:"reflections"`
	Score          DateScore         `json:"score"`
}

const exchangeTurns = 6

// Evaluator is the neutral third agent. It synthesizes both
// matchmakers' intake summaries, runs simulated dates, and produces
// the explainable reports.
type Evaluator struct {
	BaseAgent
}

// NewEvaluator creates the singleton neutral evaluator.
func NewEvaluator(store memory.Store, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		BaseAgent: newBaseAgent(
			"Agent#3_NeutralEvaluator",
			"Objective match evaluator and explainability provider",
			store,
			logger,
		),
	}
}

// GenerateMatchReport produces the plain-text VERDICT report for two
// users from their stored intake summaries, citing a quote from their
// most recent exchange when one exists.
func (e *Evaluator) GenerateMatchReport(ctx context.Context, client *Client, a, b *Matchmaker) (string, error) {
	intakeA := e.extractIntakeSummary(ctx, a)
	intakeB := e.extractIntakeSummary(ctx, b)

	quote := ""
	if exch := e.latestDateExchange(ctx, a, b); exch != "" {
		quote = shortQuote(exch, 160)
	}

	report, err := client.Chat(ctx, "match_report", []types.Message{
		types.NewUserMessage(matchReportPrompt(a.Profile, b.Profile, intakeA, intakeB, quote)),
	}, 0.7)
	if err != nil {
		return "", err
	}
	report = strings.TrimSpace(report)

	e.writeMemory(ctx, memory.Entry{
		Text: fmt.Sprintf("Match evaluation: %s × %s\n%s", a.Profile.DisplayName, b.Profile.DisplayName, report),
		Type: memory.TypeMatchReport,
		Metadata: map[string]string{
			"user_a_id": a.UserID,
			"user_b_id": b.UserID,
		},
	})

	return report, nil
}

// RunDateExchange simulates one date: scene, test moment, six
// alternating turns, evaluator notes, delta insight, advocate
// reflections, and a structured score, with memory writes along the
// way.
func (e *Evaluator) RunDateExchange(ctx context.Context, client *Client, a, b *Matchmaker) (*ExchangeResult, error) {
	intakeA := e.extractIntakeSummary(ctx, a)
	intakeB := e.extractIntakeSummary(ctx, b)

	scene, err := client.Chat(ctx, "date_scene", []types.Message{
		types.NewUserMessage(scenePrompt(a.Profile, b.Profile)),
	}, 0.7)
	if err != nil {
		return nil, err
	}
	scene = strings.TrimSpace(scene)

	testMoment, err := client.Chat(ctx, "test_moment", []types.Message{
		types.NewUserMessage(testMomentPrompt),
	}, 0.8)
	if err != nil {
		return nil, err
	}
	testMoment = strings.TrimSpace(testMoment)
	if !strings.HasPrefix(testMoment, "[") {
		testMoment = "[" + testMoment + "]"
	}

	transcript := make([]TranscriptTurn, 0, exchangeTurns)
	var running strings.Builder

	for turn := 0; turn < exchangeTurns; turn++ {
		isA := turn%2 == 0
		current := a
		intake := intakeA
		speaker := "A"
		if !isA {
			current = b
			intake = intakeB
			speaker = "B"
		}

		userPrompt := continueTurnPrompt
		if turn == 2 {
			userPrompt = testMomentTurnPrompt(testMoment)
		}

		reply, err := client.Chat(ctx, "date_turn", []types.Message{
			types.NewSystemMessage(turnSystemPrompt(current.Profile, intake, scene, running.String())),
			types.NewUserMessage(userPrompt),
		}, 0.7)
		if err != nil {
			return nil, err
		}
		reply = strings.TrimSpace(reply)

		transcript = append(transcript, TranscriptTurn{
			Speaker: speaker,
			Name:    current.Profile.DisplayName,
			Text:    reply,
		})
		fmt.Fprintf(&running, "%s: %s\n", current.Profile.DisplayName, reply)
	}

	transcriptText := formatTranscript(transcript)

	notesRaw, err := client.Chat(ctx, "evaluator_notes", []types.Message{
		types.NewUserMessage(evaluatorNotesPrompt(a.Profile, b.Profile, scene, transcriptText)),
	}, 0.6)
	if err != nil {
		return nil, err
	}
	notes := parseEvaluatorNotes(notesRaw)

	ts := time.Now()

	// Delta insight and reflections are best-effort; an LLM failure
	// there degrades to empty strings rather than failing the date.
	deltaInsight := e.generateDeltaInsight(ctx, client, a, b, intakeA, intakeB, scene, transcriptText, notes)
	if deltaInsight != "" {
		e.writeMemory(ctx, memory.Entry{
			Text: fmt.Sprintf("Delta insight: %s × %s\n%s",
				a.Profile.DisplayName, b.Profile.DisplayName, deltaInsight),
			Type:      memory.TypeDateDeltaInsight,
			Timestamp: ts,
			Metadata: map[string]string{
				"user_a_id": a.UserID,
				"user_b_id": b.UserID,
			},
		})
	}

	writeExchange := func(self, partner *Matchmaker) {
		if err := self.Memory.Write(ctx, memory.Entry{
			Text: fmt.Sprintf("Date exchange with %s:\n%s\n\n%s",
				partner.Profile.DisplayName, scene, transcriptText),
			Type:      memory.TypeDateExchange,
			Timestamp: ts,
			Metadata: map[string]string{
				"partner_user_id": partner.UserID,
			},
		}); err != nil {
			e.logger.Warn("failed to store date exchange", zap.String("agent", self.Name), zap.Error(err))
		}
	}
	writeExchange(a, b)
	writeExchange(b, a)

	e.writeMemory(ctx, memory.Entry{
		Text: fmt.Sprintf("Date exchange: %s × %s\nScene: %s\nTranscript:\n%s\nNotes: %s",
			a.Profile.DisplayName, b.Profile.DisplayName, scene, transcriptText, strings.Join(notes, "; ")),
		Type:      memory.TypeDateExchangeEval,
		Timestamp: ts,
		Metadata: map[string]string{
			"user_a_id": a.UserID,
			"user_b_id": b.UserID,
		},
	})

	reflections := map[string]string{
		a.UserID: e.writeMatchmakerReflection(ctx, client, a, b, intakeA, scene, transcriptText, ts),
		b.UserID: e.writeMatchmakerReflection(ctx, client, b, a, intakeB, scene, transcriptText, ts),
	}

	score, err := e.ScoreDateExchange(ctx, client, scene, transcript, intakeA, intakeB)
	if err != nil {
		return nil, err
	}

	scoreJSON, _ := json.MarshalIndent(score, "", "  ")
	e.writeMemory(ctx, memory.Entry{
		Text: fmt.Sprintf("Date score: %s × %s\n%s",
			a.Profile.DisplayName, b.Profile.DisplayName, scoreJSON),
		Type:      memory.TypeDateScore,
		Timestamp: ts,
		Metadata: map[string]string{
			"user_a_id": a.UserID,
			"user_b_id": b.UserID,
		},
	})

	return &ExchangeResult{
		Scene:          scene,
		Transcript:     transcript,
		EvaluatorNotes: notes,
		DeltaInsight:   deltaInsight,
		Reflections:    reflections,
		Score:          score,
	}, nil
}

// ScoreDateExchange scores one exchange with a single LLM call.
// Unparseable replies degrade to the neutral default score.
func (e *Evaluator) ScoreDateExchange(ctx context.Context, client *Client, scene string, transcript []TranscriptTurn, intakeA, intakeB types.IntakeSummary) (DateScore, error) {
	raw, err := client.Chat(ctx, "date_score", []types.Message{
		types.NewUserMessage(scorePrompt(scene, formatTranscript(transcript), intakeA, intakeB)),
	}, 0.5)
	if err != nil {
		return DateScore{}, err
	}

	return parseDateScore(raw), nil
}

// GeneratePipelineReport synthesizes several exchanges into a final
// VERDICT report with aggregate scores and memorable quotes.
func (e *Evaluator) GeneratePipelineReport(ctx context.Context, client *Client, a, b *Matchmaker, exchanges []*ExchangeResult) (string, error) {
	intakeA := e.extractIntakeSummary(ctx, a)
	intakeB := e.extractIntakeSummary(ctx, b)

	var sumCompat, sumA, sumB float64
	var quotes []string
	for _, ex := range exchanges {
		sumCompat += float64(ex.Score.Compatibility)
		sumA += float64(ex.Score.ScoreA)
		sumB += float64(ex.Score.ScoreB)
		if ex.Score.Quote != "" && len(quotes) < 3 {
			quotes = append(quotes, ex.Score.Quote)
		}
	}
	var avgCompat, avgA, avgB float64
	if n := float64(len(exchanges)); n > 0 {
		avgCompat = sumCompat / n
		avgA = sumA / n
		avgB = sumB / n
	}

	report, err := client.Chat(ctx, "pipeline_report", []types.Message{
		types.NewUserMessage(pipelineReportPrompt(
			a.Profile, b.Profile, intakeA, intakeB,
			len(exchanges), avgCompat, avgA, avgB, quotes,
		)),
	}, 0.6)
	if err != nil {
		return "", err
	}
	report = strings.TrimSpace(report)

	e.writeMemory(ctx, memory.Entry{
		Text: fmt.Sprintf("Pipeline report: %s × %s\n%s",
			a.Profile.DisplayName, b.Profile.DisplayName, report),
		Type: memory.TypePipelineReport,
		Metadata: map[string]string{
			"user_a_id": a.UserID,
			"user_b_id": b.UserID,
		},
	})

	return report, nil
}

func (e *Evaluator) generateDeltaInsight(ctx context.Context, client *Client, a, b *Matchmaker, intakeA, intakeB types.IntakeSummary, scene, transcriptText string, notes []string) string {
	out, err := client.Chat(ctx, "delta_insight", []types.Message{
		types.NewUserMessage(deltaInsightPrompt(a.Profile, b.Profile, intakeA, intakeB, scene, transcriptText, notes)),
	}, 0.5)
	if err != nil {
		e.logger.Warn("delta insight generation failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(out)
}

func (e *Evaluator) writeMatchmakerReflection(ctx context.Context, client *Client, self, other *Matchmaker, selfIntake types.IntakeSummary, scene, transcriptText string, ts time.Time) string {
	reflection, err := client.Chat(ctx, "matchmaker_reflection", []types.Message{
		types.NewUserMessage(reflectionPrompt(self.Profile, other.Profile, selfIntake, scene, transcriptText)),
	}, 0.6)
	if err != nil {
		e.logger.Warn("matchmaker reflection failed",
			zap.String("agent", self.Name), zap.Error(err))
		return ""
	}
	reflection = strings.TrimSpace(reflection)

	if err := self.Memory.Write(ctx, memory.Entry{
		Text: fmt.Sprintf("Matchmaker reflection after date with %s:\n%s",
			other.Profile.DisplayName, reflection),
		Type:      memory.TypeMatchmakerReflection,
		Timestamp: ts,
		Metadata: map[string]string{
			"partner_user_id": other.UserID,
		},
	}); err != nil {
		e.logger.Warn("failed to store reflection", zap.String("agent", self.Name), zap.Error(err))
	}
	return reflection
}

// extractIntakeSummary pulls the newest stored intake summary out of a
// matchmaker's memory, decoding the JSON payload embedded in the entry
// text. Missing or undecodable entries yield the placeholder summary.
func (e *Evaluator) extractIntakeSummary(ctx context.Context, m *Matchmaker) types.IntakeSummary {
	placeholder := types.IntakeSummary{
		Preferences:  []string{"No intake summary available"},
		Dealbreakers: []string{"No intake summary available"},
		DatingThesis: "No intake summary available",
	}
	if m == nil {
		return placeholder
	}

	entry, err := m.Memory.Latest(ctx, memory.TypeIntakeSummary)
	if err != nil || entry == nil {
		return placeholder
	}

	start := strings.Index(entry.Text, "{")
	end := strings.LastIndex(entry.Text, "}")
	if start == -1 || end <= start {
		return placeholder
	}

	var summary types.IntakeSummary
	if err := json.Unmarshal([]byte(entry.Text[start:end+1]), &summary); err != nil {
		return placeholder
	}
	return summary
}

// latestDateExchange finds the newest stored date_exchange text for
// this pair from either matchmaker's memory. Best-effort; returns ""
// when nothing is stored.
func (e *Evaluator) latestDateExchange(ctx context.Context, a, b *Matchmaker) string {
	type candidate struct {
		ts   time.Time
		text string
	}
	var candidates []candidate

	collect := func(m *Matchmaker, partnerID string) {
		if m == nil {
			return
		}
		entries, err := m.Memory.SearchType(ctx, memory.TypeDateExchange, 0)
		if err != nil {
			return
		}
		for _, entry := range entries {
			if pid := entry.Metadata["partner_user_id"]; pid != "" && pid != partnerID {
				continue
			}
			if entry.Text != "" {
				candidates = append(candidates, candidate{ts: entry.Timestamp, text: entry.Text})
			}
		}
	}
	collect(a, b.UserID)
	collect(b, a.UserID)

	if len(candidates) == 0 {
		return ""
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.ts.After(best.ts) {
			best = c
		}
	}
	return best.text
}

func (e *Evaluator) writeMemory(ctx context.Context, entry memory.Entry) {
	if err := e.Memory.Write(ctx, entry); err != nil {
		e.logger.Warn("failed to store evaluator memory", zap.String("type", entry.Type), zap.Error(err))
	}
}

func formatTranscript(transcript []TranscriptTurn) string {
	lines := make([]string, 0, len(transcript))
	for _, t := range transcript {
		lines = append(lines, fmt.Sprintf("%s: %s", t.Name, t.Text))
	}
	return strings.Join(lines, "\n")
}

// parseEvaluatorNotes keeps up to three bullet lines, stripped of
// bullet glyphs; markdown heading lines are dropped.
func parseEvaluatorNotes(raw string) []string {
	var notes []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "•-*"))
		notes = append(notes, line)
		if len(notes) >= 3 {
			break
		}
	}
	return notes
}

// parseDateScore decodes the score JSON, fills missing fields with the
// neutral defaults, and clamps out-of-range values.
func parseDateScore(raw string) DateScore {
	var decoded struct {
		ScoreA        *int     `json:"score_a"`
		ScoreB        *int     `json:"score_b"`
		Compatibility *int     `json:"compatibility"`
		Reasons       []string `json:"reasons"`
		Quote         string   `json:"quote"`
	}
	if err := ExtractJSON(raw, &decoded); err != nil {
		return DateScore{
			ScoreA:        5,
			ScoreB:        5,
			Compatibility: 50,
			Reasons:       []string{"Scoring failed - unable to parse LLM response"},
			Quote:         "",
		}
	}

	score := DateScore{ScoreA: 5, ScoreB: 5, Compatibility: 50, Quote: decoded.Quote}
	if decoded.ScoreA != nil {
		score.ScoreA = clamp(*decoded.ScoreA, 0, 10)
	}
	if decoded.ScoreB != nil {
		score.ScoreB = clamp(*decoded.ScoreB, 0, 10)
	}
	if decoded.Compatibility != nil {
		score.Compatibility = clamp(*decoded.Compatibility, 0, 100)
	}
	score.Reasons = decoded.Reasons
	if len(score.Reasons) == 0 {
		score.Reasons = []string{"Unable to parse reasons"}
	}
	return score
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
