package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ashleymikali/relationship-coach-simulator/types"
)

// Prompt templates for every orchestration step. The wording is part of
// the demo's behavior; edit with care.

// indentJSON renders a value the way the prompts expect intake
// summaries to appear.
func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func intakePrompt(p types.Profile, extraContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are analyzing a dating profile for intake. Based on this profile, generate a structured summary.

User Profile:
- Name: %s
- Bio: %s
- Traits: %s
- Boundaries: %s`,
		p.DisplayName, p.Bio, strings.Join(p.Traits, ", "), strings.Join(p.Boundaries, ", "))

	if extraContext != "" {
		fmt.Fprintf(&b, "\n\nLive Intake Notes (Q/A):\n%s", extraContext)
	}

	b.WriteString(`

Generate a JSON response with this exact structure:
{
  "preferences": [
    "preference 1",
    "preference 2",
    "preference 3",
    "preference 4",
    "preference 5",
    "preference 6"
  ],
  "dealbreakers": [
    "dealbreaker 1",
    "dealbreaker 2",
    "dealbreaker 3"
  ],
  "dating_thesis": "One sentence summarizing their dating philosophy and what they're looking for"
}

Rules:
- Return ONLY valid JSON (no markdown, no extra text).
- Be specific and insightful. Infer preferences from traits/bio/boundaries.
- If Live Intake Notes are provided, incorporate those insights into the summary.
`)
	return b.String()
}

func scenePrompt(a, b types.Profile) string {
	return fmt.Sprintf(`You are setting the scene for a first date between %s and %s.

Generate a 2-4 sentence scene description. Choose a setting (restaurant, coffee shop, park, art gallery, etc.) that feels natural for a first date. Be specific and atmospheric.

Return ONLY the scene description, no extra commentary.
`, a.DisplayName, b.DisplayName)
}

const testMomentPrompt = `Generate a brief test moment for a first date. This should be a minor awkward or challenging situation that reveals how people handle discomfort.

Examples:
- [The waiter brings the wrong order]
- [An awkward joke lands badly]
- [Someone's phone rings with an urgent call]
- [A minor disagreement about the menu]

Return ONLY the bracketed stage direction, keep it under 15 words.
`

func turnSystemPrompt(p types.Profile, intake types.IntakeSummary, scene, running string) string {
	return fmt.Sprintf(`You are roleplaying as %s on a first date.

Your profile:
- Bio: %s
- Traits: %s
- Boundaries: %s

Your intake summary:
%s

Scene:
%s

Conversation so far:
%s

Stay in character. Keep your response natural and conversational (2-4 sentences max).
`, p.DisplayName, p.Bio, strings.Join(p.Traits, ", "), strings.Join(p.Boundaries, ", "),
		indentJSON(intake), scene, running)
}

const continueTurnPrompt = "Continue the conversation naturally."

func testMomentTurnPrompt(testMoment string) string {
	return testMoment + "\nRespond naturally to what just happened."
}

func evaluatorNotesPrompt(a, b types.Profile, scene, transcriptText string) string {
	return fmt.Sprintf(`You observed this first date exchange between %s and %s.

Scene: %s

Transcript:
%s

Write 3 concise bullet-point observations about their interaction. Focus on:
- How they handled the test moment
- Communication styles and compatibility
- Red flags or green flags

Return ONLY the 3 bullets, no extra commentary.
`, a.DisplayName, b.DisplayName, scene, transcriptText)
}

func deltaInsightPrompt(a, b types.Profile, intakeA, intakeB types.IntakeSummary, scene, transcriptText string, notes []string) string {
	notesText := "- (no notes)"
	if len(notes) > 0 {
		bullets := make([]string, len(notes))
		for i, n := range notes {
			bullets[i] = "- " + n
		}
		notesText = strings.Join(bullets, "\n")
	}

	return fmt.Sprintf(`You are the neutral evaluator. Produce a short "delta insight" connecting intake expectations to observed behavior.

Scene:
%s

Intake A (%s):
%s

Intake B (%s):
%s

Observed transcript:
%s

Evaluator notes:
%s

Return EXACTLY this structure (plain text, no markdown):

A_DELTA: <1 sentence: one intake expectation vs one observed behavior>
B_DELTA: <1 sentence: one intake expectation vs one observed behavior>
SHARED_SIGNAL: <1 sentence: what the interaction suggests about compatibility>

Rules:
- Reference at least one concrete behavior from the transcript in each DELTA.
- Keep each line under ~180 characters.
`, scene, a.DisplayName, indentJSON(intakeA), b.DisplayName, indentJSON(intakeB), transcriptText, notesText)
}

func reflectionPrompt(self, other types.Profile, selfIntake types.IntakeSummary, scene, transcriptText string) string {
	return fmt.Sprintf(`You are the MatchmakerAgent advocating for %s.

Their intake summary (what they want / avoid):
%s

They just went on a simulated first date with %s.

Scene:
%s

Transcript:
%s

Write a short advocate reflection with EXACTLY this structure (plain text, no markdown):

GREEN_FLAGS:
- <bullet 1 grounded in transcript>
- <bullet 2 grounded in transcript>

CONCERNS:
- <bullet 1 grounded in transcript and tied to a dealbreaker or boundary>
- <bullet 2 grounded in transcript and tied to a preference mismatch>

NEXT_QUESTION:
<one follow-up question you would ask %s in a real intake>

Rules:
- Keep bullets crisp and specific.
- Cite at least one direct behavior or line from the transcript in GREEN_FLAGS and CONCERNS.
`, self.DisplayName, indentJSON(selfIntake), other.DisplayName, scene, transcriptText, self.DisplayName)
}

func scorePrompt(scene, transcriptText string, intakeA, intakeB types.IntakeSummary) string {
	return fmt.Sprintf(`You are scoring a first date exchange. Analyze the conversation and return a JSON score.

Scene: %s

Transcript:
%s

Intake Summary A:
%s

Intake Summary B:
%s

Generate a JSON response with this EXACT structure:
{
  "score_a": <0-10 integer, how well A performed>,
  "score_b": <0-10 integer, how well B performed>,
  "compatibility": <0-100 integer, overall compatibility>,
  "reasons": [
    "reason 1 grounded in behavior",
    "reason 2 grounded in behavior",
    "reason 3 grounded in behavior"
  ],
  "quote": "one short memorable quote from the transcript (under 100 chars)"
}

Rules:
- Return ONLY valid JSON, no markdown, no extra text
- Scores should reflect communication quality, boundary respect, and alignment with intake preferences
- Quote should be verbatim from transcript
`, scene, transcriptText, indentJSON(intakeA), indentJSON(intakeB))
}

func matchReportPrompt(a, b types.Profile, intakeA, intakeB types.IntakeSummary, exchangeQuote string) string {
	quoteClause := ""
	if exchangeQuote != "" {
		quoteClause = fmt.Sprintf(`
You also have a snippet from their most recent simulated date exchange:
QUOTE: "%s"

Include EXACTLY ONE bullet in REASONING that cites the QUOTE and ties it to a preference or dealbreaker from the intake summaries.`, exchangeQuote)
	}

	return fmt.Sprintf(`You are a neutral matchmaking evaluator. Analyze these two dating profiles and their intake summaries to determine compatibility.

USER A: %s
Bio: %s
Intake Summary:
%s

USER B: %s
Bio: %s
Intake Summary:
%s
%s

Generate a match evaluation report with this structure:

VERDICT: [ACCEPT or REJECT]

REASONING:
• [Reason 1 grounded in intake summaries]
• [Reason 2 grounded in intake summaries]
• [Reason 3 grounded in intake summaries]

PREDICTED FRICTION POINT:
[One specific area where conflict might arise based on their profiles]

SUGGESTED FIRST DATE:
[One icebreaker activity or conversation starter that plays to their strengths]

Rules:
- Be specific and reference actual preferences/dealbreakers from the intake summaries
- ACCEPT if compatibility is strong; REJECT if dealbreakers conflict
- Keep it concise and demo-friendly
- Return plain text, not JSON
`, a.DisplayName, a.Bio, indentJSON(intakeA), b.DisplayName, b.Bio, indentJSON(intakeB), quoteClause)
}

func pipelineReportPrompt(a, b types.Profile, intakeA, intakeB types.IntakeSummary, exchangeCount int, avgCompat, avgA, avgB float64, quotes []string) string {
	quotesText := "- (no quote extracted)"
	if len(quotes) > 0 {
		lines := make([]string, 0, len(quotes))
		for _, q := range quotes {
			lines = append(lines, fmt.Sprintf("- %q", q))
		}
		quotesText = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`You are generating a final matchmaking pipeline report after observing %d simulated date exchange(s).

USER A: %s
Intake Summary:
%s

USER B: %s
Intake Summary:
%s

AGGREGATE SCORES:
- Average Compatibility: %.1f/100
- %s Performance: %.1f/10
- %s Performance: %.1f/10

MEMORABLE QUOTES FROM EXCHANGES:
%s

Generate a final match evaluation report with this structure:

VERDICT: [ACCEPT or REJECT]

REASONING:
• [Reason 1 - reference at least ONE quote from above]
• [Reason 2 - grounded in scores and intake summaries]
• [Reason 3 - grounded in scores and intake summaries]

PREDICTED FRICTION POINT:
[One specific area where conflict might arise]

SUGGESTED FIRST DATE:
[One icebreaker activity that plays to their strengths]

Rules:
- ACCEPT if avg compatibility >= 60, otherwise REJECT
- At least ONE bullet in REASONING must cite a quote
- Be specific and reference actual data
- Return plain text, not JSON
`, exchangeCount, a.DisplayName, indentJSON(intakeA), b.DisplayName, indentJSON(intakeB),
		avgCompat, a.DisplayName, avgA, b.DisplayName, avgB, quotesText)
}

// ChatStreamSystemPrompt drives the presenter-facing streaming chat.
const ChatStreamSystemPrompt = `You are Agent #3, the neutral evaluator in an agentic matchmaking demo called "Hang the DJ".

Context you must assume is true:
- There are 3 demo users: Jordan (user_001), Alex (user_002), Sam (user_003).
- The backend exposes:
  - GET /api/users
  - POST /api/intake/{user_id}
  - POST /api/report/{user_a_id}/{user_b_id}
  - POST /api/date/exchange/{user_a_id}/{user_b_id}
  - POST /api/pipeline/{user_a_id}/{user_b_id}
  - Live intake endpoints exist too (/api/intake/live/...)
- The UI lets the presenter:
  1) run intake
  2) simulate dates
  3) generate reports
  4) ask you questions via this streaming endpoint

Your job:
- Answer in a demo-friendly way.
- If asked to explain the demo, summarize the workflow.
- 5–8 sentences unless asked for detail.`
