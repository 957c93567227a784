package agent

import (
	"encoding/json"
	"strings"
)

// ExtractJSON best-effort decodes a JSON object out of an LLM reply.
// Markdown code fences are stripped, then the first {...} block is
// taken, so replies with prose around the object still parse.
func ExtractJSON(text string, v any) error {
	t := strings.TrimSpace(text)

	if strings.HasPrefix(t, "```") {
		lines := strings.Split(t, "\n")
		if len(lines) > 0 {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
			lines = lines[:len(lines)-1]
		}
		t = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start != -1 && end != -1 && end > start {
		t = t[start : end+1]
	}

	return json.Unmarshal([]byte(t), v)
}
