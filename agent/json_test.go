package agent

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestExtractJSON(t *testing.T) {
	type payload struct {
		Preferences  []string `json:"preferences"`
		DatingThesis string   `json:"dating_thesis"`
	}

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "bare object",
			input: `{"preferences":["a"],"dating_thesis":"t"}`,
		},
		{
			name: "fenced",
			input: "```json\n" +
				`{"preferences":["a"],"dating_thesis":"t"}` + "\n```",
		},
		{
			name: "fenced without language",
			input: "```\n" +
				`{"preferences":["a"],"dating_thesis":"t"}` + "\n```",
		},
		{
			name:  "surrounding prose",
			input: "Here is the summary:\n{\"preferences\":[\"a\"],\"dating_thesis\":\"t\"}\nHope that helps!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			require.NoError(t, ExtractJSON(tt.input, &got))
			assert.Equal(t, []string{"a"}, got.Preferences)
			assert.Equal(t, "t", got.DatingThesis)
		})
	}
}

func TestExtractJSON_Invalid(t *testing.T) {
	var got map[string]any
	assert.Error(t, ExtractJSON("no json here", &got))
	assert.Error(t, ExtractJSON("", &got))
	assert.Error(t, ExtractJSON("{truncated", &got))
}

// Any JSON object must survive fencing and prose decoration.
func TestExtractJSON_Decorated(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		obj := map[string]string{}
		n := rapid.IntRange(0, 5).Draw(t, "n")
		for i := 0; i < n; i++ {
			k := rapid.StringMatching(`[a-z_]{1,12}`).Draw(t, "key")
			v := rapid.StringMatching(`[a-zA-Z0-9 .,!?']{0,40}`).Draw(t, "val")
			obj[k] = v
		}
		payload, err := json.Marshal(obj)
		require.NoError(t, err)

		prefix := rapid.StringMatching(`[a-zA-Z .,:!\n]{0,40}`).Draw(t, "prefix")
		suffix := rapid.StringMatching(`[a-zA-Z .,:!\n]{0,40}`).Draw(t, "suffix")
		text := prefix + string(payload) + suffix
		if rapid.Bool().Draw(t, "fence") {
			text = "```json\n" + text + "\n```"
		}

		var got map[string]string
		require.NoError(t, ExtractJSON(text, &got))
		assert.Equal(t, obj, got)
	})
}

func TestTrimSpaceTo(t *testing.T) {
	assert.Equal(t, "abc", trimSpaceTo("  abc  ", 10))
	assert.Equal(t, "ab", trimSpaceTo("abcd", 2))
	assert.Equal(t, "日本", trimSpaceTo("日本語", 2))
}

func TestShortQuote(t *testing.T) {
	text := "Date exchange with Alex:\nA cozy cafe.\n\nJordan: I like plans.\nAlex: I   like  surprises."
	assert.Equal(t, "Alex: I like surprises.", shortQuote(text, 160))

	long := "Jordan: " + strings.Repeat("x", 200)
	q := shortQuote(long, 160)
	assert.LessOrEqual(t, len([]rune(q)), 160)
	assert.True(t, strings.HasSuffix(q, "…"))

	assert.Equal(t, "no colon lines", shortQuote("no colon lines", 160))
}
