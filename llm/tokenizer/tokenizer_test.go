package tokenizer

import (
	"testing"

	"github.com/ashleymikali/relationship-coach-simulator/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEstimator_DefaultEncoding(t *testing.T) {
	e := NewEstimator("")
	assert.Equal(t, "tiktoken[cl100k_base]", e.Name())
}

func TestCountText(t *testing.T) {
	e := NewEstimator("")
	n, err := e.CountText("hello world")
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	empty, err := e.CountText("")
	require.NoError(t, err)
	assert.Equal(t, 0, empty)
}

func TestCountMessages(t *testing.T) {
	e := NewEstimator("")
	msgs := []types.Message{
		types.NewSystemMessage("You are a helpful assistant."),
		types.NewUserMessage("Tell me about yourself."),
	}
	n, err := e.CountMessages(msgs)
	require.NoError(t, err)

	// Framing overhead alone is 4 per message plus 3 at the end.
	assert.Greater(t, n, 11)

	single, err := e.CountMessages(msgs[:1])
	require.NoError(t, err)
	assert.Less(t, single, n)
}

func TestCountText_BadEncoding(t *testing.T) {
	e := NewEstimator("no_such_encoding")
	_, err := e.CountText("x")
	require.Error(t, err)
}
