// Package tokenizer estimates token counts for prompt budgeting and
// request logging. OpenRouter routes to many model families, so the
// counts are estimates against a cl100k-style encoding, not exact.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/ashleymikali/relationship-coach-simulator/types"
	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// Estimator counts tokens with a lazily initialized tiktoken encoding.
type Estimator struct {
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	initErr  error
}

// NewEstimator creates an Estimator. An empty encoding selects cl100k_base.
func NewEstimator(encoding string) *Estimator {
	if encoding == "" {
		encoding = defaultEncoding
	}
	return &Estimator{encoding: encoding}
}

// init lazily loads the encoding (may fetch data on first use).
func (e *Estimator) init() error {
	e.once.Do(func() {
		enc, err := tiktoken.GetEncoding(e.encoding)
		if err != nil {
			e.initErr = fmt.Errorf("init tiktoken encoding %s: %w", e.encoding, err)
			return
		}
		e.enc = enc
	})
	return e.initErr
}

// CountText returns the token count of a single string.
func (e *Estimator) CountText(text string) (int, error) {
	if err := e.init(); err != nil {
		return 0, err
	}
	return len(e.enc.Encode(text, nil, nil)), nil
}

// CountMessages estimates the prompt size of a chat request, including
// per-message framing overhead.
func (e *Estimator) CountMessages(messages []types.Message) (int, error) {
	if err := e.init(); err != nil {
		return 0, err
	}
	total := 0
	for _, msg := range messages {
		// per-message overhead: <|start|>role\n content<|end|>\n
		total += 4
		total += len(e.enc.Encode(msg.Content, nil, nil))
		total += len(e.enc.Encode(string(msg.Role), nil, nil))
	}
	total += 3 // conversation-end overhead
	return total, nil
}

// Name identifies the estimator's encoding.
func (e *Estimator) Name() string {
	return fmt.Sprintf("tiktoken[%s]", e.encoding)
}
