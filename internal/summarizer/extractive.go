package summarizer

import (
	"errors"
	"strings"

	"raptor/internal/domain"
)

// ExtractiveChat adapts the frequency summarizer to the ChatModel boundary
// so tree construction can run fully offline. It summarizes the content of
// the last user message, ignoring the instruction line.
type ExtractiveChat struct {
	inner        *FrequencySummarizer
	maxSentences int
}

// NewExtractiveChat wraps a frequency summarizer as a chat model.
func NewExtractiveChat(maxSentences int) *ExtractiveChat {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return &ExtractiveChat{inner: NewFrequencySummarizer(), maxSentences: maxSentences}
}

// Chat extracts the text to summarize from the final user message and
// returns an assistant message carrying the extractive summary.
func (e *ExtractiveChat) Chat(messages []domain.ChatMessage) (domain.ChatMessage, error) {
	if len(messages) == 0 {
		return domain.ChatMessage{}, errors.New("no messages to summarize")
	}
	content := messages[len(messages)-1].Content
	// The instruction is the first line; the text follows the first blank line.
	if _, rest, found := strings.Cut(content, "\n\n"); found {
		content = rest
	}
	summary, err := e.inner.Summarize(content, e.maxSentences)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return domain.ChatMessage{Role: "assistant", Content: summary}, nil
}
