package summarizer

import (
	"math"
	"sort"
	"strings"

	"raptor/internal/text"
)

// FrequencySummarizer extracts the highest-signal sentences: each sentence
// is scored by the normalized frequency of its content words and the top
// sentences are returned in their original order.
type FrequencySummarizer struct{}

// NewFrequencySummarizer creates a frequency-based sentence ranker.
func NewFrequencySummarizer() *FrequencySummarizer { return &FrequencySummarizer{} }

// Summarize returns up to maxSentences sentences of the input, picked by
// content-word frequency. Input without sentence terminators is returned
// trimmed as-is.
func (s *FrequencySummarizer) Summarize(input string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := text.Sentences(input)
	if len(sentences) == 0 {
		return strings.TrimSpace(input), nil
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range text.ContentTokens(sent) {
			freq[tok]++
		}
	}
	var top float64
	for _, v := range freq {
		if v > top {
			top = v
		}
	}
	if top > 0 {
		for k := range freq {
			freq[k] /= top
		}
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, sent := range sentences {
		tokens := text.Tokens(sent)
		var score float64
		for _, tok := range tokens {
			score += freq[tok]
		}
		// Length normalization so long sentences do not dominate.
		if len(tokens) > 0 {
			score /= math.Sqrt(float64(len(tokens)))
		}
		scores[i] = ranked{idx: i, score: score}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}

	// Selected sentences keep their original document order.
	picked := make([]int, maxSentences)
	for i := range picked {
		picked[i] = scores[i].idx
	}
	sort.Ints(picked)

	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = strings.TrimSpace(sentences[idx])
	}
	return strings.Join(out, " "), nil
}
