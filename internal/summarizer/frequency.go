package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	wordPattern     = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// FrequencySummarizer picks the sentences of a synopsis whose words recur
// most often, and returns them in their original order.
type FrequencySummarizer struct {
	stopwords map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker.
func NewFrequencySummarizer() *FrequencySummarizer {
	m := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		m[w] = struct{}{}
	}
	return &FrequencySummarizer{stopwords: m}
}

// Summarize returns at most maxSentences sentences of text. Text without
// sentence punctuation is returned trimmed.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 2
	}
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}
	if len(sentences) <= maxSentences {
		return joinTrimmed(sentences), nil
	}

	tokens := make([][]string, len(sentences))
	freq := map[string]float64{}
	maxF := 0.0
	for i, sent := range sentences {
		tokens[i] = s.words(sent)
		for _, tok := range tokens[i] {
			freq[tok]++
			if freq[tok] > maxF {
				maxF = freq[tok]
			}
		}
	}

	scores := make([]float64, len(sentences))
	for i, toks := range tokens {
		if len(toks) == 0 {
			continue
		}
		sum := 0.0
		for _, tok := range toks {
			sum += freq[tok] / maxF
		}
		// damp long sentences
		scores[i] = sum / math.Sqrt(float64(len(toks)))
	}

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	selected := order[:maxSentences]
	sort.Ints(selected)

	picked := make([]string, len(selected))
	for i, idx := range selected {
		picked[i] = sentences[idx]
	}
	return joinTrimmed(picked), nil
}

func (s *FrequencySummarizer) words(text string) []string {
	raw := wordPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, w := range raw {
		if _, stop := s.stopwords[w]; !stop {
			out = append(out, w)
		}
	}
	return out
}

func joinTrimmed(sentences []string) string {
	parts := make([]string, len(sentences))
	for i, s := range sentences {
		parts[i] = strings.TrimSpace(s)
	}
	return strings.Join(parts, " ")
}

var stopwords = []string{
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "out", "off", "own", "same", "too", "very", "can", "will", "just", "should", "now", "he", "she", "his", "her", "they", "their",
}
