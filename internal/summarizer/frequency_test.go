package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	text := "Jinwoo is the weakest hunter. The dungeon changes Jinwoo forever. Rain falls. Jinwoo rises through the dungeon ranks."
	out, err := NewFrequencySummarizer().Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "The dungeon changes Jinwoo forever. Jinwoo rises through the dungeon ranks.", out)
}

func TestSummarizeShortTextUnchanged(t *testing.T) {
	s := NewFrequencySummarizer()

	out, err := s.Summarize("  One sentence only.  ", 2)
	require.NoError(t, err)
	assert.Equal(t, "One sentence only.", out)

	out, err = s.Summarize("  no punctuation here ", 2)
	require.NoError(t, err)
	assert.Equal(t, "no punctuation here", out)

	out, err = s.Summarize("", 2)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSummarizeDefaultsMaxSentences(t *testing.T) {
	out, err := NewFrequencySummarizer().Summarize("A b. C d. E f. G h.", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
