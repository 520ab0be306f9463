package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeKeepsShortText(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("One sentence only.  ", 2)
	require.NoError(t, err)
	assert.Equal(t, "One sentence only.", out)

	out, err = s.Summarize("", 2)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSummarizePicksFrequentSentencesInOrder(t *testing.T) {
	text := "Chip stocks rallied on Monday. " +
		"The weather was mild. " +
		"Investors bought chip stocks after chip earnings beat forecasts. " +
		"A cat slept."
	out, err := NewFrequencySummarizer().Summarize(text, 2)
	require.NoError(t, err)
	assert.Equal(t, "Chip stocks rallied on Monday. Investors bought chip stocks after chip earnings beat forecasts.", out)
}

func TestSummarizeDefaultsSentenceCount(t *testing.T) {
	out, err := NewFrequencySummarizer().Summarize("A b c. D e f. G h i. J k l.", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
