package bow

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedIsDeterministic(t *testing.T) {
	e := NewEmbedder(768)
	text := "Apple unveils new chips; analysts say the chips beat rivals. Apple shares rise."
	a := e.Embed(text)
	b := e.Embed(text)
	require.Len(t, a, 768)
	assert.Equal(t, a, b)
}

func TestEmbedCountsTopTokens(t *testing.T) {
	e := NewEmbedder(8)
	// "chips" x3, "apple" x2, "rise" x1, "new" x1; "a", "is", "to" are dropped.
	v := e.Embed("Apple chips is a new chips to CHIPS apple rise")
	assert.Equal(t, []float32{3, 2, 1, 1, 0, 0, 0, 0}, v)
}

func TestEmbedTiesKeepFirstSeenOrder(t *testing.T) {
	e := NewEmbedder(3)
	v1 := e.topCounts("zeta alpha beta")
	v2 := e.topCounts("beta beta alpha alpha zeta")
	assert.Equal(t, []int{1, 1, 1}, v1)
	assert.Equal(t, []int{2, 2, 1}, v2)
}

func TestEmbedTruncatesToDimensionAndVocabulary(t *testing.T) {
	var words []string
	for i := 0; i < 150; i++ {
		words = append(words, fmt.Sprintf("word%03d", i))
	}
	text := strings.Join(words, " ")

	small := NewEmbedder(10).Embed(text)
	assert.Len(t, small, 10)

	large := NewEmbedder(200).Embed(text)
	require.Len(t, large, 200)
	nonZero := 0
	for _, x := range large {
		if x != 0 {
			nonZero++
		}
	}
	assert.Equal(t, VocabularySize, nonZero)
}

func TestEmbedEmptyText(t *testing.T) {
	v := NewEmbedder(4).Embed("")
	assert.Equal(t, []float32{0, 0, 0, 0}, v)
}
