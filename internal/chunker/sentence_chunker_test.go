package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSentences(t *testing.T) {
	c := NewSentenceChunker()
	got := c.Sentences("Markets rallied. Tech led the gains!  Analysts were cautious")
	assert.Equal(t, []string{"Markets rallied.", "Tech led the gains!", "Analysts were cautious"}, got)
	assert.Empty(t, c.Sentences("   "))
}

func TestBound(t *testing.T) {
	c := NewSentenceChunker()
	text := "One two three. Four five six. Seven eight nine."

	t.Run("fits", func(t *testing.T) {
		assert.Equal(t, text, c.Bound(text, 1000))
		assert.Equal(t, text, c.Bound(text, 0))
	})

	t.Run("keeps whole sentences", func(t *testing.T) {
		assert.Equal(t, "One two three. Four five six.", c.Bound(text, 30))
	})

	t.Run("returns a prefix of the input", func(t *testing.T) {
		in := "Shares of U.S. chipmakers rose 3.5% on Monday.\n\nAnalysts expect more gains later this year."
		got := c.Bound(in, 60)
		assert.Equal(t, "Shares of U.S. chipmakers rose 3.5% on Monday.", got)
		assert.True(t, strings.HasPrefix(in, got))
	})

	t.Run("keeps paragraph breaks", func(t *testing.T) {
		in := "First paragraph.\n\nSecond paragraph. Third paragraph is long enough."
		assert.Equal(t, "First paragraph.\n\nSecond paragraph.", c.Bound(in, 40))
	})

	t.Run("hard cut when first sentence is too long", func(t *testing.T) {
		got := c.Bound("Ünïcödé everywhere here.", 5)
		assert.Equal(t, "Ünïcö", got)
		assert.Equal(t, 5, utf8.RuneCountInString(got))
	})
}
