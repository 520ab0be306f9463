package bow

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// VocabularySize is the number of most frequent tokens that contribute to a vector.
const VocabularySize = 100

// Embedder is a deterministic bag-of-words embedder used when the remote
// provider is unavailable. Position i of a vector holds the count of the i-th
// most frequent token of the text (ties broken by first occurrence).
// Vectors from this embedder are not comparable with provider vectors.
type Embedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
}

// NewEmbedder creates a fallback embedder emitting vectors of the given dimension.
func NewEmbedder(dimension int) *Embedder {
	return &Embedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]+`),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "bow" }

// Dimension returns the length of produced vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns the vector for text. Identical text yields an identical vector.
func (e *Embedder) Embed(text string) []float32 {
	vec := make([]float32, e.dimension)
	for i, c := range e.topCounts(text) {
		if i >= e.dimension {
			break
		}
		vec[i] = float32(c)
	}
	return vec
}

// EmbedAll embeds every text in order.
func (e *Embedder) EmbedAll(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.Embed(t)
	}
	return out
}

func (e *Embedder) topCounts(text string) []int {
	counts := make(map[string]int)
	var order []string
	for _, tok := range e.tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}
	// stable insertion by count keeps first-seen order among ties
	ranked := make([]string, 0, len(order))
	for _, tok := range order {
		i := len(ranked)
		for i > 0 && counts[ranked[i-1]] < counts[tok] {
			i--
		}
		ranked = append(ranked, "")
		copy(ranked[i+1:], ranked[i:])
		ranked[i] = tok
	}
	if len(ranked) > VocabularySize {
		ranked = ranked[:VocabularySize]
	}
	out := make([]int, len(ranked))
	for i, tok := range ranked {
		out[i] = counts[tok]
	}
	return out
}
