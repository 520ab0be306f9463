package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SentenceChunker splits text into sentences and trims text to a size budget
// on sentence boundaries.
type SentenceChunker struct {
	splitter *regexp.Regexp
}

func NewSentenceChunker() *SentenceChunker {
	return &SentenceChunker{
		splitter: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

// Sentences returns the trimmed sentences of text. Trailing text without
// terminal punctuation is kept as a final sentence.
func (c *SentenceChunker) Sentences(text string) []string {
	locs := c.splitter.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(locs)+1)
	end := 0
	for _, loc := range locs {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			out = append(out, s)
		}
		end = loc[1]
	}
	if tail := strings.TrimSpace(text[end:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

// Bound returns a prefix of text limited to maxRunes runes. The prefix ends on
// the last sentence boundary that fits; if not even the first sentence fits
// the text is cut hard.
func (c *SentenceChunker) Bound(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	end, used := 0, 0
	for _, loc := range c.splitter.FindAllStringIndex(text, -1) {
		used += utf8.RuneCountInString(text[end:loc[1]])
		if used > maxRunes {
			break
		}
		end = loc[1]
	}
	if bounded := strings.TrimRightFunc(text[:end], unicode.IsSpace); bounded != "" {
		return bounded
	}
	return truncateRunes(text, maxRunes)
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
