package answer

import (
	"fmt"
	"strings"
	"time"

	"newsrag/internal/domain"
)

// DefaultHistoryWindow is how many recent turns are replayed into the prompt.
const DefaultHistoryWindow = 6

// PubDateLayout renders publish dates for people: RFC 1123 in GMT.
const PubDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

const preamble = `You are a news assistant. Answer the user's question using only the news articles provided below.

Formatting rules:
- Start with a short heading that names the topic.
- Use bullet points for distinct facts or developments.
- Keep paragraphs short, two or three sentences at most.
- Cite the articles you rely on explicitly as "Source N", matching the numbers below.
- If the sources do not contain enough information to answer, say so plainly instead of guessing or inventing details.`

// FormatRelevance renders a similarity score as a percentage with one decimal.
func FormatRelevance(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}

// FormatPubDate renders t with PubDateLayout; the zero time renders empty.
func FormatPubDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(PubDateLayout)
}

// RenderSources renders results as numbered source blocks separated by blank lines.
func RenderSources(results []domain.SearchResult) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		a := r.Article
		var b strings.Builder
		fmt.Fprintf(&b, "Source %d [%s] (relevance: %s)\n", i+1, a.Source, FormatRelevance(r.Score))
		fmt.Fprintf(&b, "Title: %s\n", a.Title)
		fmt.Fprintf(&b, "Description: %s\n", a.Description)
		fmt.Fprintf(&b, "Link: %s\n", a.Link)
		fmt.Fprintf(&b, "Published: %s", FormatPubDate(a.PubDate))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// RenderHistory renders the most recent window turns in chronological order.
// An empty history renders as the empty string.
func RenderHistory(history []domain.Turn, window int) string {
	if len(history) == 0 {
		return ""
	}
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}
	lines := make([]string, 0, len(history))
	for _, t := range history {
		label := "User"
		if t.Role == domain.RoleAssistant {
			label = "Assistant"
		}
		lines = append(lines, label+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

// ComposePrompt joins the preamble, the source blocks, the optional history
// block and the user's question into one prompt.
func ComposePrompt(query, sources, history string) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\nNews articles:\n\n")
	if sources == "" {
		b.WriteString("(no articles matched the question)")
	} else {
		b.WriteString(sources)
	}
	if history != "" {
		b.WriteString("\n\nRecent conversation:\n")
		b.WriteString(history)
	}
	b.WriteString("\n\nUser question: ")
	b.WriteString(query)
	return b.String()
}
