package tui

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"newsrag/internal/answer"
	"newsrag/internal/service"
)

// ChatPort is the TUI-facing subset of the news service.
type ChatPort interface {
	CreateSession() string
	Chat(ctx context.Context, query, sessionID string) (service.ChatResult, error)
	DeleteSession(ctx context.Context, sessionID string) (bool, error)
}

type exchange struct {
	query   string
	answer  string
	sources []answer.Source
	err     error
}

type answerMsg struct {
	query  string
	result service.ChatResult
	err    error
}

type clearedMsg struct {
	sessionID string
	err       error
}

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	ctx       context.Context
	service   ChatPort
	sessionID string
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	history   []exchange
	summary   string
	status    string
	pending   bool
	ready     bool
}

// New creates a chat model bound to a fresh session. summary is shown under
// the header, typically the ingestion report.
func New(ctx context.Context, svc ChatPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the news, /new for a new session, /clear to forget this one"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:       ctx,
		service:   svc,
		sessionID: svc.CreateSession(),
		input:     ti,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
		summary:   summary,
		status:    "Ready. Ask a question.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, summary, status, input, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.refresh()
		return m, nil
	case answerMsg:
		m.pending = false
		m.history = append(m.history, exchange{query: msg.query, answer: msg.result.Answer, sources: msg.result.Sources, err: msg.err})
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Answered with %d sources", len(msg.result.Sources))
		}
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil
	case clearedMsg:
		m.pending = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		if msg.sessionID == m.sessionID {
			m.history = nil
		}
		m.status = "Session cleared."
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending {
				return m, nil
			}
			m.input.SetValue("")
			return m.submit(q)
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(q string) (tea.Model, tea.Cmd) {
	switch q {
	case "/new":
		m.sessionID = m.service.CreateSession()
		m.history = nil
		m.status = "Started a new session."
		m.refresh()
		return m, nil
	case "/clear":
		m.pending = true
		m.status = "Clearing session..."
		return m, tea.Batch(m.spinner.Tick, m.clear())
	}
	m.pending = true
	m.status = "Thinking..."
	return m, tea.Batch(m.spinner.Tick, m.ask(q))
}

func (m Model) ask(q string) tea.Cmd {
	ctx, svc, id := m.ctx, m.service, m.sessionID
	return func() tea.Msg {
		res, err := svc.Chat(ctx, q, id)
		return answerMsg{query: q, result: res, err: err}
	}
}

func (m Model) clear() tea.Cmd {
	ctx, svc, id := m.ctx, m.service, m.sessionID
	return func() tea.Msg {
		_, err := svc.DeleteSession(ctx, id)
		return clearedMsg{sessionID: id, err: err}
	}
}

// View renders the header, transcript, input and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("News Assistant")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	statusText := m.status
	if m.pending {
		statusText = m.spinner.View() + " " + statusText
	}
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(statusText)
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(userStyle.Render("You: "))
		b.WriteString(ex.query)
		b.WriteString("\n")
		if ex.err != nil {
			b.WriteString(errorStyle.Render("Error: " + ex.err.Error()))
			continue
		}
		b.WriteString(ex.answer)
		if len(ex.sources) > 0 {
			b.WriteString("\n")
			b.WriteString(renderSources(ex.sources, citedSources(ex.answer)))
		}
	}
	return b.String()
}

// renderSources lists sources, highlighting the ones the answer cites.
func renderSources(sources []answer.Source, cited map[int]bool) string {
	lines := make([]string, len(sources))
	for i, s := range sources {
		line := fmt.Sprintf("  [%d] %s (%s, %s)", i+1, s.Title, s.Source, s.Relevance)
		if cited[i+1] {
			line = highlightStyle.Render(line)
		} else {
			line = sourceStyle.Render(line)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// citedSources returns the source numbers referenced as "Source N".
func citedSources(text string) map[int]bool {
	cited := map[int]bool{}
	for _, m := range citationRe.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			cited[n] = true
		}
	}
	return cited
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	citationRe         = regexp.MustCompile(`Source (\d+)`)
)
