package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docrag/internal/domain"
)

// RAGPort is the TUI-facing subset of the RAG service.
type RAGPort interface {
	QueryWithHits(ctx context.Context, text string) (domain.Answer, []domain.SearchResult, error)
	Search(term string, topK int) ([]domain.SearchResult, error)
	DocumentCount() int
}

type mode int

const (
	modeAsk mode = iota
	modeSearch
)

func (md mode) String() string {
	if md == modeSearch {
		return "search"
	}
	return "ask"
}

type answerMsg struct {
	query  string
	answer domain.Answer
	hits   []domain.SearchResult
	err    error
}

type hitsMsg struct {
	query string
	hits  []domain.SearchResult
	err   error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service   RAGPort
	topK      int
	mode      mode
	input     textinput.Model
	viewport  viewport.Model
	answer    *domain.Answer
	results   []domain.SearchResult
	status    string
	cursor    int
	ready     bool
	busy      bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(service RAGPort, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter (Tab switches to search)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		topK:     topK,
		input:    ti,
		viewport: vp,
		status:   fmt.Sprintf("%d documents loaded.", service.DocumentCount()),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + mode, status, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.answer = nil
			m.results = nil
		} else {
			m.status = fmt.Sprintf("Answered %q from %d sources", msg.query, len(msg.answer.Sources))
			ans := msg.answer
			m.answer = &ans
			m.results = msg.hits
		}
		m.cursor = 0
		m.lastQuery = msg.query
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil

	case hitsMsg:
		m.busy = false
		m.answer = nil
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.results = nil
		} else {
			m.status = fmt.Sprintf("%d results for %q", len(msg.hits), msg.query)
			m.results = msg.hits
		}
		m.cursor = 0
		m.lastQuery = msg.query
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.mode == modeAsk {
				m.mode = modeSearch
			} else {
				m.mode = modeAsk
			}
			m.status = "Mode: " + m.mode.String()
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				if m.mode == modeAsk {
					m.status = "Thinking..."
					return m, m.ask(q)
				}
				m.status = "Searching..."
				return m, m.search(q)
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(q string) tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		ans, hits, err := svc.QueryWithHits(context.Background(), q)
		return answerMsg{query: q, answer: ans, hits: hits, err: err}
	}
}

func (m Model) search(q string) tea.Cmd {
	svc, topK := m.service, m.topK
	return func() tea.Msg {
		hits, err := svc.Search(q, topK)
		return hitsMsg{query: q, hits: hits, err: err}
	}
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docrag")
	modeLine := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("mode: " + m.mode.String() + "  (tab to switch, up/down to browse)")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + modeLine + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	var b strings.Builder
	if m.answer != nil {
		b.WriteString(answerStyle.Render(m.answer.Text))
		b.WriteString("\n")
		if len(m.answer.Sources) > 0 {
			b.WriteString(sourceStyle.Render("Sources: " + strings.Join(m.answer.Sources, ", ")))
			b.WriteString("\n")
		}
		b.WriteString(sourceStyle.Render(fmt.Sprintf("Confidence: %.2f", m.answer.Confidence)))
		b.WriteString("\n\n")
	}
	if len(m.results) == 0 {
		if m.answer == nil {
			b.WriteString("No results yet.")
		}
		return b.String()
	}
	r := m.results[m.cursor]
	fmt.Fprintf(&b, "Result %d/%d  %s  score=%.3f\n\n", m.cursor+1, len(m.results), r.Source, r.Score)
	b.WriteString(highlightTerms(r.Text, m.lastQuery))
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
)

// highlightTerms renders every word of text whose lower-cased form contains
// one of the query terms.
func highlightTerms(text, query string) string {
	terms := toTokenSet(query)
	if len(terms) == 0 {
		return text
	}
	return unicodeWordRe.ReplaceAllStringFunc(text, func(word string) string {
		lw := strings.ToLower(word)
		for t := range terms {
			if strings.Contains(lw, t) {
				return highlightStyle.Render(word)
			}
		}
		return word
	})
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
