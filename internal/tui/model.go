package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"genretopics/internal/domain"
)

// QueryPort is the TUI-facing subset of a pipeline result.
type QueryPort interface {
	Query(text string, topK int) (domain.Genre, []domain.TopicMatch, error)
}

// Overview is the static part of what the browser shows.
type Overview struct {
	Summary  string
	Topics   []domain.TopicSummary
	Profiles []domain.GenreTopicProfile
}

type view int

const (
	viewTopics view = iota
	viewGenres
	viewQuery
)

var viewNames = []string{"topics", "genres", "query"}

// Model is the Bubble Tea model for browsing topics and genres.
type Model struct {
	port      QueryPort
	data      Overview
	input     textinput.Model
	viewport  viewport.Model
	view      view
	matches   []domain.TopicMatch
	genre     domain.Genre
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(port QueryPort, data Overview) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a plot and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{port: port, data: data, input: ti, viewport: vp, status: "Tab switches views, ↑/↓ moves, Enter queries."}
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
		reserved := 2 + 1 + qh + 1 // header+summary, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			m.view = (m.view + 1) % view(len(viewNames))
			m.cursor = 0
			m.viewport.SetContent(m.render())
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				g, res, err := m.port.Query(q, len(m.data.Topics))
				if err != nil {
					m.status = "Error: " + err.Error()
					m.matches = nil
				} else {
					m.status = fmt.Sprintf("Query %q classified as %s", q, g)
					m.genre = g
					m.matches = res
					m.lastQuery = q
				}
				m.view = viewQuery
				m.cursor = 0
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "down":
			if n := m.items(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "up":
			if n := m.items(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.render())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the layout and the current view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Genre Topics · " + viewNames[m.view])
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.data.Summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) items() int {
	switch m.view {
	case viewTopics:
		return len(m.data.Topics)
	case viewQuery:
		return len(m.matches)
	}
	return 0
}

func (m Model) render() string {
	switch m.view {
	case viewTopics:
		if len(m.data.Topics) == 0 {
			return "No topics."
		}
		return renderTopic(m.data.Topics[m.cursor], len(m.data.Topics), nil)
	case viewGenres:
		return renderGenres(m.data.Profiles)
	default:
		if len(m.matches) == 0 {
			return "No results yet."
		}
		r := m.matches[m.cursor]
		title := fmt.Sprintf("Match %d/%d  score=%.3f  genre=%s\n", m.cursor+1, len(m.matches), r.Score, m.genre)
		if r.Topic < len(m.data.Topics) {
			return title + renderTopic(m.data.Topics[r.Topic], len(m.data.Topics), toTokenSet(m.lastQuery))
		}
		return title + fmt.Sprintf("Topic %d", r.Topic)
	}
}

func renderTopic(ts domain.TopicSummary, total int, highlight map[string]struct{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic %d of %d\n\n", ts.Topic, total)
	for i, tw := range ts.Terms {
		term := tw.Term
		if _, ok := highlight[term]; ok {
			term = highlightStyle.Render(term)
		}
		fmt.Fprintf(&b, "%2d. %-20s %.4f\n", i+1, term, tw.Weight)
	}
	return b.String()
}

func renderGenres(profiles []domain.GenreTopicProfile) string {
	if len(profiles) == 0 {
		return "No genres."
	}
	var b strings.Builder
	for _, p := range profiles {
		fmt.Fprintf(&b, "%-12s topic %d  (%.3f)\n", p.Genre, p.DominantTopic, p.Weight)
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func toTokenSet(s string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
