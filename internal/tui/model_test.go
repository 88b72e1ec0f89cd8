package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genretopics/internal/domain"
)

type fakePort struct {
	err     error
	lastTop int
}

func (f *fakePort) Query(text string, topK int) (domain.Genre, []domain.TopicMatch, error) {
	f.lastTop = topK
	if f.err != nil {
		return "", nil, f.err
	}
	return "Sci-Fi", []domain.TopicMatch{{Topic: 1, Score: 0.97}, {Topic: 0, Score: 0.1}}, nil
}

func overview() Overview {
	return Overview{
		Summary: "6 documents, 2 topics",
		Topics: []domain.TopicSummary{
			{Topic: 0, Terms: []domain.TermWeight{{Term: "battle", Weight: 0.9}}},
			{Topic: 1, Terms: []domain.TermWeight{{Term: "robot", Weight: 0.8}}},
		},
		Profiles: []domain.GenreTopicProfile{{Genre: "War", DominantTopic: 0, Weight: 0.9}},
	}
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestBrowseViews(t *testing.T) {
	m := New(&fakePort{}, overview())
	assert.Equal(t, "Loading...", m.View())

	m = step(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	assert.Contains(t, m.View(), "Topic 0 of 2")
	assert.Contains(t, m.View(), "battle")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Contains(t, m.View(), "robot")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, viewGenres, m.view)
	assert.Contains(t, m.View(), "War")
}

func TestQuery(t *testing.T) {
	port := &fakePort{}
	m := step(t, New(port, overview()), tea.WindowSizeMsg{Width: 80, Height: 30})
	m.input.SetValue("a robot uprising")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, viewQuery, m.view)
	assert.Equal(t, 2, port.lastTop)
	assert.Contains(t, m.status, "Sci-Fi")
	assert.Contains(t, m.View(), "Match 1/2")
	assert.Contains(t, m.View(), "robot")
}

func TestQueryError(t *testing.T) {
	m := step(t, New(&fakePort{err: errors.New("boom")}, overview()), tea.WindowSizeMsg{Width: 80, Height: 30})
	m.input.SetValue("x")
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Error: boom", m.status)
	assert.Contains(t, m.View(), "No results yet.")
}

func TestQuitKeys(t *testing.T) {
	m := New(&fakePort{}, overview())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
