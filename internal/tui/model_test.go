package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentlens/internal/config"
	"agentlens/internal/nav"
	"agentlens/internal/parser"
	"agentlens/internal/stats"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)

	res, err := parser.LoadFile(filepath.Join("..", "..", "testdata", "sample.jsonl"))
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Markdown = false
	cfg.Highlight = false
	return NewModel(res.Events, stats.Aggregate(res.Events), cfg)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, cmd := m.Update(msg)
		require.Nil(t, cmd, "unexpected command for %v", msg)
		m = updated.(Model)
	}
	return m
}

func TestUpdateQuitCommand(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyCtrlC}} {
		_, cmd := newTestModel(t).Update(msg)
		require.NotNil(t, cmd, "expected quit command for %v", msg)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestCountPrefixMovesSelection(t *testing.T) {
	m := press(t, newTestModel(t), runeKey('3'))
	assert.Equal(t, "3", m.State().CountPrefix)

	m = press(t, m, runeKey('j'))
	assert.Equal(t, 3, m.State().SelectedIndex)
	assert.Empty(t, m.State().CountPrefix)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, m.State().SelectedIndex)
}

func TestUnboundKeyCancelsCount(t *testing.T) {
	m := press(t, newTestModel(t), runeKey('5'), runeKey('x'))
	assert.Empty(t, m.State().CountPrefix)
	assert.Zero(t, m.State().SelectedIndex)

	m = press(t, m, runeKey('4'), tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.State().CountPrefix)
}

func TestWindowHeightDrivesTimelineRows(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, config.DefaultViewportHeight, m.timelineRows(), "configured height before sizing")

	m = press(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})
	assert.Equal(t, 8, m.timelineRows())

	m = press(t, m, runeKey('G'))
	assert.Equal(t, 10, m.State().SelectedIndex)
	assert.Equal(t, 3, m.State().ScrollOffset)
}

func TestFilterLimitsVisibleRows(t *testing.T) {
	m := press(t, newTestModel(t), runeKey('j'), runeKey('f'), runeKey('f'))
	assert.Equal(t, nav.FilterToolCall, m.State().Filter)
	assert.Zero(t, m.State().SelectedIndex)

	assert.Equal(t, []int{3, 5, 8}, m.visibleRows(10))
	assert.Equal(t, []int{3, 5}, m.visibleRows(2))
}

func TestDetailScrollClampedToContent(t *testing.T) {
	m := press(t, newTestModel(t), tea.WindowSizeMsg{Width: 100, Height: 20}, runeKey('d'))

	for i := 0; i < 5; i++ {
		m = press(t, m, runeKey('l'))
	}
	assert.Zero(t, m.State().DetailsScrollOffset, "short details should not scroll")

	m = press(t, m, runeKey('2'), runeKey('j'))
	for i := 0; i < 40; i++ {
		m = press(t, m, runeKey('l'))
	}
	limit := len(m.detailLines(m.detailTextWidth())) - m.detailRows()
	require.Positive(t, limit, "llm details overflow the pane")
	assert.Equal(t, limit, m.State().DetailsScrollOffset)

	m = press(t, m, runeKey('h'))
	assert.Equal(t, limit-1, m.State().DetailsScrollOffset)
}

func TestMarkdownStyle(t *testing.T) {
	dark := func() bool { return true }
	light := func() bool { return false }

	assert.Equal(t, "notty", markdownStyle(termenv.Ascii, dark))
	assert.Equal(t, "dark", markdownStyle(termenv.ANSI256, dark))
	assert.Equal(t, "light", markdownStyle(termenv.TrueColor, light))
}

func TestNewModelWithoutEvents(t *testing.T) {
	m := NewModel(nil, stats.Aggregate(nil), config.Default())
	m = press(t, m, runeKey('j'), runeKey('G'), runeKey('d'), runeKey('l'))
	assert.Zero(t, m.State().SelectedIndex)
	assert.Contains(t, m.View(), "Session: unknown")
}
