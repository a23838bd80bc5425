// Package tui is the interactive timeline viewer.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"agentlens/internal/config"
	"agentlens/internal/format"
	"agentlens/internal/model"
	"agentlens/internal/nav"
	"agentlens/internal/stats"
)

const (
	statsPaneHeight = 8
	bottomBarHeight = 1
	// paneChrome is the border rows around each pane's content.
	paneChrome = 2
	// slack keeps the frame one row short of the window.
	slack = 1

	fallbackWidth = 80
)

// Model is the bubbletea model of the viewer. Events and summary never change
// after construction; all navigation goes through nav.Apply.
type Model struct {
	events    []model.Event
	summary   stats.Summary
	sessionID string
	cfg       config.Config

	state nav.State
	keys  keyMap
	help  help.Model

	windowWidth  int
	windowHeight int

	markdownStyle string
	cache         *detailCache
}

type detailCache struct {
	index int
	width int
	lines []string
}

// Option adjusts a Model built by NewModel.
type Option func(*Model)

// WithMarkdownStyle selects the glamour style for LLM content.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) { m.markdownStyle = style }
}

// NewModel returns a viewer over events. The summary is expected to be the
// aggregate of the same events.
func NewModel(events []model.Event, summary stats.Summary, cfg config.Config, opts ...Option) Model {
	m := Model{
		events:    events,
		summary:   summary,
		sessionID: model.SessionOf(events),
		cfg:       cfg,
		keys:      defaultKeyMap(),
		help:      help.New(),
		cache:     &detailCache{index: -1},
	}
	m.help.ShortSeparator = " "
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// State returns the current navigation state.
func (m Model) State() nav.State { return m.state }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.help.Width = msg.Width
		m.clampDetailScroll()
		return m, nil

	case tea.KeyMsg:
		next, quit := nav.Apply(m.state, m.keys.inputFor(msg), m.geometry())
		if quit {
			return m, tea.Quit
		}
		m.state = next
		m.clampDetailScroll()
		return m, nil
	}
	return m, nil
}

func (m Model) geometry() nav.Geometry {
	return nav.Geometry{Total: len(m.events), ViewportHeight: m.timelineRows()}
}

// timelineRows is the number of visible timeline rows. Before the first
// WindowSizeMsg the configured height is used.
func (m Model) timelineRows() int {
	if m.windowHeight <= 0 {
		return m.cfg.ViewportHeight
	}
	return max(m.mainPaneHeight()-paneChrome, 1)
}

func (m Model) mainPaneHeight() int {
	if m.windowHeight <= 0 {
		return m.cfg.ViewportHeight + paneChrome
	}
	return max(m.windowHeight-statsPaneHeight-bottomBarHeight-slack, paneChrome+1)
}

func (m Model) width() int {
	if m.windowWidth <= 0 {
		return fallbackWidth
	}
	return m.windowWidth
}

// splitWidths returns the timeline and details pane widths in details mode.
func (m Model) splitWidths() (int, int) {
	total := m.width()
	left := total * 60 / 100
	return left, total - left
}

func (m Model) selected() (model.Event, bool) {
	i := m.state.SelectedIndex
	if i < 0 || i >= len(m.events) {
		return model.Event{}, false
	}
	return m.events[i], true
}

// detailLines renders the selected event for a pane whose text area is
// width cells wide. The last rendering is cached since glamour is slow.
func (m Model) detailLines(width int) []string {
	ev, ok := m.selected()
	if !ok {
		return nil
	}
	if m.cache != nil && m.cache.index == m.state.SelectedIndex && m.cache.width == width {
		return m.cache.lines
	}
	lines := format.DetailLines(ev, format.DetailOptions{
		Markdown:      m.cfg.Markdown,
		MarkdownStyle: m.markdownStyle,
		Highlight:     m.cfg.Highlight && !m.cfg.NoColor,
		Width:         width,
	})
	if m.cache != nil {
		*m.cache = detailCache{index: m.state.SelectedIndex, width: width, lines: lines}
	}
	return lines
}

func (m Model) detailTextWidth() int {
	_, right := m.splitWidths()
	return max(right-paneChrome-2, 1)
}

func (m Model) detailRows() int {
	return max(m.mainPaneHeight()-paneChrome, 1)
}

// clampDetailScroll keeps the details offset within the rendered content so
// scrolling back up takes effect immediately.
func (m *Model) clampDetailScroll() {
	lines := m.detailLines(m.detailTextWidth())
	limit := max(len(lines)-m.detailRows(), 0)
	if m.state.DetailsScrollOffset > limit {
		m.state.DetailsScrollOffset = limit
	}
}

// visibleRows returns the underlying indices of the timeline rows on screen:
// the filtered events, skipping ScrollOffset of them, at most rows long.
func (m Model) visibleRows(rows int) []int {
	var out []int
	skipped := 0
	for i, ev := range m.events {
		if !m.state.Filter.Matches(ev.Kind) {
			continue
		}
		if skipped < m.state.ScrollOffset {
			skipped++
			continue
		}
		if len(out) == rows {
			break
		}
		out = append(out, i)
	}
	return out
}
