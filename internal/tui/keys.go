package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"agentlens/internal/nav"
)

type keyMap struct {
	Quit       key.Binding
	Down       key.Binding
	Up         key.Binding
	DetailUp   key.Binding
	DetailDown key.Binding
	Details    key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Filter     key.Binding
	Cancel     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("[count]j/k", "navigate")),
		Up:         key.NewBinding(key.WithKeys("k", "up")),
		DetailUp:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/l", "scroll details")),
		DetailDown: key.NewBinding(key.WithKeys("l", "right")),
		Details:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "details")),
		Top:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g/G", "top/bottom")),
		Bottom:     key.NewBinding(key.WithKeys("G", "end")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Cancel:     key.NewBinding(key.WithKeys("esc")),
	}
}

// ShortHelp lists the bindings shown in the help line. Up and Bottom share
// the hint of their counterpart.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Down, k.Details, k.Filter, k.Top, k.DetailUp}
}

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// inputFor translates a key press into a navigation input. Keys without a
// binding cancel any pending count.
func (k keyMap) inputFor(msg tea.KeyMsg) nav.Input {
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if r := msg.Runes[0]; r >= '0' && r <= '9' {
			return nav.Digit(byte(r))
		}
	}

	switch {
	case key.Matches(msg, k.Quit):
		return nav.Quit
	case key.Matches(msg, k.Down):
		return nav.MoveDown
	case key.Matches(msg, k.Up):
		return nav.MoveUp
	case key.Matches(msg, k.DetailUp):
		return nav.ScrollDetailUp
	case key.Matches(msg, k.DetailDown):
		return nav.ScrollDetailDown
	case key.Matches(msg, k.Details):
		return nav.ToggleView
	case key.Matches(msg, k.Top):
		return nav.JumpTop
	case key.Matches(msg, k.Bottom):
		return nav.JumpBottom
	case key.Matches(msg, k.Filter):
		return nav.CycleFilter
	default:
		return nav.Cancel
	}
}
