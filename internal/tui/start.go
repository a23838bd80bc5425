package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"agentlens/internal/config"
	"agentlens/internal/model"
	"agentlens/internal/stats"
)

// Start runs the viewer on the alternate screen until the user quits.
func Start(events []model.Event, summary stats.Summary, cfg config.Config) error {
	profile := termenv.EnvColorProfile()
	if cfg.NoColor {
		profile = termenv.Ascii
	}
	lipgloss.SetColorProfile(profile)

	style := markdownStyle(profile, termenv.HasDarkBackground)
	m := NewModel(events, summary, cfg, WithMarkdownStyle(style))
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// markdownStyle picks the glamour style up front; asking the terminal for
// its background once the program owns stdin would swallow the reply.
func markdownStyle(profile termenv.Profile, dark func() bool) string {
	if profile == termenv.Ascii {
		return "notty"
	}
	if dark() {
		return "dark"
	}
	return "light"
}
