package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"agentlens/internal/format"
	"agentlens/internal/nav"
)

var (
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	headingStyle  = labelStyle.Bold(true)
	sessionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	tokensStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	agentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("8")).Bold(true)
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

func (m Model) View() string {
	width := m.width()

	var b strings.Builder
	b.WriteString(m.renderStats(width))
	b.WriteString("\n")
	b.WriteString(m.renderMain(width))
	b.WriteString("\n")
	b.WriteString(m.renderBottomBar(width))
	return b.String()
}

func (m Model) renderStats(width int) string {
	left := width / 2
	right := width - left
	inner := statsPaneHeight - paneChrome

	return lipgloss.JoinHorizontal(lipgloss.Top,
		renderPane(m.sessionLines(left-4, inner), left-2, inner, "Session Stats", false),
		renderPane(m.toolLines(right-4, inner), right-2, inner, "Top Tools", false),
	)
}

func (m Model) sessionLines(width, rows int) string {
	tokens := m.summary.Tokens
	lines := []string{
		labelStyle.Render("Session: ") + sessionStyle.Render(m.sessionID),
		labelStyle.Render("Total Tokens: ") + tokensStyle.Render(fmt.Sprint(tokens.TotalTokens)),
		labelStyle.Render("LLM Calls: ") + fmt.Sprint(tokens.TotalCalls),
		labelStyle.Render("Total Events: ") + fmt.Sprint(len(m.events)),
	}
	if agents := tokens.Agents(); len(agents) > 0 {
		parts := make([]string, 0, len(agents))
		for _, agent := range agents {
			parts = append(parts, fmt.Sprintf("%s=%d", agent, tokens.ByAgent[agent]))
		}
		lines = append(lines, labelStyle.Render("By Agent: ")+strings.Join(parts, " "))
	}
	return fitLines(lines, width, rows)
}

func (m Model) toolLines(width, rows int) string {
	lines := []string{headingStyle.Render("Tool Usage:")}
	for _, tool := range m.summary.Tools.TopTools(m.cfg.TopTools) {
		lines = append(lines, fmt.Sprintf("  %s: %d (%s/%s)",
			tool.Name,
			tool.Calls,
			successStyle.Render(fmt.Sprintf("✓%d", tool.Success)),
			errorStyle.Render(fmt.Sprintf("✗%d", tool.Errors)),
		))
	}
	return fitLines(lines, width, rows)
}

func (m Model) renderMain(width int) string {
	height := m.mainPaneHeight() - paneChrome
	if m.state.ViewMode != nav.ViewDetails {
		return renderPane(m.timelineLines(width-4), width-2, height, m.timelineTitle(), true)
	}

	left, right := m.splitWidths()
	return lipgloss.JoinHorizontal(lipgloss.Top,
		renderPane(m.timelineLines(left-4), left-2, height, m.timelineTitle(), true),
		renderPane(m.detailView(right-4, height), right-2, height, "Details", false),
	)
}

func (m Model) timelineTitle() string {
	title := fmt.Sprintf("Timeline (%d/%d)", m.state.SelectedIndex+1, len(m.events))
	if kind, ok := m.state.Filter.Kind(); ok {
		title += fmt.Sprintf(" [Filter: %s]", kind)
	}
	return title
}

func (m Model) timelineLines(width int) string {
	indices := m.visibleRows(m.timelineRows())
	lines := make([]string, 0, len(indices))
	for _, i := range indices {
		lines = append(lines, renderRow(format.RowOf(m.events[i]), width, i == m.state.SelectedIndex))
	}
	return strings.Join(lines, "\n")
}

func renderRow(row format.Row, width int, selected bool) string {
	plain := row.String()
	if selected {
		return selectedStyle.Render(format.TruncateToWidth(plain, width))
	}
	if format.VisibleWidth(plain) > width {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(row.Color)).Render(format.TruncateToWidth(plain, width))
	}

	color := lipgloss.NewStyle().Foreground(lipgloss.Color(row.Color))
	out := timeStyle.Render(row.Time) + " " + color.Render(row.Icon) + " " + color.Render(row.Label)
	if row.Agent != "" {
		out += " " + agentStyle.Render(row.Agent)
	}
	return out
}

// detailView renders the selected event in a viewport scrolled to the
// clamped details offset.
func (m Model) detailView(width, height int) string {
	source := m.detailLines(width)
	lines := make([]string, len(source))
	for i, line := range source {
		lines[i] = clipLine(line, width)
	}
	content := strings.Join(lines, "\n")

	view := viewport.New(width, height)
	view.SetContent(content)
	offset := min(max(m.state.DetailsScrollOffset, 0), max(len(lines)-height, 0))
	view.YOffset = offset
	return view.View()
}

func (m Model) renderBottomBar(width int) string {
	left := m.help.ShortHelpView(m.keys.ShortHelp())
	left += " | Mode: " + m.state.ViewMode.String()
	if m.state.CountPrefix != "" {
		left += " | " + countStyle.Render("Count: "+m.state.CountPrefix)
	}
	right := "filter:" + m.state.Filter.String()

	padding := 1
	contentWidth := max(width-padding*2, 0)
	bar := layoutBar(left, right, contentWidth)

	return lipgloss.NewStyle().Reverse(true).Padding(0, padding).Render(bar)
}

func layoutBar(left string, right string, width int) string {
	if width <= 0 {
		return left + " " + right
	}
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	gap := width - leftWidth - rightWidth
	if gap < 1 {
		availableLeft := width - rightWidth - 1
		if availableLeft < 0 {
			return format.TruncateToWidth(right, width)
		}
		left = format.TruncateToWidth(left, availableLeft)
		leftWidth = lipgloss.Width(left)
		gap = max(width-leftWidth-rightWidth, 1)
	}
	return format.TruncateToWidth(left+strings.Repeat(" ", gap)+right, width)
}

// fitLines clips lines to width cells and keeps at most rows of them.
func fitLines(lines []string, width, rows int) string {
	if len(lines) > rows {
		lines = lines[:rows]
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = clipLine(line, width)
	}
	return strings.Join(out, "\n")
}

// clipLine truncates line to width cells, closing any color left open.
func clipLine(line string, width int) string {
	if format.VisibleWidth(line) <= width {
		return line
	}
	return format.TruncateToWidth(line, width) + "\x1b[0m"
}

func renderPane(content string, width int, height int, title string, active bool) string {
	borderColor := lipgloss.Color("240")
	titleColor := lipgloss.Color("240")
	if active {
		borderColor = lipgloss.Color("69")
		titleColor = lipgloss.Color("69")
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(max(width, 0)).
		Height(max(height, 0)).
		MaxHeight(max(height, 0) + paneChrome).
		Padding(0, 1)

	rendered := style.Render(content)
	if title == "" {
		return rendered
	}

	// The top border is rebuilt rather than edited in place because it
	// already carries escape codes.
	lines := strings.Split(rendered, "\n")
	if len(lines) < 2 {
		return rendered
	}
	targetWidth := lipgloss.Width(lines[1])
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(titleColor)

	title = format.TruncateToWidth(title, max(targetWidth-7, 0))
	nMiddle := max(targetWidth-7-lipgloss.Width(title), 0)
	topLine := borderStyle.Render("╭ ") +
		titleStyle.Render(" "+title+" ") +
		borderStyle.Render(strings.Repeat("─", nMiddle)+"╮")
	if w := lipgloss.Width(topLine); w < targetWidth {
		nMiddle += targetWidth - w
		topLine = borderStyle.Render("╭ ") +
			titleStyle.Render(" "+title+" ") +
			borderStyle.Render(strings.Repeat("─", nMiddle)+"╮")
	}
	lines[0] = topLine
	return strings.Join(lines, "\n")
}
