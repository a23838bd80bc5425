package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"agentlens/internal/stats"
)

// StatsReport is everything printed by WriteStats.
type StatsReport struct {
	SessionID   string            `json:"session_id"`
	TotalEvents int               `json:"total_events"`
	TotalTokens uint64            `json:"total_tokens"`
	LLMCalls    uint32            `json:"llm_calls"`
	ByAgent     map[string]uint64 `json:"tokens_by_agent"`
	TopTools    []stats.ToolUsage `json:"top_tools"`
}

// NewStatsReport collects the figures shown for a loaded log. top limits the
// tool listing; a non-positive value lists every tool.
func NewStatsReport(sum stats.Summary, eventCount int, sessionID string, top int) StatsReport {
	byAgent := sum.Tokens.ByAgent
	if byAgent == nil {
		byAgent = map[string]uint64{}
	}
	tools := sum.Tools.TopTools(top)
	if tools == nil {
		tools = []stats.ToolUsage{}
	}
	return StatsReport{
		SessionID:   sessionID,
		TotalEvents: eventCount,
		TotalTokens: sum.Tokens.TotalTokens,
		LLMCalls:    sum.Tokens.TotalCalls,
		ByAgent:     byAgent,
		TopTools:    tools,
	}
}

// WriteStats writes a statistics report to w in the requested format.
func WriteStats(w io.Writer, report StatsReport, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeStatsTable(w, report)
	case "plain":
		return writeStatsPlain(w, report)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeStatsPlain(w io.Writer, r StatsReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "session\t%s\n", r.SessionID)
	fmt.Fprintf(&b, "total_tokens\t%d\n", r.TotalTokens)
	fmt.Fprintf(&b, "llm_calls\t%d\n", r.LLMCalls)
	fmt.Fprintf(&b, "total_events\t%d\n", r.TotalEvents)
	for _, agent := range agentsOf(r) {
		fmt.Fprintf(&b, "agent_tokens\t%s\t%d\n", agent, r.ByAgent[agent])
	}
	for _, tool := range r.TopTools {
		fmt.Fprintf(&b, "tool\t%s\t%d\t%d\t%d\n", tool.Name, tool.Calls, tool.Success, tool.Errors)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeStatsTable(w io.Writer, r StatsReport) error {
	overview := newTable(w)
	overview.SetTitle("Session Stats")
	overview.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})
	overview.AppendRow(table.Row{"Session", r.SessionID})
	overview.AppendRow(table.Row{"Total Tokens", r.TotalTokens})
	overview.AppendRow(table.Row{"LLM Calls", r.LLMCalls})
	overview.AppendRow(table.Row{"Total Events", r.TotalEvents})
	_ = overview.Render()

	if agents := agentsOf(r); len(agents) > 0 {
		tw := newTable(w)
		tw.SetTitle("Tokens by Agent")
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
			{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		})
		tw.AppendHeader(table.Row{"Agent", "Tokens"})
		for _, agent := range agents {
			tw.AppendRow(table.Row{agent, r.ByAgent[agent]})
		}
		_ = tw.Render()
	}

	tools := newTable(w)
	tools.SetTitle("Top Tools")
	tools.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})
	tools.AppendHeader(table.Row{"Tool", "Calls", "✓", "✗"})
	for _, tool := range r.TopTools {
		tools.AppendRow(table.Row{tool.Name, tool.Calls, tool.Success, tool.Errors})
	}
	if len(r.TopTools) == 0 {
		tools.AppendRow(table.Row{"(no tool calls)", 0, 0, 0})
	}
	_ = tools.Render()
	return nil
}

func agentsOf(r StatsReport) []string {
	return stats.TokenStats{ByAgent: r.ByAgent}.Agents()
}
