// Package format renders events, statistics and session listings as text.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"agentlens/internal/store"
)

// WriteSessions writes session summaries to w in the requested format.
func WriteSessions(w io.Writer, items []store.Session, includeHeader bool, format string) error {
	format = strings.ToLower(format)
	switch format {
	case "", "table":
		return writeSessionsTable(w, items, includeHeader)
	case "plain":
		return writeSessionsPlain(w, items, includeHeader)
	case "json":
		return writeSessionsJSON(w, items)
	case "jsonl":
		return writeSessionsJSONL(w, items)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeSessionsPlain(w io.Writer, items []store.Session, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "started_at\tsession_id\tduration\tevents\ttokens\tllm_calls\ttool_calls\terrors\tpath"); err != nil {
			return err
		}
	}

	for _, item := range items {
		line := fmt.Sprintf(
			"%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s",
			item.StartedAt,
			item.ID,
			formatDuration(item.DurationSeconds),
			item.EventCount,
			item.TotalTokens,
			item.LLMCalls,
			item.ToolCalls,
			item.Errors,
			item.Path,
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeSessionsJSON(w io.Writer, items []store.Session) error {
	if items == nil {
		items = []store.Session{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func writeSessionsJSONL(w io.Writer, items []store.Session) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

func writeSessionsTable(w io.Writer, items []store.Session, includeHeader bool) error {
	tw := newTable(w)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 7, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 8, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"Started", "Session ID", "Duration", "Events", "Tokens", "LLM Calls", "Tool Calls", "Errors"})
	}

	for _, item := range items {
		tw.AppendRow(table.Row{
			item.StartedAt,
			item.ID,
			formatDuration(item.DurationSeconds),
			item.EventCount,
			item.TotalTokens,
			item.LLMCalls,
			item.ToolCalls,
			item.Errors,
		})
	}

	if len(items) == 0 {
		tw.AppendRow(table.Row{"-", "(no sessions)", "00:00:00", 0, 0, 0, 0, 0})
	}

	_ = tw.Render()
	return nil
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = true
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true
	return tw
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "00:00:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
