package format

import (
	"fmt"
	"strings"

	"agentlens/internal/model"
)

// Style describes how a kind is drawn in the timeline. Color is an ANSI
// 256-color index usable both as a lipgloss.Color and in escape sequences.
type Style struct {
	Icon  string
	Color string
}

var kindStyles = map[model.Kind]Style{
	model.KindLLMResponse:       {Icon: "🤖", Color: "12"},
	model.KindToolCall:          {Icon: "🔧", Color: "10"},
	model.KindToolResult:        {Icon: "📦", Color: "14"},
	model.KindAgentAction:       {Icon: "⚡", Color: "11"},
	model.KindExecutionSummary:  {Icon: "📊", Color: "13"},
	model.KindSessionStart:      {Icon: "🚀", Color: "10"},
	model.KindSessionEnd:        {Icon: "🏁", Color: "9"},
	model.KindSubagentLifecycle: {Icon: "👥", Color: "11"},
	model.KindCycle:             {Icon: "🔄", Color: "13"},
	model.KindError:             {Icon: "❌", Color: "9"},
	model.KindTextBlock:         {Icon: "📄", Color: "7"},
	model.KindContextSnapshot:   {Icon: "🧠", Color: "6"},
	model.KindDebug:             {Icon: "🐛", Color: "8"},
}

var genericStyle = Style{Icon: "•", Color: "8"}

// StyleOf returns the timeline style for kind k.
func StyleOf(k model.Kind) Style {
	if s, ok := kindStyles[k]; ok {
		return s
	}
	return genericStyle
}

// Row is one timeline entry split into its display parts.
type Row struct {
	Time  string
	Icon  string
	Label string
	// Agent is "[name]" or empty.
	Agent string
	Color string
}

// String joins the row parts with single spaces.
func (r Row) String() string {
	parts := []string{r.Time, r.Icon, r.Label}
	if r.Agent != "" {
		parts = append(parts, r.Agent)
	}
	return strings.Join(parts, " ")
}

// RowOf builds the timeline entry for ev.
func RowOf(ev model.Event) Row {
	style := StyleOf(ev.Kind)
	icon, label := RowLabel(ev)
	row := Row{
		Time:  ev.ShortTime(),
		Icon:  icon,
		Label: label,
		Color: style.Color,
	}
	if agent, ok := ev.Agent(); ok {
		row.Agent = "[" + agent + "]"
	}
	return row
}

// RowLabel returns the icon and one-line description of ev. Events whose
// payload does not fit their kind still get a label, with "unknown" standing
// in for the missing name.
func RowLabel(ev model.Event) (string, string) {
	icon := StyleOf(ev.Kind).Icon

	switch ev.Kind {
	case model.KindLLMResponse:
		name := "unknown"
		if v, ok := ev.AsLLMResponse(); ok {
			name = v.Model
		}
		return icon, "LLM: " + name
	case model.KindToolCall:
		name := "unknown"
		if v, ok := ev.AsToolCall(); ok {
			name = v.ToolName
		}
		return icon, "Tool Call: " + name
	case model.KindToolResult:
		name, status := "unknown", "?"
		if v, ok := ev.AsToolResult(); ok {
			name = v.ToolName
			status = statusMark(v.IsError)
		}
		return icon, fmt.Sprintf("Result %s: %s", status, name)
	case model.KindAgentAction:
		action := "unknown"
		if v, ok := ev.AsAgentAction(); ok {
			action = v.Action
		}
		return icon, "Action: " + action
	case model.KindExecutionSummary:
		return icon, "Execution Summary"
	case model.KindSessionStart:
		return icon, "Session Start"
	case model.KindSessionEnd:
		if v, ok := ev.AsSessionEnd(); ok && v.Reason != nil {
			return icon, "Session End: " + *v.Reason
		}
		return icon, "Session End"
	case model.KindSubagentLifecycle:
		action := "unknown"
		if v, ok := ev.AsSubagentLifecycle(); ok {
			action = v.Action
		}
		return icon, "Subagent: " + action
	case model.KindCycle:
		if v, ok := ev.AsCycle(); ok {
			return icon, fmt.Sprintf("Cycle %d", v.CycleNumber)
		}
		return icon, "Cycle"
	case model.KindError:
		if v, ok := ev.AsError(); ok {
			return icon, "Error: " + firstLine(v.Error)
		}
		return icon, "Error"
	case model.KindTextBlock:
		if v, ok := ev.AsTextBlock(); ok {
			return icon, "Text: " + v.Title
		}
		return icon, "Text"
	case model.KindContextSnapshot:
		if v, ok := ev.AsContextSnapshot(); ok && v.TotalTokens != nil {
			return icon, fmt.Sprintf("Context: %d tokens", *v.TotalTokens)
		}
		return icon, "Context Snapshot"
	case model.KindDebug:
		if msg, ok := ev.Payload.Get("message").AsString(); ok {
			return icon, "Debug: " + firstLine(msg)
		}
		return icon, "Debug"
	default:
		return icon, string(ev.Kind)
	}
}

func statusMark(isError bool) string {
	if isError {
		return "✗"
	}
	return "✓"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
