package format

import (
	"fmt"
	"sort"
	"strings"

	"agentlens/internal/model"
)

const (
	maxReasoningLines = 10
	maxContentLines   = 10
	maxResultLines    = 15
	maxTextLines      = 20
	maxDataLines      = 20

	indent = "  "
)

// DetailOptions controls optional rendering in DetailLines.
type DetailOptions struct {
	// Markdown renders LLM content through glamour.
	Markdown bool
	// MarkdownStyle is the glamour standard style name; empty means "dark".
	MarkdownStyle string
	// Highlight colors the generic JSON payload dump.
	Highlight bool
	// Width wraps free text when positive.
	Width int
}

// DetailLines renders the full decoded view of ev as display lines. Section
// headings are unindented and end with a colon; their bodies are indented by
// two spaces.
func DetailLines(ev model.Event, opts DetailOptions) []string {
	d := detailWriter{opts: opts}

	d.line("Event: " + string(ev.Kind))
	d.line("Time: " + ev.Timestamp)
	if agent, ok := ev.Agent(); ok {
		if ev.AgentType != nil {
			agent = fmt.Sprintf("%s (%s)", agent, *ev.AgentType)
		}
		d.line("Agent: " + agent)
	}
	if ev.Level != model.DefaultLevel {
		d.line("Level: " + ev.Level)
	}
	d.blank()

	switch v := ev.View().(type) {
	case model.LLMResponseView:
		d.llmResponse(v)
	case model.ToolCallView:
		d.toolCall(v)
	case model.ToolResultView:
		d.toolResult(v)
	case model.ExecutionSummaryView:
		d.section("Summary:")
		d.item(fmt.Sprintf("Iterations: %d", v.Iterations))
		d.item(fmt.Sprintf("Tokens: %d", v.Tokens))
		d.item("Success: " + yesNo(v.Success))
		d.item("Termination: " + v.TerminationReason)
	case model.AgentActionView:
		d.action("Action:", v)
	case model.SubagentLifecycleView:
		d.action("Subagent:", v.AgentActionView)
	case model.ErrorView:
		d.section("Error:")
		d.text(v.Error, 0)
		if v.Context != nil {
			d.blank()
			d.section("Context:")
			d.text(*v.Context, 0)
		}
	case model.CycleView:
		d.section("Cycle:")
		d.item(fmt.Sprintf("%d", v.CycleNumber))
		if v.Action != nil {
			d.item("Action: " + *v.Action)
		}
	case model.TextBlockView:
		d.textBlock(v)
	case model.ContextSnapshotView:
		d.section("Context:")
		d.optUint("Turn", v.TurnNumber)
		d.optUint("Messages", v.MessageCount)
		d.optUint("Tokens", v.TotalTokens)
	case model.SessionEndView:
		d.section("Session End:")
		if v.Reason != nil {
			d.item("Reason: " + *v.Reason)
		}
		if v.EndedAt != nil {
			d.item("Ended: " + *v.EndedAt)
		}
	default:
		d.data(ev.Payload)
	}

	return d.trimmed()
}

type detailWriter struct {
	opts  DetailOptions
	lines []string
}

func (d *detailWriter) line(s string)    { d.lines = append(d.lines, s) }
func (d *detailWriter) blank()           { d.lines = append(d.lines, "") }
func (d *detailWriter) section(s string) { d.line(s) }
func (d *detailWriter) item(s string)    { d.line(indent + s) }

func (d *detailWriter) optUint(label string, v *uint64) {
	if v != nil {
		d.item(fmt.Sprintf("%s: %d", label, *v))
	}
}

// text writes body indented and wrapped, keeping at most limit source lines
// when limit is positive.
func (d *detailWriter) text(body string, limit int) {
	lines := strings.Split(body, "\n")
	hidden := 0
	if limit > 0 && len(lines) > limit {
		hidden = len(lines) - limit
		lines = lines[:limit]
	}
	width := d.opts.Width - len(indent)
	for _, line := range lines {
		for _, wrapped := range strings.Split(WrapBody(line, width), "\n") {
			d.item(wrapped)
		}
	}
	d.more(hidden)
}

func (d *detailWriter) more(hidden int) {
	if hidden > 0 {
		d.item(fmt.Sprintf("… %d more lines", hidden))
	}
}

func (d *detailWriter) llmResponse(v model.LLMResponseView) {
	d.section("Model:")
	d.item(v.Model)

	if v.Tokens != nil {
		d.blank()
		d.section("Tokens:")
		d.optUint("Total", v.Tokens.Total)
		d.optUint("Prompt", v.Tokens.Prompt)
		d.optUint("Completion", v.Tokens.Completion)
	}

	if v.Reasoning != nil {
		d.blank()
		d.section("Reasoning:")
		d.text(*v.Reasoning, maxReasoningLines)
	}

	if v.Content != nil {
		d.blank()
		d.section("Content:")
		if d.opts.Markdown {
			d.markdown(*v.Content, maxContentLines)
		} else {
			d.text(*v.Content, maxContentLines)
		}
	}
}

func (d *detailWriter) markdown(body string, limit int) {
	lines := strings.Split(body, "\n")
	hidden := 0
	if len(lines) > limit {
		hidden = len(lines) - limit
		lines = lines[:limit]
	}
	rendered := RenderMarkdown(strings.Join(lines, "\n"), d.opts.MarkdownStyle, d.opts.Width-len(indent))
	for _, line := range strings.Split(rendered, "\n") {
		d.item(line)
	}
	d.more(hidden)
}

func (d *detailWriter) toolCall(v model.ToolCallView) {
	d.section("Tool:")
	d.item(v.ToolName)

	if v.ResultSummary != nil {
		d.blank()
		d.section("Summary:")
		d.text(*v.ResultSummary, 0)
	}

	if len(v.Params) > 0 {
		d.blank()
		d.section("Parameters:")
		for _, key := range sortedKeys(v.Params) {
			d.item(fmt.Sprintf("%s: %s", key, v.Params[key].Compact()))
		}
	}
}

func (d *detailWriter) toolResult(v model.ToolResultView) {
	d.line("Tool: " + v.ToolName)
	if v.IsError {
		d.line("Status: ✗ Error")
	} else {
		d.line("Status: ✓ Success")
	}
	if v.ToolCallID != nil {
		d.line("Call ID: " + *v.ToolCallID)
	}

	d.blank()
	d.section("Result:")
	d.text(v.ResultContent, maxResultLines)
}

func (d *detailWriter) action(heading string, v model.AgentActionView) {
	d.section(heading)
	d.item(v.Action)
	if v.Details != nil {
		d.blank()
		d.section("Details:")
		d.text(*v.Details, maxTextLines)
	}
}

func (d *detailWriter) textBlock(v model.TextBlockView) {
	d.section(v.Title + ":")
	shown := v.Lines
	hidden := 0
	if len(shown) > maxTextLines {
		hidden = len(shown) - maxTextLines
		shown = shown[:maxTextLines]
	}
	for _, line := range shown {
		d.item(line)
	}
	d.more(hidden)
	if v.Truncated {
		if v.TotalLines != nil {
			d.item(fmt.Sprintf("(truncated at source, %d lines total)", *v.TotalLines))
		} else {
			d.item("(truncated at source)")
		}
	}
}

func (d *detailWriter) data(p model.Payload) {
	if p.IsNull() {
		return
	}
	d.section("Data:")
	pretty := p.Pretty()
	if d.opts.Highlight {
		pretty = HighlightJSON(pretty)
	}
	lines := strings.Split(pretty, "\n")
	hidden := 0
	if len(lines) > maxDataLines {
		hidden = len(lines) - maxDataLines
		lines = lines[:maxDataLines]
	}
	for _, line := range lines {
		d.item(line)
	}
	d.more(hidden)
}

// trimmed drops trailing blank lines left when a section had no body.
func (d *detailWriter) trimmed() []string {
	end := len(d.lines)
	for end > 0 && d.lines[end-1] == "" {
		end--
	}
	return d.lines[:end]
}

func sortedKeys(m map[string]model.Payload) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
