package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agentlens/internal/model"
)

func TestRowLabel(t *testing.T) {
	cases := []struct {
		line  string
		icon  string
		label string
	}{
		{`{"timestamp":"t","event_type":"llm_response","data":{"model":"gpt-4o"}}`, "🤖", "LLM: gpt-4o"},
		{`{"timestamp":"t","event_type":"llm_response","data":{}}`, "🤖", "LLM: unknown"},
		{`{"timestamp":"t","event_type":"tool_call","data":{"tool_name":"web_search"}}`, "🔧", "Tool Call: web_search"},
		{`{"timestamp":"t","event_type":"tool_result","data":{"tool_name":"fetch","result_content":"ok"}}`, "📦", "Result ✓: fetch"},
		{`{"timestamp":"t","event_type":"tool_result","data":{"tool_name":"fetch","is_error":true,"result_content":""}}`, "📦", "Result ✗: fetch"},
		{`{"timestamp":"t","event_type":"tool_result","data":"oops"}`, "📦", "Result ?: unknown"},
		{`{"timestamp":"t","event_type":"session_end","data":{"reason":"complete"}}`, "🏁", "Session End: complete"},
		{`{"timestamp":"t","event_type":"session_end"}`, "🏁", "Session End"},
		{`{"timestamp":"t","event_type":"cycle","data":{"cycle_number":3}}`, "🔄", "Cycle 3"},
		{`{"timestamp":"t","event_type":"error","data":{"error":"boom\ntrace"}}`, "❌", "Error: boom"},
		{`{"timestamp":"t","event_type":"context_snapshot","data":{"total_tokens":900}}`, "🧠", "Context: 900 tokens"},
		{`{"timestamp":"t","event_type":"debug","data":{"message":"tick"}}`, "🐛", "Debug: tick"},
		{`{"timestamp":"t","event_type":"heartbeat"}`, "•", "heartbeat"},
		{`{"timestamp":"t"}`, "•", "unknown"},
	}

	for _, tc := range cases {
		icon, label := RowLabel(decodeEvent(t, tc.line))
		assert.Equal(t, tc.icon, icon, tc.line)
		assert.Equal(t, tc.label, label, tc.line)
	}
}

func TestRowOf(t *testing.T) {
	ev := decodeEvent(t, `{"timestamp":"2025-03-14T09:00:05.123Z","event_type":"tool_call","agent_name":"researcher","data":{"tool_name":"web_search"}}`)

	row := RowOf(ev)
	assert.Equal(t, "09:00:05 🔧 Tool Call: web_search [researcher]", row.String())
	assert.Equal(t, StyleOf(model.KindToolCall).Color, row.Color)
}

func TestRowOfWithoutAgent(t *testing.T) {
	row := RowOf(decodeEvent(t, `{"timestamp":"09:00:00","event_type":"session_start"}`))
	assert.Equal(t, "09:00:00 🚀 Session Start", row.String())
}
