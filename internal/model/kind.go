// Package model provides the decoded log event and its typed views.
package model

// Kind is the event_type tag of a log line. Tags outside the known set are
// kept verbatim and rendered generically.
type Kind string

const (
	KindToolCall         Kind = "tool_call"
	KindToolResult       Kind = "tool_result"
	KindLLMResponse      Kind = "llm_response"
	KindExecutionSummary Kind = "execution_summary"
	KindAgentAction      Kind = "agent_action"

	KindSessionStart      Kind = "session_start"
	KindSessionEnd        Kind = "session_end"
	KindSubagentLifecycle Kind = "subagent_lifecycle"
	KindCycle             Kind = "cycle"
	KindError             Kind = "error"
	KindTextBlock         Kind = "text_block"
	KindContextSnapshot   Kind = "context_snapshot"
	KindDebug             Kind = "debug"

	// KindUnknown is assigned when a line carries no event_type.
	KindUnknown Kind = "unknown"
)

// KnownKinds lists every tag the viewer has dedicated handling for, in the
// order they are offered to users.
var KnownKinds = []Kind{
	KindSessionStart,
	KindAgentAction,
	KindLLMResponse,
	KindToolCall,
	KindToolResult,
	KindSubagentLifecycle,
	KindExecutionSummary,
	KindCycle,
	KindTextBlock,
	KindContextSnapshot,
	KindError,
	KindDebug,
	KindSessionEnd,
}

// Known reports whether k is one of the recognized tags. Everything else,
// including KindUnknown, takes the generic rendering path.
func (k Kind) Known() bool {
	switch k {
	case KindToolCall, KindToolResult, KindLLMResponse, KindExecutionSummary, KindAgentAction,
		KindSessionStart, KindSessionEnd, KindSubagentLifecycle, KindCycle, KindError,
		KindTextBlock, KindContextSnapshot, KindDebug:
		return true
	default:
		return false
	}
}

// ParseKind maps a user-supplied token to a recognized kind.
func ParseKind(token string) (Kind, bool) {
	k := Kind(token)
	if !k.Known() {
		return "", false
	}
	return k, true
}
