package model

// View is the typed projection of an event payload. Exactly one concrete view
// type exists per kind that has one.
type View interface {
	view()
}

// ToolCallView describes a tool invocation.
type ToolCallView struct {
	ToolName      string
	Params        map[string]Payload
	ResultSummary *string
	Indent        *uint64
}

// ToolResultView describes the outcome of a tool invocation.
type ToolResultView struct {
	ToolName      string
	ResultContent string
	IsError       bool
	ToolCallID    *string
	Indent        *uint64
}

// TokenUsage holds the token counts reported with an LLM response.
type TokenUsage struct {
	Total      *uint64
	Prompt     *uint64
	Completion *uint64
}

// LLMResponseView describes a model response.
type LLMResponseView struct {
	Model     string
	Content   *string
	Reasoning *string
	Tokens    *TokenUsage
	Indent    *uint64
}

// ExecutionSummaryView closes an agent run. All fields are mandatory.
type ExecutionSummaryView struct {
	Iterations        uint64
	Tokens            uint64
	Success           bool
	TerminationReason string
}

// AgentActionView is a free-form agent step. Subagent lifecycle events share
// the same shape.
type AgentActionView struct {
	Action  string
	Details *string
	Indent  *uint64
}

// SubagentLifecycleView marks subagent creation, execution and completion.
type SubagentLifecycleView struct {
	AgentActionView
}

// ErrorView is an error reported by an agent.
type ErrorView struct {
	Error   string
	Context *string
}

// CycleView marks the start of a multi-agent cycle.
type CycleView struct {
	CycleNumber uint64
	Action      *string
}

// TextBlockView is a titled block of text, possibly truncated at the source.
type TextBlockView struct {
	Title      string
	Lines      []string
	Truncated  bool
	TotalLines *uint64
}

// ContextSnapshotView records the size of the conversation at a turn.
type ContextSnapshotView struct {
	TurnNumber   *uint64
	MessageCount *uint64
	TotalTokens  *uint64
}

// SessionEndView closes a session.
type SessionEndView struct {
	Reason  *string
	EndedAt *string
}

func (ToolCallView) view()          {}
func (ToolResultView) view()        {}
func (LLMResponseView) view()       {}
func (ExecutionSummaryView) view()  {}
func (AgentActionView) view()       {}
func (SubagentLifecycleView) view() {}
func (ErrorView) view()             {}
func (CycleView) view()             {}
func (TextBlockView) view()         {}
func (ContextSnapshotView) view()   {}
func (SessionEndView) view()        {}

// View returns the typed view for the event's kind, or nil when the kind has
// no view or the payload does not fit it.
func (e Event) View() View {
	var (
		v  View
		ok bool
	)
	switch e.Kind {
	case KindToolCall:
		v, ok = e.AsToolCall()
	case KindToolResult:
		v, ok = e.AsToolResult()
	case KindLLMResponse:
		v, ok = e.AsLLMResponse()
	case KindExecutionSummary:
		v, ok = e.AsExecutionSummary()
	case KindAgentAction:
		v, ok = e.AsAgentAction()
	case KindSubagentLifecycle:
		v, ok = e.AsSubagentLifecycle()
	case KindError:
		v, ok = e.AsError()
	case KindCycle:
		v, ok = e.AsCycle()
	case KindTextBlock:
		v, ok = e.AsTextBlock()
	case KindContextSnapshot:
		v, ok = e.AsContextSnapshot()
	case KindSessionEnd:
		v, ok = e.AsSessionEnd()
	}
	if !ok {
		return nil
	}
	return v
}

// AsToolCall requires kind tool_call and a string tool_name.
func (e Event) AsToolCall() (ToolCallView, bool) {
	if e.Kind != KindToolCall {
		return ToolCallView{}, false
	}
	data := e.Payload
	name, ok := data.Get("tool_name").AsString()
	if !ok {
		return ToolCallView{}, false
	}
	params, ok := data.Get("params").AsObject()
	if !ok {
		params = map[string]Payload{}
	}
	return ToolCallView{
		ToolName:      name,
		Params:        params,
		ResultSummary: data.optString("result_summary"),
		Indent:        data.optUint("indent"),
	}, true
}

// AsToolResult requires kind tool_result and string tool_name and
// result_content.
func (e Event) AsToolResult() (ToolResultView, bool) {
	if e.Kind != KindToolResult {
		return ToolResultView{}, false
	}
	data := e.Payload
	name, ok := data.Get("tool_name").AsString()
	if !ok {
		return ToolResultView{}, false
	}
	content, ok := data.Get("result_content").AsString()
	if !ok {
		return ToolResultView{}, false
	}
	isError, _ := data.Get("is_error").AsBool()
	return ToolResultView{
		ToolName:      name,
		ResultContent: content,
		IsError:       isError,
		ToolCallID:    data.optString("tool_call_id"),
		Indent:        data.optUint("indent"),
	}, true
}

// AsLLMResponse requires kind llm_response and a string model.
func (e Event) AsLLMResponse() (LLMResponseView, bool) {
	if e.Kind != KindLLMResponse {
		return LLMResponseView{}, false
	}
	data := e.Payload
	modelName, ok := data.Get("model").AsString()
	if !ok {
		return LLMResponseView{}, false
	}
	var tokens *TokenUsage
	if t := data.Get("tokens"); t.Present() {
		tokens = &TokenUsage{
			Total:      t.optUint("total"),
			Prompt:     t.optUint("prompt"),
			Completion: t.optUint("completion"),
		}
	}
	return LLMResponseView{
		Model:     modelName,
		Content:   data.optString("content"),
		Reasoning: data.optString("reasoning"),
		Tokens:    tokens,
		Indent:    data.optUint("indent"),
	}, true
}

// AsExecutionSummary requires all four fields with the right types.
func (e Event) AsExecutionSummary() (ExecutionSummaryView, bool) {
	if e.Kind != KindExecutionSummary {
		return ExecutionSummaryView{}, false
	}
	data := e.Payload
	iterations, ok := data.Get("iterations").AsUint()
	if !ok {
		return ExecutionSummaryView{}, false
	}
	tokens, ok := data.Get("tokens").AsUint()
	if !ok {
		return ExecutionSummaryView{}, false
	}
	success, ok := data.Get("success").AsBool()
	if !ok {
		return ExecutionSummaryView{}, false
	}
	reason, ok := data.Get("termination_reason").AsString()
	if !ok {
		return ExecutionSummaryView{}, false
	}
	return ExecutionSummaryView{
		Iterations:        iterations,
		Tokens:            tokens,
		Success:           success,
		TerminationReason: reason,
	}, true
}

// AsAgentAction requires kind agent_action and a string action.
func (e Event) AsAgentAction() (AgentActionView, bool) {
	if e.Kind != KindAgentAction {
		return AgentActionView{}, false
	}
	return actionView(e.Payload)
}

// AsSubagentLifecycle requires kind subagent_lifecycle and a string action.
func (e Event) AsSubagentLifecycle() (SubagentLifecycleView, bool) {
	if e.Kind != KindSubagentLifecycle {
		return SubagentLifecycleView{}, false
	}
	v, ok := actionView(e.Payload)
	if !ok {
		return SubagentLifecycleView{}, false
	}
	return SubagentLifecycleView{AgentActionView: v}, true
}

func actionView(data Payload) (AgentActionView, bool) {
	action, ok := data.Get("action").AsString()
	if !ok {
		return AgentActionView{}, false
	}
	return AgentActionView{
		Action:  action,
		Details: data.optString("details"),
		Indent:  data.optUint("indent"),
	}, true
}

// AsError requires kind error and a string error message.
func (e Event) AsError() (ErrorView, bool) {
	if e.Kind != KindError {
		return ErrorView{}, false
	}
	msg, ok := e.Payload.Get("error").AsString()
	if !ok {
		return ErrorView{}, false
	}
	return ErrorView{Error: msg, Context: e.Payload.optString("context")}, true
}

// AsCycle requires kind cycle and a non-negative integer cycle_number.
func (e Event) AsCycle() (CycleView, bool) {
	if e.Kind != KindCycle {
		return CycleView{}, false
	}
	n, ok := e.Payload.Get("cycle_number").AsUint()
	if !ok {
		return CycleView{}, false
	}
	return CycleView{CycleNumber: n, Action: e.Payload.optString("action")}, true
}

// AsTextBlock requires kind text_block and a string title. Non-string
// entries in lines are skipped.
func (e Event) AsTextBlock() (TextBlockView, bool) {
	if e.Kind != KindTextBlock {
		return TextBlockView{}, false
	}
	data := e.Payload
	title, ok := data.Get("title").AsString()
	if !ok {
		return TextBlockView{}, false
	}
	var lines []string
	if items, ok := data.Get("lines").AsArray(); ok {
		lines = make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.AsString(); ok {
				lines = append(lines, s)
			}
		}
	}
	truncated, _ := data.Get("truncated").AsBool()
	return TextBlockView{
		Title:      title,
		Lines:      lines,
		Truncated:  truncated,
		TotalLines: data.optUint("total_lines"),
	}, true
}

// AsContextSnapshot requires kind context_snapshot and an object payload.
func (e Event) AsContextSnapshot() (ContextSnapshotView, bool) {
	if e.Kind != KindContextSnapshot {
		return ContextSnapshotView{}, false
	}
	if _, ok := e.Payload.AsObject(); !ok {
		return ContextSnapshotView{}, false
	}
	return ContextSnapshotView{
		TurnNumber:   e.Payload.optUint("turn_number"),
		MessageCount: e.Payload.optUint("message_count"),
		TotalTokens:  e.Payload.optUint("total_tokens"),
	}, true
}

// AsSessionEnd requires kind session_end and an object payload.
func (e Event) AsSessionEnd() (SessionEndView, bool) {
	if e.Kind != KindSessionEnd {
		return SessionEndView{}, false
	}
	if _, ok := e.Payload.AsObject(); !ok {
		return SessionEndView{}, false
	}
	return SessionEndView{
		Reason:  e.Payload.optString("reason"),
		EndedAt: e.Payload.optString("ended_at"),
	}, true
}
