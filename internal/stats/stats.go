// Package stats derives tool and token usage counters from an event sequence.
package stats

import (
	"sort"

	"agentlens/internal/model"
)

// ToolStats counts tool invocations and their outcomes by tool name.
type ToolStats struct {
	Calls   map[string]uint32
	Success map[string]uint32
	Errors  map[string]uint32
}

// TokenStats accumulates LLM token usage. ByAgent only receives tokens from
// responses that carry an agent name.
type TokenStats struct {
	TotalTokens uint64
	TotalCalls  uint32
	ByAgent     map[string]uint64
}

// Summary is the result of one aggregation pass.
type Summary struct {
	Tools  ToolStats
	Tokens TokenStats
}

// ToolUsage is one row of the top tools listing.
type ToolUsage struct {
	Name    string `json:"name"`
	Calls   uint32 `json:"calls"`
	Success uint32 `json:"success"`
	Errors  uint32 `json:"errors"`
}

// NewToolStats returns empty tool counters.
func NewToolStats() ToolStats {
	return ToolStats{
		Calls:   map[string]uint32{},
		Success: map[string]uint32{},
		Errors:  map[string]uint32{},
	}
}

// NewTokenStats returns empty token counters.
func NewTokenStats() TokenStats {
	return TokenStats{ByAgent: map[string]uint64{}}
}

// Aggregate computes tool and token statistics in a single pass.
func Aggregate(events []model.Event) Summary {
	sum := Summary{Tools: NewToolStats(), Tokens: NewTokenStats()}
	for _, ev := range events {
		sum.Tools.add(ev)
		sum.Tokens.add(ev)
	}
	return sum
}

// AggregateTools computes tool statistics only.
func AggregateTools(events []model.Event) ToolStats {
	tools := NewToolStats()
	for _, ev := range events {
		tools.add(ev)
	}
	return tools
}

// AggregateTokens computes token statistics only.
func AggregateTokens(events []model.Event) TokenStats {
	tokens := NewTokenStats()
	for _, ev := range events {
		tokens.add(ev)
	}
	return tokens
}

func (s ToolStats) add(ev model.Event) {
	if call, ok := ev.AsToolCall(); ok {
		s.Calls[call.ToolName]++
	}
	if res, ok := ev.AsToolResult(); ok {
		if res.IsError {
			s.Errors[res.ToolName]++
		} else {
			s.Success[res.ToolName]++
		}
	}
}

func (s *TokenStats) add(ev model.Event) {
	resp, ok := ev.AsLLMResponse()
	if !ok {
		return
	}
	s.TotalCalls++
	if resp.Tokens == nil || resp.Tokens.Total == nil {
		return
	}
	total := *resp.Tokens.Total
	s.TotalTokens += total
	if agent, ok := ev.Agent(); ok {
		s.ByAgent[agent] += total
	}
}

// TopTools returns at most n called tools ordered by call count, ties broken
// by name. A non-positive n returns every tool.
func (s ToolStats) TopTools(n int) []ToolUsage {
	out := make([]ToolUsage, 0, len(s.Calls))
	for name, calls := range s.Calls {
		out = append(out, ToolUsage{
			Name:    name,
			Calls:   calls,
			Success: s.Success[name],
			Errors:  s.Errors[name],
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Name < out[j].Name
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Merge returns the field-wise sum of two summaries. Neither input is
// modified.
func Merge(a, b Summary) Summary {
	out := Summary{Tools: NewToolStats(), Tokens: NewTokenStats()}
	for _, s := range []Summary{a, b} {
		addCounts(out.Tools.Calls, s.Tools.Calls)
		addCounts(out.Tools.Success, s.Tools.Success)
		addCounts(out.Tools.Errors, s.Tools.Errors)
		out.Tokens.TotalTokens += s.Tokens.TotalTokens
		out.Tokens.TotalCalls += s.Tokens.TotalCalls
		for agent, n := range s.Tokens.ByAgent {
			out.Tokens.ByAgent[agent] += n
		}
	}
	return out
}

func addCounts(dst, src map[string]uint32) {
	for name, n := range src {
		dst[name] += n
	}
}

// Agents returns the agent names in ByAgent sorted by token count descending,
// then by name.
func (s TokenStats) Agents() []string {
	names := make([]string, 0, len(s.ByAgent))
	for name := range s.ByAgent {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := s.ByAgent[names[i]], s.ByAgent[names[j]]
		if a != b {
			return a > b
		}
		return names[i] < names[j]
	})
	return names
}
