// Package nav implements the timeline navigation state machine. It knows
// nothing about terminals: the caller translates key presses into Inputs and
// renders whatever State comes back.
package nav

import (
	"math"
	"strconv"

	"agentlens/internal/model"
)

// ViewMode selects between the timeline alone and the timeline with the
// details pane.
type ViewMode int

const (
	ViewTimeline ViewMode = iota
	ViewDetails
)

func (m ViewMode) String() string {
	if m == ViewDetails {
		return "Details"
	}
	return "Timeline"
}

// Filter restricts the timeline to one event kind.
type Filter int

const (
	FilterNone Filter = iota
	FilterLLMResponse
	FilterToolCall
	FilterToolResult
)

// Next returns the following filter in the cycle
// none, llm_response, tool_call, tool_result.
func (f Filter) Next() Filter {
	switch f {
	case FilterNone:
		return FilterLLMResponse
	case FilterLLMResponse:
		return FilterToolCall
	case FilterToolCall:
		return FilterToolResult
	default:
		return FilterNone
	}
}

// Kind returns the kind the filter selects, or false for FilterNone.
func (f Filter) Kind() (model.Kind, bool) {
	switch f {
	case FilterLLMResponse:
		return model.KindLLMResponse, true
	case FilterToolCall:
		return model.KindToolCall, true
	case FilterToolResult:
		return model.KindToolResult, true
	default:
		return "", false
	}
}

// Matches reports whether events of kind k pass the filter.
func (f Filter) Matches(k model.Kind) bool {
	want, ok := f.Kind()
	return !ok || k == want
}

func (f Filter) String() string {
	if k, ok := f.Kind(); ok {
		return string(k)
	}
	return "none"
}

// State is the complete navigation state. SelectedIndex and ScrollOffset
// index the unfiltered event sequence.
type State struct {
	SelectedIndex       int
	ScrollOffset        int
	DetailsScrollOffset int
	ViewMode            ViewMode
	Filter              Filter
	CountPrefix         string
}

// Geometry carries the facts about the event sequence and the screen that
// transitions depend on.
type Geometry struct {
	Total          int
	ViewportHeight int
}

// Action identifies an input symbol.
type Action int

const (
	ActionCancel Action = iota
	ActionQuit
	ActionDigit
	ActionMoveDown
	ActionMoveUp
	ActionScrollDetailUp
	ActionScrollDetailDown
	ActionToggleView
	ActionJumpTop
	ActionJumpBottom
	ActionCycleFilter
)

// Input is one symbol consumed by Apply.
type Input struct {
	Action Action
	// Digit is the decimal digit character for ActionDigit.
	Digit byte
}

var (
	Quit             = Input{Action: ActionQuit}
	MoveDown         = Input{Action: ActionMoveDown}
	MoveUp           = Input{Action: ActionMoveUp}
	ScrollDetailUp   = Input{Action: ActionScrollDetailUp}
	ScrollDetailDown = Input{Action: ActionScrollDetailDown}
	ToggleView       = Input{Action: ActionToggleView}
	JumpTop          = Input{Action: ActionJumpTop}
	JumpBottom       = Input{Action: ActionJumpBottom}
	CycleFilter      = Input{Action: ActionCycleFilter}
	Cancel           = Input{Action: ActionCancel}
)

// Digit returns the input for a count prefix digit. Anything other than
// '0'..'9' maps to Cancel.
func Digit(d byte) Input {
	if d < '0' || d > '9' {
		return Cancel
	}
	return Input{Action: ActionDigit, Digit: d}
}

// ParseCount interprets a count prefix. An empty or unparsable prefix counts
// as 1.
func ParseCount(prefix string) int {
	n, err := strconv.Atoi(prefix)
	if err != nil || n < 0 {
		return 1
	}
	return n
}

// Apply returns the state that follows s after in. The boolean is true when
// in asks to quit, in which case s is returned unchanged.
func Apply(s State, in Input, g Geometry) (State, bool) {
	height := g.ViewportHeight
	if height <= 0 {
		height = 1
	}
	last := max(g.Total-1, 0)

	switch in.Action {
	case ActionQuit:
		return s, true

	case ActionDigit:
		s.CountPrefix += string(in.Digit)
		return s, false

	case ActionMoveDown:
		n := ParseCount(s.CountPrefix)
		s.CountPrefix = ""
		if s.SelectedIndex < last {
			s.SelectedIndex += min(n, last-s.SelectedIndex)
		}
		s.DetailsScrollOffset = 0
		if s.SelectedIndex >= s.ScrollOffset+height {
			s.ScrollOffset = s.SelectedIndex - height + 1
		}

	case ActionMoveUp:
		n := ParseCount(s.CountPrefix)
		s.CountPrefix = ""
		if s.SelectedIndex > 0 {
			s.SelectedIndex -= min(n, s.SelectedIndex)
		}
		s.DetailsScrollOffset = 0
		if s.SelectedIndex < s.ScrollOffset {
			s.ScrollOffset = s.SelectedIndex
		}

	case ActionScrollDetailUp:
		s.CountPrefix = ""
		if s.DetailsScrollOffset > 0 {
			s.DetailsScrollOffset--
		}

	case ActionScrollDetailDown:
		s.CountPrefix = ""
		if s.DetailsScrollOffset < math.MaxInt {
			s.DetailsScrollOffset++
		}

	case ActionToggleView:
		s.CountPrefix = ""
		if s.ViewMode == ViewTimeline {
			s.ViewMode = ViewDetails
		} else {
			s.ViewMode = ViewTimeline
		}

	case ActionJumpTop:
		s.CountPrefix = ""
		s.SelectedIndex = 0
		s.ScrollOffset = 0

	case ActionJumpBottom:
		s.CountPrefix = ""
		s.SelectedIndex = last
		s.ScrollOffset = max(0, g.Total-height)

	case ActionCycleFilter:
		s.CountPrefix = ""
		s.Filter = s.Filter.Next()
		s.SelectedIndex = 0
		s.ScrollOffset = 0

	default:
		s.CountPrefix = ""
	}

	return s, false
}
