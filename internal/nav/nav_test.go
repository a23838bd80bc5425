package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentlens/internal/model"
)

func run(t *testing.T, s State, g Geometry, inputs ...Input) State {
	t.Helper()
	for _, in := range inputs {
		var quit bool
		s, quit = Apply(s, in, g)
		require.False(t, quit)
	}
	return s
}

func digits(s string) []Input {
	out := make([]Input, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, Digit(s[i]))
	}
	return out
}

func TestMoveUpClampsAtZero(t *testing.T) {
	g := Geometry{Total: 10, ViewportHeight: 20}

	s := run(t, State{}, g, append(digits("5"), MoveUp)...)
	assert.Equal(t, 0, s.SelectedIndex)
	assert.Empty(t, s.CountPrefix)

	s = run(t, State{}, g, MoveDown, MoveDown, MoveDown, MoveDown, MoveDown)
	require.Equal(t, 5, s.SelectedIndex)
	s = run(t, s, g, append(digits("10"), MoveUp)...)
	assert.Equal(t, 0, s.SelectedIndex)
	assert.Equal(t, 0, s.ScrollOffset)
}

func TestMoveDownClampsAtLast(t *testing.T) {
	g := Geometry{Total: 10, ViewportHeight: 4}
	s := run(t, State{}, g, append(digits("99"), MoveDown)...)
	assert.Equal(t, 9, s.SelectedIndex)
	assert.Equal(t, 6, s.ScrollOffset)

	s = run(t, s, g, MoveDown)
	assert.Equal(t, 9, s.SelectedIndex)
}

func TestCountPrefixConsumption(t *testing.T) {
	g := Geometry{Total: 100, ViewportHeight: 20}

	s := run(t, State{SelectedIndex: 3, ScrollOffset: 0}, g, digits("12")...)
	assert.Equal(t, "12", s.CountPrefix)
	assert.Equal(t, 3, s.SelectedIndex)

	s = run(t, s, g, MoveDown)
	assert.Equal(t, 15, s.SelectedIndex)
	assert.Empty(t, s.CountPrefix)

	s = run(t, s, g, append(digits("7"), Cancel)...)
	assert.Equal(t, 15, s.SelectedIndex)
	assert.Empty(t, s.CountPrefix)
}

func TestCountPrefixOverflowFallsBackToOne(t *testing.T) {
	g := Geometry{Total: 10, ViewportHeight: 5}
	s := run(t, State{}, g, append(digits("99999999999999999999999999"), MoveDown)...)
	assert.Equal(t, 1, s.SelectedIndex)
	assert.Empty(t, s.CountPrefix)
}

func TestZeroCountDoesNotMove(t *testing.T) {
	g := Geometry{Total: 10, ViewportHeight: 5}
	s := run(t, State{SelectedIndex: 4, DetailsScrollOffset: 3}, g, append(digits("0"), MoveDown)...)
	assert.Equal(t, 4, s.SelectedIndex)
	assert.Equal(t, 0, s.DetailsScrollOffset)
	assert.Empty(t, s.CountPrefix)
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 1, ParseCount(""))
	assert.Equal(t, 0, ParseCount("0"))
	assert.Equal(t, 12, ParseCount("12"))
	assert.Equal(t, 7, ParseCount("007"))
	assert.Equal(t, 1, ParseCount("184467440737095516160"))
}

func TestScrollFollowsSelection(t *testing.T) {
	g := Geometry{Total: 50, ViewportHeight: 20}
	s := State{}
	for i := 0; i < 25; i++ {
		s = run(t, s, g, MoveDown)
		assert.GreaterOrEqual(t, s.SelectedIndex, s.ScrollOffset)
		assert.Less(t, s.SelectedIndex, s.ScrollOffset+g.ViewportHeight)
	}
	assert.Equal(t, 25, s.SelectedIndex)
	assert.Equal(t, 6, s.ScrollOffset)

	s = run(t, s, g, append(digits("20"), MoveUp)...)
	assert.Equal(t, 5, s.SelectedIndex)
	assert.Equal(t, 5, s.ScrollOffset)
}

func TestMoveResetsDetailsScroll(t *testing.T) {
	g := Geometry{Total: 5, ViewportHeight: 20}
	s := run(t, State{}, g, ScrollDetailDown, ScrollDetailDown, ScrollDetailDown)
	require.Equal(t, 3, s.DetailsScrollOffset)

	s = run(t, s, g, ScrollDetailUp)
	assert.Equal(t, 2, s.DetailsScrollOffset)

	s = run(t, s, g, MoveDown)
	assert.Equal(t, 0, s.DetailsScrollOffset)

	s = run(t, s, g, ScrollDetailUp, ScrollDetailUp)
	assert.Equal(t, 0, s.DetailsScrollOffset)
}

func TestDetailScrollClearsPrefix(t *testing.T) {
	g := Geometry{Total: 5, ViewportHeight: 20}
	s := run(t, State{}, g, append(digits("3"), ScrollDetailDown)...)
	assert.Equal(t, 1, s.DetailsScrollOffset)
	assert.Empty(t, s.CountPrefix)
}

func TestFilterReanchors(t *testing.T) {
	g := Geometry{Total: 10, ViewportHeight: 3}
	s := run(t, State{}, g, append(digits("7"), MoveDown)...)
	require.Equal(t, 7, s.SelectedIndex)
	require.NotZero(t, s.ScrollOffset)

	s = run(t, s, g, CycleFilter)
	assert.Equal(t, FilterLLMResponse, s.Filter)
	assert.Equal(t, 0, s.SelectedIndex)
	assert.Equal(t, 0, s.ScrollOffset)
}

func TestFilterCycle(t *testing.T) {
	g := Geometry{Total: 1, ViewportHeight: 1}
	want := []Filter{FilterLLMResponse, FilterToolCall, FilterToolResult, FilterNone}
	s := State{}
	for _, f := range want {
		s = run(t, s, g, CycleFilter)
		assert.Equal(t, f, s.Filter)
	}
}

func TestFilterMatches(t *testing.T) {
	assert.True(t, FilterNone.Matches(model.KindDebug))
	assert.True(t, FilterToolCall.Matches(model.KindToolCall))
	assert.False(t, FilterToolCall.Matches(model.KindToolResult))
	assert.True(t, FilterLLMResponse.Matches(model.KindLLMResponse))

	_, ok := FilterNone.Kind()
	assert.False(t, ok)
	k, ok := FilterToolResult.Kind()
	require.True(t, ok)
	assert.Equal(t, model.KindToolResult, k)
}

func TestJumpBottomClampsScroll(t *testing.T) {
	s := run(t, State{}, Geometry{Total: 5, ViewportHeight: 20}, JumpBottom)
	assert.Equal(t, 4, s.SelectedIndex)
	assert.Equal(t, 0, s.ScrollOffset)

	s = run(t, State{}, Geometry{Total: 50, ViewportHeight: 20}, JumpBottom)
	assert.Equal(t, 49, s.SelectedIndex)
	assert.Equal(t, 30, s.ScrollOffset)

	s = run(t, s, Geometry{Total: 50, ViewportHeight: 20}, JumpTop)
	assert.Equal(t, State{}, s)
}

func TestToggleView(t *testing.T) {
	g := Geometry{Total: 3, ViewportHeight: 20}
	s := run(t, State{}, g, append(digits("2"), ToggleView)...)
	assert.Equal(t, ViewDetails, s.ViewMode)
	assert.Empty(t, s.CountPrefix)
	s = run(t, s, g, ToggleView)
	assert.Equal(t, ViewTimeline, s.ViewMode)
}

func TestQuitLeavesStateUnchanged(t *testing.T) {
	start := State{SelectedIndex: 2, CountPrefix: "4"}
	s, quit := Apply(start, Quit, Geometry{Total: 3, ViewportHeight: 20})
	assert.True(t, quit)
	assert.Equal(t, start, s)
}

func TestEmptySequenceIsTotal(t *testing.T) {
	g := Geometry{Total: 0, ViewportHeight: 0}
	s := run(t, State{}, g, MoveDown, MoveUp, JumpBottom, CycleFilter, ScrollDetailDown, JumpTop)
	assert.Equal(t, 0, s.SelectedIndex)
	assert.Equal(t, 0, s.ScrollOffset)
}

func TestNonDigitIsCancel(t *testing.T) {
	assert.Equal(t, Cancel, Digit('x'))
	assert.Equal(t, Input{Action: ActionDigit, Digit: '4'}, Digit('4'))
}
