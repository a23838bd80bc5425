package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentlens/internal/model"
)

func fixturePath(parts ...string) string {
	elems := append([]string{"..", "..", "testdata"}, parts...)
	return filepath.Join(elems...)
}

func TestDecodeDefaults(t *testing.T) {
	event, err := Decode(`{"timestamp":"2025-03-14T09:00:00"}`)
	require.NoError(t, err)

	assert.Equal(t, model.KindUnknown, event.Kind)
	assert.Equal(t, "info", event.Level)
	assert.Nil(t, event.SessionID)
	assert.Nil(t, event.AgentName)
	assert.Nil(t, event.AgentType)
	assert.False(t, event.Payload.Present())
}

func TestDecodeNullsAreAbsent(t *testing.T) {
	event, err := Decode(`{"timestamp":"t","session_id":null,"event_type":null,"level":null,"agent_name":null,"data":null}`)
	require.NoError(t, err)

	assert.Nil(t, event.SessionID)
	assert.Nil(t, event.AgentName)
	assert.Equal(t, model.KindUnknown, event.Kind)
	assert.Equal(t, model.DefaultLevel, event.Level)
	assert.False(t, event.Payload.Present(), "null data is absent")
}

func TestDecodeKeepsUnrecognizedKind(t *testing.T) {
	event, err := Decode(`{"timestamp":"t","event_type":"market_snapshot","data":"free text"}`)
	require.NoError(t, err)

	assert.Equal(t, model.Kind("market_snapshot"), event.Kind)
	assert.False(t, event.Kind.Known())
	s, ok := event.Payload.AsString()
	assert.True(t, ok)
	assert.Equal(t, "free text", s)
}

func TestDecodeUnexpectedPayloadShape(t *testing.T) {
	event, err := Decode(`{"timestamp":"t","event_type":"tool_call","data":[1,2]}`)
	require.NoError(t, err)

	_, ok := event.AsToolCall()
	assert.False(t, ok)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{name: "syntax", line: `{"timestamp":`},
		{name: "array", line: `[1,2]`, want: ErrNotObject},
		{name: "string", line: `"hello"`, want: ErrNotObject},
		{name: "missing timestamp", line: `{"event_type":"debug"}`, want: ErrMissingTimestamp},
		{name: "null timestamp", line: `{"timestamp":null}`, want: ErrMissingTimestamp},
		{name: "numeric timestamp", line: `{"timestamp":1710406800}`},
		{name: "numeric session", line: `{"timestamp":"t","session_id":5}`},
		{name: "object level", line: `{"timestamp":"t","level":{}}`},
		{name: "trailing value", line: `{"timestamp":"t"} {"timestamp":"u"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeLine(7, tc.line)
			require.Error(t, err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, 7, perr.Line)
			assert.True(t, strings.HasPrefix(err.Error(), "line 7: "), "unexpected message: %q", err.Error())
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestLoadFileSample(t *testing.T) {
	result, err := LoadFile(fixturePath("sample.jsonl"))
	require.NoError(t, err)

	assert.Empty(t, result.Warnings)
	require.Len(t, result.Events, 11)

	first := result.Events[0]
	assert.Equal(t, model.KindSessionStart, first.Kind)
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, "forecast-001", model.SessionOf(result.Events))
	assert.Equal(t, "error", result.Events[6].Level)
}

func TestLoadFileSkipsBadLines(t *testing.T) {
	result, err := LoadFile(fixturePath("malformed.jsonl"))
	require.NoError(t, err)

	require.Len(t, result.Events, 2)
	assert.Equal(t, 7, result.Events[1].Line)

	wantLines := []int{2, 4, 5, 6}
	require.Len(t, result.Warnings, len(wantLines))
	for i, warn := range result.Warnings {
		var perr *ParseError
		require.ErrorAs(t, warn, &perr, "warning %d", i)
		assert.Equal(t, wantLines[i], perr.Line, "warning %d", i)
	}
}

func TestLoadBlankFile(t *testing.T) {
	result, err := LoadFile(fixturePath("blank.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, result.Events)
	assert.Empty(t, result.Warnings)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(fixturePath("does-not-exist.jsonl"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, strings.HasPrefix(err.Error(), "open log file: "), "unexpected message: %q", err.Error())
}

func TestLoadLineTooLong(t *testing.T) {
	long := `{"timestamp":"t","data":"` + strings.Repeat("x", 9*1024*1024) + `"}`
	_, err := Load(strings.NewReader(long + "\n"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "read log file: "), "unexpected message: %q", err.Error())
}

func TestReadFirstEvent(t *testing.T) {
	event, err := ReadFirstEvent(fixturePath("malformed.jsonl"))
	require.NoError(t, err)
	id, _ := event.Session()
	assert.Equal(t, "broken-002", id)

	_, err = ReadFirstEvent(fixturePath("blank.jsonl"))
	assert.ErrorIs(t, err, ErrNoEvents)
}
