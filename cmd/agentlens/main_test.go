package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentlens/internal/store"
)

func testdata(parts ...string) string {
	return filepath.Join(append([]string{"..", "..", "testdata"}, parts...)...)
}

// runCmd executes the root command with args and an isolated config.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("AGENTLENS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("AGENTLENS_LOGS_DIR", "")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestClipSummary(t *testing.T) {
	assert.Equal(t, "ab…", clipSummary("abcdef", 3))
	assert.Equal(t, "short", clipSummary("short", 10))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "line one line two", collapseWhitespace("  line one\n\nline\t two  "))
}

func TestRootPrintsSummaryWithoutTerminal(t *testing.T) {
	out, errOut, err := runCmd(t, testdata("sample.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, errOut)
	for _, want := range []string{"Session Stats", "forecast-001", "Top Tools", "web_search"} {
		assert.Contains(t, out, want)
	}
}

func TestRootEmptyLog(t *testing.T) {
	out, _, err := runCmd(t, testdata("blank.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, emptyLogNotice+"\n", out)
}

func TestRootMissingFile(t *testing.T) {
	_, _, err := runCmd(t, testdata("nope.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRootMissingBareFileName(t *testing.T) {
	for _, name := range []string{"run.log", "events.ndjson"} {
		_, _, err := runCmd(t, "--logs-dir", t.TempDir(), name)
		require.ErrorIs(t, err, os.ErrNotExist, name)
		assert.NotErrorIs(t, err, store.ErrSessionNotFound)
		assert.True(t, strings.HasPrefix(err.Error(), "open log file: "), "unexpected message: %v", err)
	}
}

func TestRootWarnsAndResolvesSessionID(t *testing.T) {
	out, errOut, err := runCmd(t, "--logs-dir", testdata("sessions"), "forecast-002")
	require.NoError(t, err)
	assert.Contains(t, out, "forecast-002")
	assert.Equal(t, 1, strings.Count(errOut, "warning: line "), errOut)
}

func TestRootRequiresOneArgument(t *testing.T) {
	_, _, err := runCmd(t)
	assert.Error(t, err)
}

func TestStatsCommandJSON(t *testing.T) {
	out, _, err := runCmd(t, "stats", testdata("sample.jsonl"), "--format", "json", "--top", "1")
	require.NoError(t, err)

	var report struct {
		SessionID   string `json:"session_id"`
		TotalTokens uint64 `json:"total_tokens"`
		TopTools    []struct {
			Name string `json:"name"`
		} `json:"top_tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, "forecast-001", report.SessionID)
	assert.Equal(t, uint64(200), report.TotalTokens)
	require.Len(t, report.TopTools, 1)
	assert.Equal(t, "web_search", report.TopTools[0].Name)
}

func TestDumpCommandFormatRaw(t *testing.T) {
	path := testdata("sample.jsonl")
	out, _, err := runCmd(t, "dump", path, "--format", "raw", "--kind", "session_start,session_end")
	require.NoError(t, err)

	wantBytes, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(wantBytes), "\n"), "\n")
	assert.Equal(t, lines[0]+"\n"+lines[len(lines)-1]+"\n", out)
}

func TestDumpCommandRejectsConflictingColor(t *testing.T) {
	_, _, err := runCmd(t, "dump", testdata("sample.jsonl"), "--color", "--no-color")
	assert.Error(t, err)
}

func TestListCommandPlain(t *testing.T) {
	out, _, err := runCmd(t, "list", testdata("sessions"), "--format", "plain", "--no-header")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, out)
	assert.Contains(t, lines[0], "\tforecast-002\t")
	assert.Contains(t, lines[1], "\tforecast-001\t")
}

func TestListCommandTotals(t *testing.T) {
	out, _, err := runCmd(t, "list", testdata("sessions"), "--format", "plain", "--totals")
	require.NoError(t, err)
	assert.Contains(t, out, "session\t2 sessions\n")
	assert.Contains(t, out, "total_tokens\t470\n")

	_, _, err = runCmd(t, "list", testdata("sessions"), "--format", "json", "--totals")
	assert.Error(t, err)
}

func TestListCommandInvalidAfter(t *testing.T) {
	_, _, err := runCmd(t, "list", testdata("sessions"), "--after", "yesterday")
	assert.Error(t, err)
}

func TestInfoCommandText(t *testing.T) {
	out, _, err := runCmd(t, "info", testdata("sample.jsonl"))
	require.NoError(t, err)
	for _, want := range []string{
		"Session ID    : forecast-001",
		"Duration      : 00:00:11",
		"Events        : 11",
		"Tool Calls    : 3",
		"Errors        : 1",
		"Agents        : forecaster",
		"Last Response : Summary ready.",
	} {
		assert.Contains(t, out, want)
	}
}

func TestInfoCommandInvalidSummary(t *testing.T) {
	_, _, err := runCmd(t, "info", testdata("sample.jsonl"), "--summary", "short")
	assert.Error(t, err)
}
