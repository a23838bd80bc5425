// Package store enumerates session logs in a directory.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"agentlens/internal/model"
	"agentlens/internal/parser"
	"agentlens/internal/stats"
)

// ErrRootRequired is returned when no log directory is given.
var ErrRootRequired = errors.New("root directory is required")

// ErrSessionNotFound is returned when no log under the root carries the
// requested session id.
var ErrSessionNotFound = errors.New("session not found")

var errStop = errors.New("stop iteration")

// Session summarizes one log file.
type Session struct {
	ID              string `json:"session_id"`
	Path            string `json:"path"`
	StartedAt       string `json:"started_at"`
	EndedAt         string `json:"ended_at"`
	DurationSeconds int    `json:"duration_seconds"`
	EventCount      int    `json:"event_count"`
	SkippedLines    int    `json:"skipped_lines"`
	TotalTokens     uint64 `json:"total_tokens"`
	LLMCalls        uint32 `json:"llm_calls"`
	ToolCalls       uint32 `json:"tool_calls"`
	Errors          uint32 `json:"errors"`
}

// ListOptions controls how sessions are enumerated.
type ListOptions struct {
	Root   string
	After  *time.Time
	Before *time.Time
	Limit  int
}

// ListResult contains session summaries and non-fatal warnings.
type ListResult struct {
	Sessions []Session
	Warnings []error
	// Totals is the merged statistics of every listed session.
	Totals stats.Summary
}

// ListSessions loads every *.jsonl file under Root and summarizes it. Files
// that cannot be read or hold no events become warnings.
func ListSessions(opts ListOptions) (ListResult, error) {
	root := opts.Root
	if root == "" {
		return ListResult{}, ErrRootRequired
	}

	result := ListResult{Totals: stats.Aggregate(nil)}
	summaries := map[string]stats.Summary{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("walk %s: %w", path, walkErr))
			return nil
		}

		if d.IsDir() || !isLogFile(d.Name()) {
			return nil
		}

		loaded, err := parser.LoadFile(path)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("load %s: %w", path, err))
			return nil
		}
		if len(loaded.Events) == 0 {
			result.Warnings = append(result.Warnings, fmt.Errorf("load %s: %w", path, parser.ErrNoEvents))
			return nil
		}

		session, sum := Summarize(path, loaded)

		start, hasStart := parseTimestamp(session.StartedAt)
		if opts.After != nil && (!hasStart || start.Before(*opts.After)) {
			return nil
		}
		if opts.Before != nil && (!hasStart || start.After(*opts.Before)) {
			return nil
		}

		result.Sessions = append(result.Sessions, session)
		summaries[path] = sum
		return nil
	})
	if err != nil {
		return result, err
	}

	sort.SliceStable(result.Sessions, func(i, j int) bool {
		if result.Sessions[i].StartedAt != result.Sessions[j].StartedAt {
			return result.Sessions[i].StartedAt > result.Sessions[j].StartedAt
		}
		return result.Sessions[i].Path < result.Sessions[j].Path
	})

	if opts.Limit > 0 && len(result.Sessions) > opts.Limit {
		result.Sessions = result.Sessions[:opts.Limit]
	}

	for _, s := range result.Sessions {
		result.Totals = stats.Merge(result.Totals, summaries[s.Path])
	}

	return result, nil
}

// Summarize describes the log loaded from path. loaded must hold at least one
// event.
func Summarize(path string, loaded parser.LoadResult) (Session, stats.Summary) {
	events := loaded.Events
	sum := stats.Aggregate(events)

	id := model.SessionOf(events)
	if id == model.UnknownSession {
		id = strings.TrimSuffix(filepath.Base(path), ".jsonl")
	}

	session := Session{
		ID:           id,
		Path:         path,
		StartedAt:    events[0].Timestamp,
		EndedAt:      events[len(events)-1].Timestamp,
		EventCount:   len(events),
		SkippedLines: len(loaded.Warnings),
		TotalTokens:  sum.Tokens.TotalTokens,
		LLMCalls:     sum.Tokens.TotalCalls,
	}
	for _, n := range sum.Tools.Calls {
		session.ToolCalls += n
	}
	for _, n := range sum.Tools.Errors {
		session.Errors += n
	}
	for _, ev := range events {
		if _, ok := ev.AsError(); ok {
			session.Errors++
		}
	}

	start, okStart := parseTimestamp(session.StartedAt)
	end, okEnd := parseTimestamp(session.EndedAt)
	if okStart && okEnd {
		session.DurationSeconds = durationSeconds(start, end)
	}

	return session, sum
}

// FindSessionPath searches root for the log of session id. A file named
// <id>.jsonl matches directly; otherwise the first event's session_id is
// compared.
func FindSessionPath(root, id string) (string, error) {
	if root == "" {
		return "", ErrRootRequired
	}
	if id == "" {
		return "", errors.New("session id is required")
	}

	var matched string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() || !isLogFile(d.Name()) {
			return nil
		}
		if strings.TrimSuffix(d.Name(), ".jsonl") == id {
			matched = path
			return errStop
		}
		first, err := parser.ReadFirstEvent(path)
		if err != nil {
			return nil
		}
		if sid, ok := first.Session(); ok && sid == id {
			matched = path
			return errStop
		}
		return nil
	})

	if matched != "" {
		return matched, nil
	}
	if err != nil && !errors.Is(err, errStop) {
		return "", err
	}
	return "", fmt.Errorf("%w: %s under %s", ErrSessionNotFound, id, root)
}

func isLogFile(name string) bool {
	return strings.HasSuffix(name, ".jsonl")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseTimestamp accepts RFC 3339 and the zone-less ISO-8601 form written by
// Python's datetime.isoformat. Zone-less values are taken as UTC.
func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func durationSeconds(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Seconds())
}
