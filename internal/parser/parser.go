// Package parser decodes JSONL event logs into model events.
package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"agentlens/internal/model"
)

var (
	// ErrMissingTimestamp is returned for records without a timestamp.
	ErrMissingTimestamp = errors.New("missing timestamp")
	// ErrNotObject is returned when a line holds JSON that is not an object.
	ErrNotObject = errors.New("record is not a JSON object")
	// ErrNoEvents is returned by ReadFirstEvent when no line decodes.
	ErrNoEvents = errors.New("no log events found")
)

// ParseError reports a line that could not be decoded into an event.
type ParseError struct {
	Line  int
	Cause error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Cause)
	}
	return e.Cause.Error()
}

func (e *ParseError) Unwrap() error { return e.Cause }

// LoadResult holds the decoded events of a log together with the lines that
// were skipped.
type LoadResult struct {
	Events   []model.Event
	Warnings []error
}

// Decode parses a single log line.
func Decode(line string) (model.Event, error) {
	return DecodeLine(0, line)
}

// DecodeLine parses a single log line and records its 1-based line number.
func DecodeLine(lineNo int, line string) (model.Event, error) {
	event, err := parseEvent([]byte(line))
	if err != nil {
		return model.Event{}, &ParseError{Line: lineNo, Cause: err}
	}
	event.Line = lineNo
	event.Raw = line
	return event, nil
}

// LoadFile reads every event from the log at path.
func LoadFile(path string) (LoadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Load reads every event from r. Blank lines are skipped; lines that fail to
// decode are reported in Warnings and loading continues.
func Load(r io.Reader) (LoadResult, error) {
	var result LoadResult

	scanner := newScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		event, err := DecodeLine(lineNo, line)
		if err != nil {
			result.Warnings = append(result.Warnings, err)
			continue
		}
		result.Events = append(result.Events, event)
	}

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read log file: %w", err)
	}

	return result, nil
}

// ReadFirstEvent returns the first decodable event in the log at path without
// reading the rest of the file.
func ReadFirstEvent(path string) (model.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return model.Event{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	scanner := newScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if event, err := DecodeLine(lineNo, line); err == nil {
			return event, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return model.Event{}, fmt.Errorf("read log file: %w", err)
	}

	return model.Event{}, ErrNoEvents
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	// Allow large payloads such as full prompts or tool outputs.
	const maxCapacity = 8 * 1024 * 1024
	buf := make([]byte, 1024)
	scanner.Buffer(buf, maxCapacity)
	return scanner
}

func parseEvent(raw []byte) (model.Event, error) {
	value, err := decodeValue(raw)
	if err != nil {
		return model.Event{}, err
	}

	rec, ok := value.(map[string]any)
	if !ok {
		return model.Event{}, ErrNotObject
	}

	ts, err := stringField(rec, "timestamp")
	if err != nil {
		return model.Event{}, err
	}
	if ts == nil {
		return model.Event{}, ErrMissingTimestamp
	}

	event := model.Event{
		Timestamp: *ts,
		Kind:      model.KindUnknown,
		Level:     model.DefaultLevel,
	}

	if event.SessionID, err = stringField(rec, "session_id"); err != nil {
		return model.Event{}, err
	}
	if event.AgentName, err = stringField(rec, "agent_name"); err != nil {
		return model.Event{}, err
	}
	if event.AgentType, err = stringField(rec, "agent_type"); err != nil {
		return model.Event{}, err
	}

	kind, err := stringField(rec, "event_type")
	if err != nil {
		return model.Event{}, err
	}
	if kind != nil {
		event.Kind = model.Kind(*kind)
	}

	level, err := stringField(rec, "level")
	if err != nil {
		return model.Event{}, err
	}
	if level != nil {
		event.Level = *level
	}

	if data, ok := rec["data"]; ok && data != nil {
		event.Payload = model.NewPayload(data)
	}

	return event, nil
}

// decodeValue decodes exactly one JSON value, keeping numbers as json.Number.
func decodeValue(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unmarshal record: trailing data after JSON value")
	}
	return value, nil
}

// stringField returns nil when key is absent or null and an error when it
// holds anything other than a string.
func stringField(rec map[string]any, key string) (*string, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("invalid %s: expected string, got %s", key, jsonType(v))
	}
	return &s, nil
}

func jsonType(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "value"
	}
}
