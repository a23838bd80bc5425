package model

import "strings"

const (
	// DefaultLevel is assigned when a line carries no level.
	DefaultLevel = "info"
	// UnknownSession labels logs whose first event has no session_id.
	UnknownSession = "unknown"
)

// Event is one decoded log line.
type Event struct {
	Timestamp string
	SessionID *string
	Kind      Kind
	Level     string
	AgentName *string
	AgentType *string
	Payload   Payload

	// Line is the 1-based line number in the source file, zero when the event
	// was decoded outside a file.
	Line int
	// Raw is the undecoded line.
	Raw string
}

// Agent returns the agent name when present.
func (e Event) Agent() (string, bool) {
	if e.AgentName == nil {
		return "", false
	}
	return *e.AgentName, true
}

// Session returns the session id when present.
func (e Event) Session() (string, bool) {
	if e.SessionID == nil {
		return "", false
	}
	return *e.SessionID, true
}

// ShortTime returns the time-of-day part of an ISO-8601 timestamp without the
// fractional seconds. Timestamps that do not look like ISO-8601 are returned
// unchanged.
func (e Event) ShortTime() string {
	_, clock, ok := strings.Cut(e.Timestamp, "T")
	if !ok {
		return e.Timestamp
	}
	clock, _, _ = strings.Cut(clock, ".")
	return clock
}

// SessionOf returns the session id of the first event, or UnknownSession.
func SessionOf(events []Event) string {
	if len(events) == 0 {
		return UnknownSession
	}
	if id, ok := events[0].Session(); ok {
		return id
	}
	return UnknownSession
}
