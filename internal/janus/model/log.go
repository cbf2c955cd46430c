package model

import "time"

// LogEntry is one row of the append-only audit trail. Exactly one entry
// exists per decision, including taps with an unknown card or zone. The
// references are nullable so the log survives deletion of whatever it
// points at. Entries are immutable except for the exit stamp and the
// suspicion flag.
type LogEntry struct {
	ID string // uuid

	UserID *int64
	CardID *int64
	ZoneID *int64

	UIDAttempted string // normalized, never the raw transport bytes
	Status       AccessStatus
	Reason       string

	DeviceID     string
	DecisionTime time.Duration
	Timestamp    time.Time

	IsEntry         bool
	ExitTime        *time.Time
	DurationSeconds *int64

	Suspicious     bool
	AlertTriggered bool
	Notes          string
}

// RecordExit stamps the exit time and derives the duration in zone.
// No-op on non-entry rows or rows already stamped.
func (e *LogEntry) RecordExit(at time.Time) {
	if !e.IsEntry || e.ExitTime != nil {
		return
	}
	e.ExitTime = &at
	secs := int64(at.Sub(e.Timestamp).Seconds())
	e.DurationSeconds = &secs
}

// MarkSuspicious flags the entry, optionally recording why.
func (e *LogEntry) MarkSuspicious(note string) {
	e.Suspicious = true
	if note != "" {
		if e.Notes != "" {
			e.Notes += "\n"
		}
		e.Notes += "Suspicious: " + note
	}
}
