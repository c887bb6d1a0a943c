// Package otel is spotlight's structured event log.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// them asynchronously through a buffered channel and a drain goroutine; an
// optional RingBuffer keeps the most recent ones in memory for the debug
// overlay. `spotlight events` reads the file back.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Transition events
	KindAnimStart   EventKind = "anim.start"
	KindAnimFrame   EventKind = "anim.frame" // only with SPOTLIGHT_TRACE
	KindAnimCancel  EventKind = "anim.cancel"
	KindPhaseChange EventKind = "phase.change"

	// Navigation events
	KindNavPush      EventKind = "nav.push"
	KindNavBack      EventKind = "nav.back"
	KindNavPop       EventKind = "nav.pop"
	KindNavPopFailed EventKind = "nav.pop_failed"
	KindMeasureMiss  EventKind = "nav.measure_miss"

	// Backend events
	KindFetchStart      EventKind = "fetch.start"
	KindFetchComplete   EventKind = "fetch.complete"
	KindFetchError      EventKind = "fetch.error"
	KindRespondStart    EventKind = "respond.start"
	KindRespondComplete EventKind = "respond.complete"
	KindRespondError    EventKind = "respond.error"
	KindCreateComplete  EventKind = "create.complete"
	KindCreateError     EventKind = "create.error"
	KindRefresh         EventKind = "fetch.refresh"

	// UI events
	KindKeyPress EventKind = "ui.key"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is the universal record. Every field except Kind and Time is
// optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "detail", "timeline", "coord", "main"
	SessionID string         `json:"session_id,omitempty"` // random hex, same for entire app run
	Screen    uint64         `json:"screen,omitempty"`     // owner ID of the detail screen
	SignalID  string         `json:"signal,omitempty"`
	From      string         `json:"from,omitempty"` // previous phase
	To        string         `json:"to,omitempty"`   // new phase
	Dur       time.Duration  `json:"-"`              // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Source    string         `json:"source,omitempty"` // what triggered it: "native", "respond", key name
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
