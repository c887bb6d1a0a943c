package otel

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// emitAll writes evs through a fresh logger and returns the decoded lines.
func emitAll(t *testing.T, evs ...Event) []map[string]any {
	t.Helper()
	var buf bytes.Buffer
	l := NewLogger(&buf)
	for _, ev := range evs {
		l.Emit(ev)
	}
	l.Close()
	return decodeLines(t, buf.Bytes())
}

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for i, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("line %d: invalid JSON %q: %v", i, line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestEventEncoding(t *testing.T) {
	tests := []struct {
		name    string
		ev      Event
		want    map[string]any
		omitted []string
	}{
		{
			name:    "bare event keeps only kind, time and session",
			ev:      Event{Kind: KindStartup},
			want:    map[string]any{"kind": "sys.startup"},
			omitted: []string{"level", "dur_ms", "count", "source", "signal", "screen", "from", "to", "err", "msg", "extra"},
		},
		{
			name: "phase fields",
			ev:   Event{Kind: KindPhaseChange, Level: LevelDebug, Comp: "detail", Screen: 4, SignalID: "2", From: "expanding", To: "expanded"},
			want: map[string]any{"kind": "phase.change", "level": "debug", "comp": "detail", "screen": 4.0, "signal": "2", "from": "expanding", "to": "expanded"},
		},
		{
			name:    "duration becomes milliseconds",
			ev:      Event{Kind: KindFetchComplete, Dur: 1500 * time.Millisecond, Count: 12},
			want:    map[string]any{"dur_ms": 1500.0, "count": 12.0},
			omitted: []string{"Dur"},
		},
		{
			name: "back source",
			ev:   Event{Kind: KindNavBack, Source: "native", Msg: "detail"},
			want: map[string]any{"kind": "nav.back", "source": "native", "msg": "detail"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := emitAll(t, tt.ev)
			if len(lines) != 1 {
				t.Fatalf("got %d lines, want 1", len(lines))
			}
			got := lines[0]
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %v, want %v", k, got[k], v)
				}
			}
			for _, k := range tt.omitted {
				if _, ok := got[k]; ok {
					t.Errorf("%s should be omitted, got %v", k, got[k])
				}
			}
			if _, ok := got["t"]; !ok {
				t.Error("t should always be set")
			}
		})
	}
}

func TestEmitStampsTimeAndSession(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	before := time.Now()
	l.Emit(Event{Kind: KindNavPush})
	fixed := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	l.Emit(Event{Kind: KindNavPop, Time: fixed})
	l.Close()
	after := time.Now()

	var evs []Event
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		evs = append(evs, ev)
	}
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	if evs[0].Time.Before(before) || evs[0].Time.After(after) {
		t.Errorf("time %v not in [%v, %v]", evs[0].Time, before, after)
	}
	if !evs[1].Time.Equal(fixed) {
		t.Errorf("explicit time replaced: %v", evs[1].Time)
	}
	if len(evs[0].SessionID) != 16 || evs[0].SessionID != l.SessionID() {
		t.Errorf("session_id = %q, want the logger's 16 hex chars %q", evs[0].SessionID, l.SessionID())
	}
	if evs[0].SessionID != evs[1].SessionID {
		t.Error("every event of a run should share the session ID")
	}
}

func TestConvenienceHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Info(KindStartup, "main", "starting")
	l.Warn(KindMeasureMiss, "timeline", "s4")
	l.Error(KindRespondError, "detail", errors.New("rate limited"))
	l.Error(KindError, "coord", nil)
	l.Phase(7, "1", "expanded", "collapsing")
	l.Close()

	lines := decodeLines(t, buf.Bytes())
	want := []map[string]any{
		{"level": "info", "kind": "sys.startup", "comp": "main", "msg": "starting"},
		{"level": "warn", "kind": "nav.measure_miss", "comp": "timeline", "msg": "s4"},
		{"level": "error", "kind": "respond.error", "comp": "detail", "err": "rate limited"},
		{"level": "error", "kind": "sys.error", "comp": "coord"},
		{"level": "info", "kind": "phase.change", "comp": "detail", "screen": 7.0, "signal": "1", "from": "expanded", "to": "collapsing"},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i, w := range want {
		for k, v := range w {
			if lines[i][k] != v {
				t.Errorf("line %d: %s = %v, want %v", i, k, lines[i][k], v)
			}
		}
	}
}

func TestRingBufferSeesDrainedEvents(t *testing.T) {
	ring := NewRingBuffer(8)
	l := NewNullLogger()
	l.SetRingBuffer(ring)

	l.Phase(1, "3", "idle", "expanding")
	l.Emit(Event{Kind: KindAnimStart, Screen: 1})
	l.Close()

	if ring.Len() != 2 {
		t.Fatalf("ring has %d events, want 2", ring.Len())
	}
	if got := ring.LastWithPrefix("phase.", 5); len(got) != 1 || got[0].To != "expanding" {
		t.Errorf("phase events = %+v", got)
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(screen uint64) {
			defer wg.Done()
			l.Emit(Event{Kind: KindAnimFrame, Screen: screen})
		}(uint64(i + 1))
	}
	wg.Wait()
	l.Close()

	if n := len(decodeLines(t, buf.Bytes())); n != 100 {
		t.Errorf("got %d lines, want 100", n)
	}
}

func TestCloseFlushesAndIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindStartup})
	l.Emit(Event{Kind: KindShutdown})
	l.Close()
	l.Close()

	if n := len(decodeLines(t, buf.Bytes())); n != 2 {
		t.Fatalf("got %d lines after Close, want 2", n)
	}

	l.Emit(Event{Kind: KindNavPush})
	if l.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want the late event counted", l.Dropped())
	}
}

func TestDropCounter(t *testing.T) {
	bw := &blockingWriter{
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	l := NewLogger(bw)

	// The first event parks the drain goroutine inside Write.
	l.Emit(Event{Kind: KindAnimFrame})
	<-bw.started

	for i := 0; i < writerChanSize+10; i++ {
		l.Emit(Event{Kind: KindAnimFrame})
	}
	if l.Dropped() == 0 {
		t.Error("expected drops when the channel is full")
	}

	close(bw.block)
	l.Close()
}

type blockingWriter struct {
	started chan struct{}
	block   chan struct{}
	once    sync.Once
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	w.once.Do(func() {
		close(w.started)
		<-w.block
	})
	return len(p), nil
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.jsonl")

	for i := 0; i < 2; i++ {
		l, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile: %v", err)
		}
		l.Emit(Event{Kind: KindStartup})
		l.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := decodeLines(t, data)
	if len(lines) != 2 {
		t.Fatalf("got %d lines across two sessions, want 2", len(lines))
	}
	if lines[0]["session_id"] == lines[1]["session_id"] {
		t.Error("each run should get its own session ID")
	}
}
