package main

import (
	"strings"
	"testing"
	"time"
)

const sampleLog = `{"t":"2025-01-15T12:00:00Z","level":"info","kind":"sys.startup","comp":"main","msg":"user user-001"}
{"t":"2025-01-15T12:00:01Z","level":"debug","kind":"phase.change","comp":"detail","screen":1,"signal":"1","from":"idle","to":"expanding"}
not json
{"t":"2025-01-15T12:00:02Z","level":"error","kind":"respond.error","comp":"detail","screen":1,"signal":"1","err":"rate limited"}

{"t":"2025-01-15T12:00:03Z","level":"debug","kind":"phase.change","comp":"detail","screen":2,"signal":"3","from":"expanded","to":"collapsing"}
`

func all(eventRecord) bool { return true }

func TestReadTailLinesKeepsLastN(t *testing.T) {
	lines, err := readTailLines(strings.NewReader(sampleLog), 2, all)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ev.Kind != "respond.error" || lines[1].ev.Screen != 2 {
		t.Errorf("got %q then screen %d", lines[0].ev.Kind, lines[1].ev.Screen)
	}
	if !strings.Contains(string(lines[1].raw), `"to":"collapsing"`) {
		t.Errorf("raw line lost: %s", lines[1].raw)
	}
}

func TestReadTailLinesZero(t *testing.T) {
	lines, err := readTailLines(strings.NewReader(sampleLog), 0, all)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Errorf("got %d lines, want none", len(lines))
	}
}

func TestEventFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter eventFilter
		want   int
	}{
		{"none", eventFilter{}, 4},
		{"kind prefix", eventFilter{kind: "phase"}, 2},
		{"min level", eventFilter{minLevel: "info"}, 2},
		{"errors only", eventFilter{minLevel: "error"}, 1},
		{"component", eventFilter{comp: "main"}, 1},
		{"signal", eventFilter{signalID: "1"}, 2},
		{"screen", eventFilter{screen: 2}, 1},
		{"combined", eventFilter{kind: "phase", signalID: "1"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := readTailLines(strings.NewReader(sampleLog), 50, tt.filter.match)
			if err != nil {
				t.Fatal(err)
			}
			if len(lines) != tt.want {
				t.Errorf("got %d events, want %d", len(lines), tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	ev := eventRecord{
		Time:     time.Date(2025, 1, 15, 12, 0, 1, 500e6, time.UTC),
		Level:    "debug",
		Kind:     "phase.change",
		Comp:     "detail",
		Screen:   3,
		SignalID: "1",
		From:     "expanded",
		To:       "collapsing",
		DurMs:    12.34,
		Source:   "native",
	}
	got := formatEvent(ev)
	for _, want := range []string{"12:00:01.500", "DEBUG", "[detail", "phase.change", "#3", "sig=1", "expanded → collapsing", "(12.3ms)", "src=native"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEvent() = %q, missing %q", got, want)
		}
	}

	if got := formatEvent(eventRecord{Kind: "sys.error", Err: "boom"}); !strings.Contains(got, "?") || !strings.Contains(got, "err=boom") {
		t.Errorf("formatEvent() = %q, want unknown level and the error", got)
	}
}

func TestLevelRank(t *testing.T) {
	if !(levelRank("debug") < levelRank("info") && levelRank("info") < levelRank("warn") && levelRank("warn") < levelRank("error")) {
		t.Error("levels should rank debug < info < warn < error")
	}
	if levelRank("bogus") != 0 {
		t.Error("unknown levels rank lowest")
	}
}

func TestDurPrecision(t *testing.T) {
	for ms, want := range map[float64]int{250: 0, 12.5: 1, 0.25: 2} {
		if got := durPrecision(ms); got != want {
			t.Errorf("durPrecision(%v) = %d, want %d", ms, got, want)
		}
	}
}
