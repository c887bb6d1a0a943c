package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abelbrown/spotlight/internal/config"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "View the JSONL event log",
	Long: `Reads and formats the event log written by the TUI.

Filters combine: --kind matches a prefix ("phase", "nav."), --level is a
minimum severity. With --follow (-f), watches the file for new events.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	f := eventsCmd.Flags()
	f.Int("tail", 50, "number of recent matching events to show")
	f.BoolP("follow", "f", false, "follow the file for new events")
	f.String("kind", "", "filter by event kind prefix")
	f.String("level", "", "minimum level: debug, info, warn, error")
	f.String("comp", "", "filter by component")
	f.String("signal", "", "filter by signal ID")
	f.Uint64("screen", 0, "filter by detail screen ID")
	f.Bool("json", false, "print raw JSON lines")
	rootCmd.AddCommand(eventsCmd)
}

// eventRecord mirrors otel.Event for decoding. It stays separate so the
// viewer keeps reading logs written by older builds.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	Screen    uint64         `json:"screen"`
	SignalID  string         `json:"signal"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Source    string         `json:"source"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

type eventFilter struct {
	kind     string
	minLevel string
	comp     string
	signalID string
	screen   uint64
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind) {
		return false
	}
	if f.minLevel != "" && levelRank(ev.Level) < levelRank(f.minLevel) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.signalID != "" && ev.SignalID != f.signalID {
		return false
	}
	if f.screen != 0 && ev.Screen != f.screen {
		return false
	}
	return true
}

func runEvents(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	tail, _ := flags.GetInt("tail")
	follow, _ := flags.GetBool("follow")
	rawJSON, _ := flags.GetBool("json")
	var filter eventFilter
	filter.kind, _ = flags.GetString("kind")
	filter.minLevel, _ = flags.GetString("level")
	filter.comp, _ = flags.GetString("comp")
	filter.signalID, _ = flags.GetString("signal")
	filter.screen, _ = flags.GetUint64("screen")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path := cfg.EventsPath()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("events: %w (run spotlight first to generate events)", err)
	}
	defer f.Close()

	format := func(ev eventRecord, raw []byte) string {
		if rawJSON {
			return string(raw)
		}
		return formatEvent(ev)
	}

	out := cmd.OutOrStdout()
	lines, err := readTailLines(f, tail, filter.match)
	if err != nil {
		return fmt.Errorf("events: read %s: %w", path, err)
	}
	for _, l := range lines {
		fmt.Fprintln(out, format(l.ev, l.raw))
	}

	if !follow {
		return nil
	}
	return followEvents(cmd.Context(), f, path, func(ev eventRecord, raw []byte) {
		if filter.match(ev) {
			fmt.Fprintln(out, format(ev, raw))
		}
	})
}

// formatEvent renders one event as a single line.
func formatEvent(ev eventRecord) string {
	ts := ev.Time.Format("15:04:05.000")
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-8s] %-18s", ts, lvl, ev.Comp, ev.Kind)}

	if ev.Screen != 0 {
		parts = append(parts, fmt.Sprintf("#%d", ev.Screen))
	}
	if ev.SignalID != "" {
		parts = append(parts, "sig="+ev.SignalID)
	}
	if ev.From != "" || ev.To != "" {
		parts = append(parts, ev.From+" → "+ev.To)
	}
	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Source != "" {
		parts = append(parts, "src="+ev.Source)
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}

	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines reads r to the end and returns the last n lines matching
// the filter. Lines that are not valid JSON are skipped.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) ([]parsedLine, error) {
	scanner := bufio.NewScanner(r)
	// Allow large lines (events may carry big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	var ring []parsedLine
	if n > 0 {
		ring = make([]parsedLine, 0, n)
	}

	for scanner.Scan() {
		if n <= 0 {
			continue
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil || !match(ev) {
			continue
		}
		// scanner reuses its buffer
		line := parsedLine{ev: ev, raw: append([]byte(nil), raw...)}

		if len(ring) < n {
			ring = append(ring, line)
		} else {
			copy(ring, ring[1:])
			ring[n-1] = line
		}
	}
	return ring, scanner.Err()
}

// followEvents watches path and hands every new complete line read from f
// to emit until ctx is done or the watcher closes.
func followEvents(ctx context.Context, f *os.File, path string, emit func(eventRecord, []byte)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("events: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("events: watch %s: %w", path, err)
	}

	reader := bufio.NewReader(f)
	var partial []byte
	drain := func() {
		for {
			chunk, err := reader.ReadBytes('\n')
			partial = append(partial, chunk...)
			if err != nil {
				// Keep an unterminated line until the writer finishes it.
				return
			}
			line := trimLine(partial)
			partial = partial[:0]
			if len(line) == 0 {
				continue
			}
			var ev eventRecord
			if json.Unmarshal(line, &ev) != nil {
				continue
			}
			emit(ev, append([]byte(nil), line...))
		}
	}
	drain()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			drain()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("events: watch %s: %w", path, err)
		}
	}
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
