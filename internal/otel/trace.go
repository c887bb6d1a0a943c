package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled gates per-frame events. Atomic because the UI goroutine
// reads it while tests flip it.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("SPOTLIGHT_TRACE") != "")
}

// TraceEnabled reports whether SPOTLIGHT_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// SetTraceEnabled overrides the flag (the --trace flag and tests).
func SetTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
