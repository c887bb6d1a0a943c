// Package ui provides the Bubble Tea TUI for spotlight.
package ui

import (
	"github.com/abelbrown/spotlight/internal/nav"
	"github.com/abelbrown/spotlight/internal/signal"
	"github.com/abelbrown/spotlight/internal/store"
)

// SignalsLoaded is sent when the feed has been fetched.
type SignalsLoaded struct {
	Signals    []signal.Signal
	Err        error
	Background bool // sent by the refresher, not a user action
}

// SignalLoaded carries the detail fetch of the host with ID Owner.
type SignalLoaded struct {
	Owner  uint64
	Signal *signal.Signal // nil when the signal does not exist
	Err    error
}

// Responded is sent when a respond mutation finishes. The host that sent
// it may be gone by then; the app handles those results itself.
type Responded struct {
	Owner    uint64
	SignalID string
	Decision signal.Decision
	Signal   *signal.Signal
	Err      error
}

// SignalCreated is sent when the create mutation finishes.
type SignalCreated struct {
	Signal *signal.Signal
	Err    error
}

// CountsLoaded carries the profile tallies.
type CountsLoaded struct {
	Counts store.Counts
	Err    error
}

// OpenDetail asks the app to push the detail screen. Params.Source is nil
// when the card could not be measured.
type OpenDetail struct {
	Params nav.Params
}

// OpenCreate asks the app to push the create form.
type OpenCreate struct{}

// OpenProfile asks the app to push the profile screen.
type OpenProfile struct{}
