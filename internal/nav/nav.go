// Package nav is the screen stack of the TUI.
//
// Screens are pushed with a Route. A screen may register a before-leave
// interceptor (OnBeforeLeave) that is consulted for every removal request
// other than ForcePop; returning true from the interceptor keeps the screen
// on the stack. The registration returns a release func so the owner can
// drop the interception when it is done with it.
package nav

import (
	"errors"

	"github.com/abelbrown/spotlight/internal/geometry"
)

// ErrEmptyStack is returned when a pop would remove the root screen.
var ErrEmptyStack = errors.New("nav: nothing to pop")

// ErrIntercepted is returned by Pop when an interceptor kept the screen.
var ErrIntercepted = errors.New("nav: removal intercepted")

// Route names.
const (
	RouteTimeline = "timeline"
	RouteDetail   = "signal-detail"
	RouteCreate   = "create-signal"
	RouteProfile  = "profile"
)

// Params is the navigation parameter contract. Source is nil when the card
// could not be measured; the detail screen then opens without a transition.
type Params struct {
	SignalID string
	Source   *geometry.Snapshot
}

// Route identifies a pushed screen.
type Route struct {
	Name   string
	Params Params
}

// LeaveReason says what asked for the screen to be removed.
type LeaveReason int

const (
	// LeaveBack is a native back intent (hardware back, edge swipe, header).
	LeaveBack LeaveReason = iota
	// LeavePop is a programmatic Pop.
	LeavePop
)

// LeaveRequest is passed to interceptors.
type LeaveRequest struct {
	Route  Route
	Reason LeaveReason
}

// Interceptor decides whether to prevent a removal. It returns true to keep
// the screen (and typically starts its own exit sequence instead).
type Interceptor func(LeaveRequest) (prevent bool)

// Navigator is the capability a screen gets to remove itself.
type Navigator interface {
	// Pop removes the top screen, consulting its interceptor.
	Pop() error
	// ForcePop removes the top screen unconditionally.
	ForcePop() error
	// OnBeforeLeave intercepts removals of the current top screen.
	OnBeforeLeave(Interceptor) (release func())
}

type entry[S any] struct {
	route       Route
	screen      S
	interceptor Interceptor
	token       uint64
}

// Stack is a navigation stack of screens of type S. The bottom entry is the
// root and is never popped. Not goroutine-safe: owned by the UI loop.
type Stack[S any] struct {
	entries  []entry[S]
	onRemove func(Route, S)
	tokens   uint64
}

// NewStack creates a stack with a root screen. onRemove (optional) is called
// after any entry leaves the stack, which is the screen's unmount.
func NewStack[S any](root Route, screen S, onRemove func(Route, S)) *Stack[S] {
	return &Stack[S]{
		entries:  []entry[S]{{route: root, screen: screen}},
		onRemove: onRemove,
	}
}

// Push adds a screen on top.
func (s *Stack[S]) Push(route Route, screen S) {
	s.entries = append(s.entries, entry[S]{route: route, screen: screen})
}

// Top returns the current screen.
func (s *Stack[S]) Top() (Route, S) {
	e := s.entries[len(s.entries)-1]
	return e.route, e.screen
}

// Depth returns the number of screens including the root.
func (s *Stack[S]) Depth() int {
	return len(s.entries)
}

// Back handles a native back intent. It reports whether a screen was
// removed; false means either the root is showing or an interceptor took
// over the exit.
func (s *Stack[S]) Back() bool {
	if len(s.entries) <= 1 {
		return false
	}
	if s.intercepted(LeaveBack) {
		return false
	}
	s.remove()
	return true
}

// Pop removes the top screen unless its interceptor prevents it.
func (s *Stack[S]) Pop() error {
	if len(s.entries) <= 1 {
		return ErrEmptyStack
	}
	if s.intercepted(LeavePop) {
		return ErrIntercepted
	}
	s.remove()
	return nil
}

// ForcePop removes the top screen without consulting interceptors.
func (s *Stack[S]) ForcePop() error {
	if len(s.entries) <= 1 {
		return ErrEmptyStack
	}
	s.remove()
	return nil
}

// OnBeforeLeave installs the interceptor for the current top entry,
// replacing any previous one. The release func is idempotent and only
// clears the interceptor it installed.
func (s *Stack[S]) OnBeforeLeave(i Interceptor) (release func()) {
	s.tokens++
	token := s.tokens
	top := &s.entries[len(s.entries)-1]
	top.interceptor = i
	top.token = token
	return func() {
		for idx := range s.entries {
			if s.entries[idx].token == token {
				s.entries[idx].interceptor = nil
				s.entries[idx].token = 0
				return
			}
		}
	}
}

func (s *Stack[S]) intercepted(reason LeaveReason) bool {
	top := s.entries[len(s.entries)-1]
	if top.interceptor == nil {
		return false
	}
	return top.interceptor(LeaveRequest{Route: top.route, Reason: reason})
}

func (s *Stack[S]) remove() {
	last := len(s.entries) - 1
	e := s.entries[last]
	var zero entry[S]
	s.entries[last] = zero
	s.entries = s.entries[:last]
	if s.onRemove != nil {
		s.onRemove(e.route, e.screen)
	}
}
