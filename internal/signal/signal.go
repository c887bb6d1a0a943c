// Package signal defines the Signal entity exchanged between users.
package signal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDecision is returned for a response other than accepted or rejected.
var ErrInvalidDecision = errors.New("signal: invalid decision")

// ErrInvalidDraft is returned when a new signal is missing required fields.
var ErrInvalidDraft = errors.New("signal: invalid draft")

// Type is the kind of signal.
type Type string

const (
	TypeProposal      Type = "proposal"
	TypeWish          Type = "wish"
	TypePlan          Type = "plan"
	TypeSignal        Type = "signal"
	TypeEntertainment Type = "entertainment"
	TypeArt           Type = "art"
	TypeTech          Type = "tech"
)

// CreatableTypes are the types a user can create from the form.
var CreatableTypes = []Type{TypeProposal, TypeWish, TypePlan, TypeSignal}

// Status is the lifecycle state of a signal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusSettled   Status = "settled"
	StatusDeclined  Status = "declined"
	StatusDraft     Status = "draft"
)

// Label is the human-readable status line shown on the detail screen.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Waiting for a response"
	case StatusAccepted, StatusSettled:
		return "Accepted"
	case StatusRejected, StatusDeclined:
		return "Declined"
	case StatusCompleted:
		return "Completed"
	case StatusDraft:
		return "Draft"
	default:
		return string(s)
	}
}

// Decision is a receiver's answer to a pending signal.
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)

// ParseDecision validates a decision string.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionAccepted, DecisionRejected:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDecision, s)
	}
}

// Outcome is the status and indicator colour a decision settles into.
func (d Decision) Outcome() (Status, string) {
	if d == DecisionAccepted {
		return StatusSettled, "#FFD700"
	}
	return StatusDeclined, "#FF6B6B"
}

// Verb is the action word used in confirmations.
func (d Decision) Verb() string {
	if d == DecisionAccepted {
		return "accept"
	}
	return "decline"
}

// Category is the icon and label at the top of a card.
type Category struct {
	Icon string `toml:"icon"`
	Text string `toml:"text"`
}

// Signal is a proposal, wish, plan or other signal between users.
type Signal struct {
	ID          string
	Type        Type
	Status      Status
	Title       string
	Category    Category
	Created     time.Time
	Users       []string // display names, initiator first
	Height      int      // card height in layout units, for the waterfall
	StatusColor string
	Background  string
	Description string
	Options     []string
	Location    string
	Date        string
	Time        string
	InitiatorID string
	ReceiverID  string // empty when the signal has no specific receiver
	Remark      string
}

// CanRespond reports whether userID may accept or decline the signal: it
// must be pending, addressed to userID, and not initiated by userID.
func (s Signal) CanRespond(userID string) bool {
	return s.Status == StatusPending &&
		s.ReceiverID != "" &&
		s.ReceiverID == userID &&
		s.InitiatorID != userID
}

// Clone returns a copy that shares no slices with s.
func (s Signal) Clone() Signal {
	c := s
	c.Users = append([]string(nil), s.Users...)
	c.Options = append([]string(nil), s.Options...)
	return c
}

// CategoryFor is the default category of a newly created signal.
func CategoryFor(t Type) Category {
	switch t {
	case TypeWish:
		return Category{Icon: "★", Text: "Wish"}
	case TypePlan:
		return Category{Icon: "➤", Text: "Plan"}
	case TypeSignal:
		return Category{Icon: "◉", Text: "Signal"}
	default:
		return Category{Icon: "✉", Text: "Proposal"}
	}
}

// BackgroundFor is the card tint of a newly created signal.
func BackgroundFor(t Type) string {
	switch t {
	case TypeWish:
		return "#FFC140"
	case TypePlan:
		return "#40FF9C"
	case TypeSignal:
		return "#9C40FF"
	default:
		return "#409CFF"
	}
}

// Draft is the input for creating a signal.
type Draft struct {
	Title       string
	Description string
	Options     []string
	Location    string
	Date        string
	Time        string
	Type        Type
}

// Validate checks the fields the create form requires.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidDraft)
	}
	for _, t := range CreatableTypes {
		if d.Type == t {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot create a %q", ErrInvalidDraft, d.Type)
}
