package signal

import (
	"errors"
	"testing"
)

func TestCanRespond(t *testing.T) {
	tests := []struct {
		name string
		sig  Signal
		want bool
	}{
		{"pending to me", Signal{Status: StatusPending, InitiatorID: "user-002", ReceiverID: "user-001"}, true},
		{"already settled", Signal{Status: StatusSettled, InitiatorID: "user-002", ReceiverID: "user-001"}, false},
		{"sent by me", Signal{Status: StatusPending, InitiatorID: "user-001", ReceiverID: "user-003"}, false},
		{"no receiver", Signal{Status: StatusPending, InitiatorID: "user-002"}, false},
		{"to someone else", Signal{Status: StatusPending, InitiatorID: "user-002", ReceiverID: "user-003"}, false},
		{"to myself", Signal{Status: StatusPending, InitiatorID: "user-001", ReceiverID: "user-001"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sig.CanRespond("user-001"); got != tt.want {
				t.Errorf("CanRespond = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDecision(t *testing.T) {
	if d, err := ParseDecision(" Accepted "); err != nil || d != DecisionAccepted {
		t.Errorf("ParseDecision(accepted) = %q, %v", d, err)
	}
	if _, err := ParseDecision("maybe"); !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("ParseDecision(maybe) err = %v, want ErrInvalidDecision", err)
	}
}

func TestDecisionOutcome(t *testing.T) {
	if st, col := DecisionAccepted.Outcome(); st != StatusSettled || col != "#FFD700" {
		t.Errorf("accepted → %s %s", st, col)
	}
	if st, col := DecisionRejected.Outcome(); st != StatusDeclined || col != "#FF6B6B" {
		t.Errorf("rejected → %s %s", st, col)
	}
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	s := Signal{Users: []string{"Alex"}, Options: []string{"a", "b"}}
	c := s.Clone()
	c.Users[0] = "Sarah"
	c.Options[1] = "z"
	if s.Users[0] != "Alex" || s.Options[1] != "b" {
		t.Error("clone mutated the original")
	}
}

func TestDraftValidate(t *testing.T) {
	if err := (Draft{Title: "Hotpot", Type: TypeWish}).Validate(); err != nil {
		t.Errorf("valid draft: %v", err)
	}
	if err := (Draft{Title: "  ", Type: TypeWish}).Validate(); !errors.Is(err, ErrInvalidDraft) {
		t.Errorf("blank title err = %v", err)
	}
	if err := (Draft{Title: "x", Type: TypeArt}).Validate(); !errors.Is(err, ErrInvalidDraft) {
		t.Errorf("art draft err = %v", err)
	}
}
