package model

import "time"

// DefaultSessionTimeout bounds a whole verification dialogue.
const DefaultSessionTimeout = time.Minute

// SessionState is the step a verification session is waiting on.
type SessionState int

const (
	StateAwaitingName SessionState = iota
	StateAwaitingBranch
	StateAwaitingPhone
	StateDone
)

func (s SessionState) String() string {
	switch s {
	case StateAwaitingName:
		return "awaiting_name"
	case StateAwaitingBranch:
		return "awaiting_branch"
	case StateAwaitingPhone:
		return "awaiting_phone"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Outcome is how a session terminated.
type Outcome string

const (
	OutcomePending       Outcome = ""
	OutcomeVerified      Outcome = "verified"
	OutcomeMismatch      Outcome = "mismatch"
	OutcomeTimeout       Outcome = "timeout"
	OutcomeCancelled     Outcome = "cancelled"
	OutcomePersistFailed Outcome = "persist_failed"
)

// Collected holds the answers accepted so far.
type Collected struct {
	FirstName string
	Branch    string
	Phone     string
}
