package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/gatekeeper/internal/model"
)

// Session is one user's verification dialogue. All fields except ID, UserID,
// ChannelID and Deadline are guarded by mu.
type Session struct {
	mu sync.Mutex

	ID        uuid.UUID
	UserID    string
	ChannelID string
	Deadline  time.Time

	GuildID   string
	TriggerID string
	State     model.SessionState
	Collected model.Collected
	Outcome   model.Outcome
}

// Origin carries where a session was requested from.
type Origin struct {
	GuildID   string
	MessageID string
}

// Transition is the result of feeding one input to a session.
type Transition struct {
	Next    model.SessionState
	Reply   string
	Outcome model.Outcome
	// Err is a *model.MismatchError when validation failed.
	Err error
}

// Terminal reports whether the transition ends the session.
func (t Transition) Terminal() bool {
	return t.Outcome != model.OutcomePending
}

type stepFunc func(s *Session, roster model.Roster, input string) Transition

var steps = map[model.SessionState]stepFunc{
	model.StateAwaitingName:   (*Session).acceptName,
	model.StateAwaitingBranch: (*Session).acceptBranch,
	model.StateAwaitingPhone:  (*Session).acceptPhone,
}

func newSession(userID, channelID string, origin Origin, deadline time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		ChannelID: channelID,
		GuildID:   origin.GuildID,
		TriggerID: origin.MessageID,
		Deadline:  deadline,
		State:     model.StateAwaitingName,
	}
}

// Advance feeds one reply to the session and applies the resulting state.
// A session in StateDone ignores input. Caller must hold mu.
func (s *Session) Advance(roster model.Roster, input string) Transition {
	step, ok := steps[s.State]
	if !ok {
		return Transition{Next: s.State, Outcome: s.Outcome}
	}

	t := step(s, roster, input)
	s.State = t.Next
	if t.Terminal() {
		s.Outcome = t.Outcome
	}
	return t
}

// Expired reports whether the deadline has passed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.Deadline)
}

func (s *Session) acceptName(roster model.Roster, input string) Transition {
	name := model.NormalizeName(input)
	if len(roster.FindByName(name)) == 0 {
		return Transition{
			Next:    model.StateDone,
			Reply:   ReplyNameMismatch,
			Outcome: model.OutcomeMismatch,
			Err:     &model.MismatchError{Reason: "name not found"},
		}
	}

	s.Collected.FirstName = name
	return Transition{Next: model.StateAwaitingBranch, Reply: PromptBranch}
}

func (s *Session) acceptBranch(roster model.Roster, input string) Transition {
	branch := model.NormalizeBranch(input)
	for _, e := range roster.FindByName(s.Collected.FirstName) {
		if e.Branch == branch {
			s.Collected.Branch = branch
			return Transition{Next: model.StateAwaitingPhone, Reply: PromptPhone}
		}
	}

	return Transition{
		Next:    model.StateDone,
		Reply:   ReplyBranchMismatch,
		Outcome: model.OutcomeMismatch,
		Err:     &model.MismatchError{Reason: "branch does not match name"},
	}
}

// acceptPhone keeps the session open on mismatch, unlike the name and branch steps.
func (s *Session) acceptPhone(roster model.Roster, input string) Transition {
	phone := model.NormalizePhone(input)
	for _, e := range roster.FindByName(s.Collected.FirstName) {
		if e.Branch == s.Collected.Branch && e.Phone == phone {
			s.Collected.Phone = phone
			return Transition{Next: model.StateDone, Reply: ReplyVerified, Outcome: model.OutcomeVerified}
		}
	}

	return Transition{
		Next:  model.StateAwaitingPhone,
		Reply: ReplyPhoneMismatch,
		Err:   &model.MismatchError{Reason: "phone does not match"},
	}
}
