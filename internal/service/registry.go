package service

import (
	"sync"
	"time"

	"github.com/dtroode/gatekeeper/internal/model"
)

// Registry tracks at most one live session per user.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ledger   model.Ledger
	timeout  time.Duration
	now      func() time.Time
}

func NewRegistry(ledger model.Ledger, timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = model.DefaultSessionTimeout
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ledger:   ledger,
		timeout:  timeout,
		now:      time.Now,
	}
}

// TryStart creates a session for userID unless the user is already verified
// or already has a live session.
func (r *Registry) TryStart(userID, channelID string, origin Origin) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ledger.Contains(userID) {
		return nil, model.ErrAlreadyVerified
	}
	if _, ok := r.sessions[userID]; ok {
		return nil, model.ErrAlreadyActive
	}

	s := newSession(userID, channelID, origin, r.now().Add(r.timeout))
	r.sessions[userID] = s
	return s, nil
}

// Get returns the live session of userID.
func (r *Registry) Get(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	return s, ok
}

// End removes the session of userID unconditionally.
func (r *Registry) End(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
}

// Expired returns the live sessions whose deadline passed at now.
func (r *Registry) Expired(now time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Session
	for _, s := range r.sessions {
		if s.Expired(now) {
			out = append(out, s)
		}
	}
	return out
}

// All returns every live session.
func (r *Registry) All() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}
