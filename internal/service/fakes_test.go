package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dtroode/gatekeeper/internal/model"
)

type fakeRoster map[string][]model.RosterEntry

func newFakeRoster(entries ...model.RosterEntry) fakeRoster {
	r := fakeRoster{}
	for _, e := range entries {
		e.FirstName = model.NormalizeName(e.FirstName)
		e.Branch = model.NormalizeBranch(e.Branch)
		e.Phone = model.NormalizePhone(e.Phone)
		r[e.FirstName] = append(r[e.FirstName], e)
	}
	return r
}

func (r fakeRoster) FindByName(name string) []model.RosterEntry {
	return r[model.NormalizeName(name)]
}

func (r fakeRoster) Len() int {
	n := 0
	for _, es := range r {
		n += len(es)
	}
	return n
}

var errDiskFull = errors.New("disk full")

type fakeLedger struct {
	mu   sync.Mutex
	ids  map[string]struct{}
	fail bool
	adds int
}

func newFakeLedger(ids ...string) *fakeLedger {
	l := &fakeLedger{ids: make(map[string]struct{})}
	for _, id := range ids {
		l.ids[id] = struct{}{}
	}
	return l
}

func (l *fakeLedger) Contains(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.ids[userID]
	return ok
}

func (l *fakeLedger) Add(_ context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.adds++
	if l.fail {
		return errDiskFull
	}
	l.ids[userID] = struct{}{}
	return nil
}

func (l *fakeLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.ids)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func sampleRoster() fakeRoster {
	return newFakeRoster(
		model.RosterEntry{FirstName: "Ann", Branch: "CSE", Phone: "9999999123"},
		model.RosterEntry{FirstName: "Ann", Branch: "MECH", Phone: "8888888456"},
		model.RosterEntry{FirstName: "Raj", Branch: "ECE", Phone: "7777777001"},
	)
}
