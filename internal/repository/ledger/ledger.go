package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.Ledger = (*Ledger)(nil)

// Ledger is an append-only set of verified user ids mirrored to a storage
// object. Every insertion rewrites the whole object before Add returns.
// writeMu serializes writers; mu guards the in-memory set and is never held
// across storage calls, so readers are not blocked by a slow write.
type Ledger struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	ids     map[string]struct{}
	order   []string
	storage model.Storage
	key     string
}

// Open loads the ledger stored under key. An absent object yields an empty ledger.
func Open(ctx context.Context, storage model.Storage, key string) (*Ledger, error) {
	l := &Ledger{
		ids:     make(map[string]struct{}),
		storage: storage,
		key:     key,
	}

	exists, err := storage.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: check ledger %s: %v", model.ErrDataLoad, key, err)
	}
	if !exists {
		return l, nil
	}

	rc, err := storage.Download(ctx, key)
	if errors.Is(err, model.ErrNotFound) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: download ledger %s: %v", model.ErrDataLoad, key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read ledger %s: %v", model.ErrDataLoad, key, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return l, nil
	}

	var stored []string
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: decode ledger %s: %v", model.ErrDataLoad, key, err)
	}

	for _, id := range stored {
		if _, ok := l.ids[id]; ok || id == "" {
			continue
		}
		l.ids[id] = struct{}{}
		l.order = append(l.order, id)
	}

	return l, nil
}

// Contains reports whether userID completed verification.
func (l *Ledger) Contains(userID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.ids[userID]
	return ok
}

// Add records userID and persists the ledger. Adding a present id is a no-op.
// The id becomes visible only after the write succeeds; on failure ErrPersist
// is returned and the ledger is unchanged.
func (l *Ledger) Add(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("empty user id")
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	l.mu.RLock()
	_, ok := l.ids[userID]
	next := make([]string, len(l.order), len(l.order)+1)
	copy(next, l.order)
	l.mu.RUnlock()
	if ok {
		return nil
	}
	next = append(next, userID)

	if err := l.persist(ctx, next); err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersist, err)
	}

	l.mu.Lock()
	l.ids[userID] = struct{}{}
	l.order = next
	l.mu.Unlock()

	return nil
}

// Len returns the number of verified ids.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.order)
}

// IDs returns the verified ids in insertion order.
func (l *Ledger) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// persist must be called with writeMu held.
func (l *Ledger) persist(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	if err := l.storage.Upload(ctx, l.key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload ledger %s: %w", l.key, err)
	}

	return nil
}
