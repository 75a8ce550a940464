package model

import "context"

// Ledger is the durable set of verified user identifiers.
type Ledger interface {
	Contains(userID string) bool
	Add(ctx context.Context, userID string) error
	Len() int
}
