package model

import (
	"context"
	"io"
)

// Storage is a key-addressed blob store used for the ledger snapshot and,
// optionally, the roster source.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	// Download returns ErrNotFound when the key is absent.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}
