package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.Storage = (*Client)(nil)

// Client stores objects as files under a base directory.
type Client struct {
	dir string
}

// NewClient creates the base directory if needed.
func NewClient(dir string) (*Client, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &Client{dir: dir}, nil
}

func (c *Client) path(key string) string {
	return filepath.Join(c.dir, filepath.FromSlash(filepath.Clean("/"+key)))
}

// Upload replaces the object atomically: data goes to a temp file in the
// same directory which is then renamed over the target.
func (c *Client) Upload(_ context.Context, key string, reader io.Reader) error {
	target := c.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close object: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to replace object: %w", err)
	}
	return nil
}

// Download opens the object for reading.
func (c *Client) Download(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return f, nil
}

// Exists checks if the object file exists.
func (c *Client) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}
