package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/gatekeeper/internal/model"
)

// redisAPI is the subset of *redis.Client used by Client.
type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

var _ model.Storage = (*Client)(nil)

// Client stores each object as a plain string value under a prefixed key.
type Client struct {
	api    redisAPI
	prefix string
}

// Connect parses url, dials and pings the server.
func Connect(ctx context.Context, url string, dialTimeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.DialTimeout = dialTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// NewClient wraps a connected go-redis client. Keys are stored as prefix+key.
func NewClient(api redisAPI, prefix string) *Client {
	return &Client{api: api, prefix: prefix}
}

// Upload stores the whole reader content under key with no expiry.
// SET replaces the value atomically.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}

	if err := c.api.Set(ctx, c.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Download returns model.ErrNotFound when the key is absent.
func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := c.api.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Exists checks if the key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.api.Exists(ctx, c.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key: %w", err)
	}
	return n > 0, nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.api.Ping(ctx).Err()
}
