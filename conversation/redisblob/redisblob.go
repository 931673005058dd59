// Package redisblob is an example conversation-state BlobStore backed by
// Redis. The core conversation package deliberately has no notion of where
// blobs are persisted between turns; this package gives that extension
// point a concrete, exercised implementation for applications that want a
// shared, networked store instead of a local session cookie or database row.
package redisblob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists conversation-state blobs keyed by conversation id.
type Store interface {
	// Load returns the blob last saved for id, or nil if none exists.
	Load(ctx context.Context, id string) ([]byte, error)
	// Save stores blob under id, replacing any prior value.
	Save(ctx context.Context, id string, blob []byte) error
	// Delete removes the blob stored under id, if any.
	Delete(ctx context.Context, id string) error
}

// Config configures a Store.
type Config struct {
	// Client is the Redis client used for all operations. Required.
	Client *redis.Client
	// KeyPrefix namespaces conversation ids in the keyspace, useful when
	// multiple applications share one Redis instance. Defaults to
	// "springai-actions:conversation:".
	KeyPrefix string
	// TTL expires a conversation's blob after the given duration of
	// inactivity. Zero disables expiry.
	TTL time.Duration
}

// store implements Store against a single Redis client.
type store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New builds a Store from cfg.
func New(cfg Config) (Store, error) {
	if cfg.Client == nil {
		return nil, errors.New("redisblob: client is required")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "springai-actions:conversation:"
	}
	return &store{client: cfg.Client, prefix: prefix, ttl: cfg.TTL}, nil
}

func (s *store) key(id string) string {
	return s.prefix + id
}

func (s *store) Load(ctx context.Context, id string) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redisblob: load %q: %w", id, err)
	}
	return blob, nil
}

func (s *store) Save(ctx context.Context, id string, blob []byte) error {
	if err := s.client.Set(ctx, s.key(id), blob, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisblob: save %q: %w", id, err)
	}
	return nil
}

func (s *store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redisblob: delete %q: %w", id, err)
	}
	return nil
}
