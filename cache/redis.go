package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces manifest entries in a shared Redis instance.
const keyPrefix = "trellis:discovery:manifest:"

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// TTL is how long an entry lives without being refreshed. Zero keeps
	// entries until their package is rediscovered or invalidated.
	TTL time.Duration
}

// Redis implements Cache on a shared Redis instance, so several nodes
// running the plugin manager reuse each other's discovery results.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

type redisEntry struct {
	Fingerprint string          `json:"fingerprint"`
	Manifest    json.RawMessage `json:"manifest"`
}

// NewRedis creates a Redis-backed cache and verifies the connection.
func NewRedis(opts RedisOptions) (*Redis, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: client, ttl: opts.TTL}, nil
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, pkg, fingerprint string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+pkg).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var e redisEntry
	if err := json.Unmarshal(data, &e); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = r.client.Del(ctx, keyPrefix+pkg).Err()
		return nil, false, nil
	}
	if e.Fingerprint != fingerprint {
		return nil, false, nil
	}
	return e.Manifest, true, nil
}

// Put implements Cache.
func (r *Redis) Put(ctx context.Context, pkg, fingerprint string, manifest []byte) error {
	data, err := json.Marshal(redisEntry{Fingerprint: fingerprint, Manifest: manifest})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+pkg, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Invalidate implements Cache.
func (r *Redis) Invalidate(ctx context.Context, pkg string) error {
	if err := r.client.Del(ctx, keyPrefix+pkg).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

// Close implements Cache.
func (r *Redis) Close() error {
	return r.client.Close()
}
