package localstorage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStorage is the remote-key-value-store variant: per-key GET/SET over
// a github.com/redis/go-redis/v9 client, grounded directly on
// internal/redis/client.go's NewClient — same dial/read/write timeout
// budget, same pool sizing, same startup Ping-with-diagnostics — adapted
// from a connection-pooling helper for the channel/remux repositories into
// a general-purpose Storage backend.
type RedisStorage struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

// NewRedisStorage dials addr/db and wraps it as a Storage, namespacing
// every key under prefix (e.g. "aleph:").
func NewRedisStorage(addr string, db int, prefix string, log *zap.Logger) *RedisStorage {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("localstorage.redis")

	opts := &redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	}
	client := redis.NewClient(opts)

	log.Info("redis storage client initialized", zap.String("addr", addr), zap.Int("db", db))

	return &RedisStorage{client: client, prefix: prefix, log: log}
}

func (s *RedisStorage) key(k string) string { return s.prefix + k }

// Load pings the server with a short timeout and logs connection
// diagnostics, mirroring Client.Ping in the teacher repo. A failed ping is
// logged, not returned as an error — Get/Set surface connectivity failures
// directly when they occur.
func (s *RedisStorage) Load(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := s.client.Ping(pingCtx).Err()
	elapsed := time.Since(start)

	if err != nil {
		s.log.Warn("connection check failed", zap.Error(err), zap.Duration("ping_rtt", elapsed))
		return nil
	}
	s.log.Info("connection established", zap.Duration("ping_rtt", elapsed))
	return nil
}

// Get returns the JSON-decoded value stored under key, or def if absent.
func (s *RedisStorage) Get(ctx context.Context, key string, def any) (any, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return def, nil
		}
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal key %q: %w", key, err)
	}
	return out, nil
}

// Set JSON-encodes value and SETs it under key with no expiry.
func (s *RedisStorage) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal key %q: %w", key, err)
	}
	if err := s.client.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStorage) Close() error { return s.client.Close() }
