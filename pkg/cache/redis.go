// Package cache holds the Redis-backed stores: the item read cache, the
// per-org message center and the session store's connection.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/titleguard/pkg/config"
)

const (
	defaultPoolSize = 10
	connectTimeout  = 2 * time.Second
)

// RedisClient wraps the shared go-redis client.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects to cfg.RedisURL and fails fast when the server does
// not answer a ping within connectTimeout.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*RedisClient, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect %s: %w", opts.Addr, err)
	}
	return &RedisClient{client: rdb}, nil
}

func clientOptions(cfg *config.Config) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.RedisPoolSize
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	opts.MinIdleConns = min(max(cfg.RedisMinIdleConns, 0), opts.PoolSize)
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = opts.ReadTimeout + time.Second
	return opts, nil
}

// Ping reports whether Redis is reachable. Used by the health check.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client exposes the go-redis client to the stores built on it.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
