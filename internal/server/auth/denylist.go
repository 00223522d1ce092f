package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token ids until the token would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type MemoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{revoked: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, exp := range d.revoked {
		if !now.Before(exp) {
			delete(d.revoked, id)
		}
	}
	if now.Before(until) {
		d.revoked[jti] = until
	}
	return nil
}

func (d *MemoryDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.revoked[jti]
	return ok && d.now().Before(exp), nil
}

func (d *MemoryDenylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.revoked)
}

const redisKeyPrefix = "feed:revoked:"

// RedisDenylist stores one key per revoked token and lets Redis expire it.
type RedisDenylist struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisDenylist(client redis.UniversalClient) *RedisDenylist {
	return &RedisDenylist{client: client, now: time.Now}
}

// NewRedisDenylistFromURL parses a redis:// URL and returns the denylist
// together with the client so the caller can close it.
func NewRedisDenylistFromURL(url string) (*RedisDenylist, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	return NewRedisDenylist(client), client, nil
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, redisKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, redisKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}
