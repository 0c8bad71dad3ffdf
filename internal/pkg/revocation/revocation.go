// Package revocation tracks access tokens that were revoked before expiry.
// Entries are keyed by the token's jti and live as long as the token would.
package revocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brightnest/daycare/internal/pkg/breaker"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// List records revoked access token ids
type List interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// redisClient is the subset of the go-redis client used here
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisList stores revoked ids in Redis behind a circuit breaker
type RedisList struct {
	client  redisClient
	cb      *gobreaker.CircuitBreaker
	prefix  string
	timeout time.Duration
}

// NewRedisList creates a Redis backed revocation list
func NewRedisList(client redisClient, timeout time.Duration) *RedisList {
	return &RedisList{
		client:  client,
		cb:      breaker.NewCircuitBreaker(breaker.Redis),
		prefix:  "daycare:revoked:",
		timeout: timeout,
	}
}

// Revoke stores jti until ttl elapses. Expired tokens need no entry.
func (l *RedisList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	_, err := l.cb.Execute(func() (interface{}, error) {
		return nil, l.client.Set(ctx, l.prefix+jti, 1, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked
func (l *RedisList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	n, err := l.cb.Execute(func() (interface{}, error) {
		return l.client.Exists(ctx, l.prefix+jti).Result()
	})
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n.(int64) > 0, nil
}

// MemoryList keeps revoked ids in process memory
type MemoryList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryList creates an empty in-memory revocation list
func NewMemoryList() *MemoryList {
	return &MemoryList{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke stores jti until ttl elapses
func (l *MemoryList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, until := range l.entries {
		if !now.Before(until) {
			delete(l.entries, id)
		}
	}
	l.entries[jti] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether jti was revoked and has not aged out
func (l *MemoryList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	until, ok := l.entries[jti]
	return ok && l.now().Before(until), nil
}
