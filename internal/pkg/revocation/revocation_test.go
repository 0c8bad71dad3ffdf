package revocation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis implements the two commands the list uses
type fakeRedis struct {
	mu       sync.Mutex
	keys     map[string]time.Duration
	failWith error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{keys: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, _ interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStatusCmd(ctx)
	if f.failWith != nil {
		cmd.SetErr(f.failWith)
		return cmd
	}
	f.keys[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	if f.failWith != nil {
		cmd.SetErr(f.failWith)
		return cmd
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisList(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	list := NewRedisList(fake, time.Second)

	if err := list.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if ttl := fake.keys["daycare:revoked:jti-1"]; ttl != time.Minute {
		t.Errorf("stored ttl = %v", ttl)
	}

	revoked, err := list.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Errorf("IsRevoked(jti-1) = %v, %v", revoked, err)
	}
	revoked, err = list.IsRevoked(ctx, "jti-2")
	if err != nil || revoked {
		t.Errorf("IsRevoked(jti-2) = %v, %v", revoked, err)
	}

	if err := list.Revoke(ctx, "expired", 0); err != nil {
		t.Errorf("zero ttl should be a no-op, got %v", err)
	}
	if _, ok := fake.keys["daycare:revoked:expired"]; ok {
		t.Error("zero ttl should not be stored")
	}
}

func TestRedisListErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.failWith = errors.New("connection refused")
	list := NewRedisList(fake, time.Second)

	if _, err := list.IsRevoked(context.Background(), "jti"); err == nil {
		t.Fatal("expected an error from a failing redis")
	}
}

func TestMemoryList(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	list := NewMemoryList()
	list.now = func() time.Time { return now }

	_ = list.Revoke(ctx, "a", time.Minute)
	if ok, _ := list.IsRevoked(ctx, "a"); !ok {
		t.Fatal("a should be revoked")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := list.IsRevoked(ctx, "a"); ok {
		t.Error("a should have aged out")
	}
}
