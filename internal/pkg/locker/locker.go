// Package locker provides a short-lived mutual exclusion lease keyed by
// string. The approval path holds a per-resource lease across its
// conflict re-check so two staff decisions cannot interleave.
package locker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTimeout is returned when the lease could not be acquired within
// the caller's wait budget
var ErrTimeout = errors.New("locker: acquire timed out")

const retryInterval = 50 * time.Millisecond

// Locker hands out exclusive leases. The returned release function is
// safe to call once; the TTL bounds the damage of a crashed holder.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl, wait time.Duration) (release func(), err error)
}

// ============================================================
// Redis Locker
// ============================================================

// unlockScript deletes the key only when it still holds our token, so
// an expired lease re-acquired by someone else is never released here.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// RedisLocker implements Locker on a shared Redis instance
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker creates a Redis-backed locker. Keys are namespaced
// under the given prefix.
func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = "lock"
	}
	return &RedisLocker{client: client, prefix: prefix}
}

// Acquire takes the lease via SET NX with a TTL, retrying until wait
// elapses
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl, wait time.Duration) (func(), error) {
	fullKey := l.prefix + ":" + key
	token := uuid.New().String()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			var once sync.Once
			release := func() {
				once.Do(func() {
					releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					l.client.Eval(releaseCtx, unlockScript, []string{fullKey}, token)
				})
			}
			return release, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// ============================================================
// In-Memory Locker
// ============================================================

// MemoryLocker implements Locker inside one process. It is the fallback
// when no Redis address is configured (single-instance deployments and
// tests).
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]time.Time // key -> expiry
}

// NewMemoryLocker creates an in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{leases: make(map[string]time.Time)}
}

// Acquire takes the lease, honoring TTL expiry of stale holders
func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl, wait time.Duration) (func(), error) {
	deadline := time.Now().Add(wait)
	for {
		if l.tryAcquire(key, ttl) {
			var once sync.Once
			release := func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.leases, key)
					l.mu.Unlock()
				})
			}
			return release, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func (l *MemoryLocker) tryAcquire(key string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if expiry, held := l.leases[key]; held && expiry.After(now) {
		return false
	}
	l.leases[key] = now.Add(ttl)
	return true
}
