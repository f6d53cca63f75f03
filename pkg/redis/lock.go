package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another owner is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a mutual-exclusion lock shared by every process connected to the
// same Redis server. Locks are SET NX PX keys holding a random token; they
// expire after ttl even if the owner never releases them.
type Locker struct {
	client     redis.UniversalClient
	prefix     string
	retryDelay time.Duration
}

// NewLocker creates a Locker. Empty prefix and zero retry delay fall back to
// "lock:" and 25ms.
func NewLocker(client redis.UniversalClient, cfg Config) *Locker {
	if client == nil {
		panic("redis: locker requires a client")
	}
	l := &Locker{client: client, prefix: cfg.LockPrefix, retryDelay: cfg.LockRetryDelay}
	if l.prefix == "" {
		l.prefix = "lock:"
	}
	if l.retryDelay <= 0 {
		l.retryDelay = 25 * time.Millisecond
	}
	return l
}

// Acquire blocks until the lock for key is obtained or ctx is done.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	for {
		release, ok, err := l.TryAcquire(ctx, key, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return release, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock for %s: %w", key, ctx.Err())
		case <-time.After(l.retryDelay):
		}
	}
}

// TryAcquire makes a single attempt. It reports false when another owner
// holds the lock.
func (l *Locker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	k := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, k, token, ttl).Result()
	if err != nil {
		return nil, false, errors.Join(ErrLockFailed, err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// the caller's context may already be cancelled
			_ = releaseScript.Run(context.Background(), l.client, []string{k}, token).Err()
		})
	}
	return release, true, nil
}
