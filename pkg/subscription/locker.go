package subscription

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LocalLocker is a keyed mutex for a single process. The ttl argument is
// ignored: a lock is held until released.
type LocalLocker struct {
	mu   sync.Mutex
	keys map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{keys: make(map[string]*keyLock)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (func(), error) {
	entry := l.ref(key)
	select {
	case entry.sem <- struct{}{}:
		return l.releaser(key, entry), nil
	case <-ctx.Done():
		l.unref(key, entry)
		return nil, fmt.Errorf("acquire lock for %s: %w", key, ctx.Err())
	}
}

// TryAcquire takes the lock only if it is free.
func (l *LocalLocker) TryAcquire(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	entry := l.ref(key)
	select {
	case entry.sem <- struct{}{}:
		return l.releaser(key, entry), true, nil
	default:
		l.unref(key, entry)
		return nil, false, nil
	}
}

func (l *LocalLocker) releaser(key string, entry *keyLock) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.unref(key, entry)
		})
	}
}

func (l *LocalLocker) ref(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.keys[key]
	if !ok {
		entry = &keyLock{sem: make(chan struct{}, 1)}
		l.keys[key] = entry
	}
	entry.refs++
	return entry
}

func (l *LocalLocker) unref(key string, entry *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.keys, key)
	}
}

func storeLockKey(storeID uuid.UUID) string {
	return "subscription:store:" + storeID.String()
}
