package redis_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/redis"
)

func newLocker(t *testing.T) (*redis.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewLocker(client, redis.Config{LockPrefix: "test:", LockRetryDelay: time.Millisecond}), mr
}

func TestLocker_TryAcquire(t *testing.T) {
	t.Parallel()
	locker, mr := newLocker(t)
	ctx := context.Background()

	release, ok, err := locker.TryAcquire(ctx, "store-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("test:store-1"))

	_, ok, err = locker.TryAcquire(ctx, "store-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second owner must not get the lock")

	release()
	assert.False(t, mr.Exists("test:store-1"))

	release2, ok, err := locker.TryAcquire(ctx, "store-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	release2()
}

func TestLocker_ReleaseDoesNotDropForeignLock(t *testing.T) {
	t.Parallel()
	locker, mr := newLocker(t)
	ctx := context.Background()

	release, ok, err := locker.TryAcquire(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// the lock expires and someone else takes it
	mr.FastForward(2 * time.Second)
	other, ok, err := locker.TryAcquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	release()
	assert.True(t, mr.Exists("test:k"), "stale owner must not release the new owner's lock")
	other()
}

func TestLocker_AcquireWaitsForRelease(t *testing.T) {
	t.Parallel()
	locker, _ := newLocker(t)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "shared", time.Minute)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInside))
}

func TestLocker_AcquireHonoursContext(t *testing.T) {
	t.Parallel()
	locker, _ := newLocker(t)

	release, err := locker.Acquire(context.Background(), "busy", time.Minute)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "busy", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	check := redis.Healthcheck(client)
	require.NoError(t, check(context.Background()))

	mr.Close()
	assert.ErrorIs(t, check(context.Background()), redis.ErrHealthcheckFailed)
}

func TestConnect(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)

	client, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  "redis://" + mr.Addr() + "/0",
		RetryAttempts:  1,
		ConnectTimeout: time.Second,
	})
	require.NoError(t, err)
	_ = client.Close()

	_, err = redis.Connect(context.Background(), redis.Config{ConnectionURL: "://bad", RetryAttempts: 1, ConnectTimeout: time.Second})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)

	_, err = redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
}
