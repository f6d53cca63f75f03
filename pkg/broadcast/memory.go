package broadcast

import (
	"context"
	"sync"
	"sync/atomic"
)

// MemoryBroadcaster is an in-process Broadcaster. A subscriber whose buffer
// is full misses the message; the drop is counted and the subscriber stays
// registered.
type MemoryBroadcaster[T any] struct {
	subscribers map[*subscriber[T]]struct{}
	bufferSize  int
	closed      bool
	dropped     atomic.Uint64
	done        chan struct{}
	mu          sync.RWMutex
	wg          sync.WaitGroup
}

// NewMemoryBroadcaster creates a broadcaster whose subscribers buffer up to
// bufferSize messages (minimum 1).
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	return &MemoryBroadcaster[T]{
		subscribers: make(map[*subscriber[T]]struct{}),
		bufferSize:  max(bufferSize, 1),
		done:        make(chan struct{}),
	}
}

func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context, topics ...string) Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newSubscriber[T](b.bufferSize, topics)
	if b.closed {
		_ = sub.Close()
		return sub
	}
	b.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			select {
			case <-ctx.Done():
				b.unsubscribe(sub)
			case <-b.done:
			}
		}()
	}
	return sub
}

// Broadcast delivers msg to every subscriber of msg.Topic.
// It returns ErrClosed after Close.
func (b *MemoryBroadcaster[T]) Broadcast(_ context.Context, msg Message[T]) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}
	for sub := range b.subscribers {
		if sub.wants(msg.Topic) && !sub.send(msg) {
			b.dropped.Add(1)
		}
	}
	return nil
}

// Dropped returns how many deliveries were skipped because of full buffers.
func (b *MemoryBroadcaster[T]) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber. It is safe to call more than once.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	for sub := range b.subscribers {
		_ = sub.Close()
	}
	clear(b.subscribers)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *MemoryBroadcaster[T]) unsubscribe(sub *subscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	_ = sub.Close()
}
