package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/broadcast"
)

func receive[T any](t *testing.T, sub broadcast.Subscriber[T]) (broadcast.Message[T], bool) {
	t.Helper()
	select {
	case msg, ok := <-sub.Receive():
		return msg, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return broadcast.Message[T]{}, false
	}
}

func TestMemoryBroadcaster_TopicFiltering(t *testing.T) {
	t.Parallel()
	b := broadcast.NewMemoryBroadcaster[int](4)
	defer b.Close()
	ctx := context.Background()

	all := b.Subscribe(ctx)
	onlyB := b.Subscribe(ctx, "b")

	require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Topic: "a", Data: 1}))
	require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Topic: "b", Data: 2}))

	msg, ok := receive(t, all)
	require.True(t, ok)
	assert.Equal(t, 1, msg.Data)
	msg, _ = receive(t, all)
	assert.Equal(t, 2, msg.Data)

	msg, _ = receive(t, onlyB)
	assert.Equal(t, "b", msg.Topic)
	assert.Empty(t, onlyB.Receive())
}

func TestMemoryBroadcaster_DropsWhenFull(t *testing.T) {
	t.Parallel()
	b := broadcast.NewMemoryBroadcaster[int](1)
	defer b.Close()
	ctx := context.Background()

	sub := b.Subscribe(ctx)
	require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 1}))
	require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 2}))

	assert.Equal(t, uint64(1), b.Dropped())
	msg, _ := receive(t, sub)
	assert.Equal(t, 1, msg.Data)
}

func TestMemoryBroadcaster_ContextCancelUnsubscribes(t *testing.T) {
	t.Parallel()
	b := broadcast.NewMemoryBroadcaster[int](1)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx)
	cancel()

	_, ok := receive(t, sub)
	assert.False(t, ok, "channel should be closed after cancel")
}

func TestMemoryBroadcaster_Close(t *testing.T) {
	t.Parallel()
	b := broadcast.NewMemoryBroadcaster[int](1)
	ctx := context.Background()
	sub := b.Subscribe(ctx)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, ok := receive(t, sub)
	assert.False(t, ok)
	assert.ErrorIs(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 1}), broadcast.ErrClosed)

	late := b.Subscribe(ctx)
	_, ok = receive(t, late)
	assert.False(t, ok)
}
