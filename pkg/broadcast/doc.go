// Package broadcast provides generic in-process publish/subscribe.
//
//	b := broadcast.NewMemoryBroadcaster[Event](64)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx, "subscription.expired")
//	go func() {
//		for msg := range sub.Receive() {
//			handle(msg.Data)
//		}
//	}()
//
//	_ = b.Broadcast(ctx, broadcast.Message[Event]{Topic: "subscription.expired", Data: ev})
//
// Broadcast never blocks: a subscriber with a full buffer misses the
// message and MemoryBroadcaster.Dropped is incremented.
package broadcast
