// Package broadcast fans typed messages out to in-process subscribers.
//
// Delivery never blocks the sender: when a subscriber's buffer is full the
// message is discarded for that subscriber and counted in Dropped. A
// subscription ends when its context is cancelled, when Close is called on
// it, or when the broadcaster is closed.
//
//	b := broadcast.NewMemoryBroadcaster[session.Event](8)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	for msg := range sub.Receive() {
//		handle(msg.Data)
//	}
package broadcast
