package room

import "bingoroom/internal/protocol"

// Channel is one participant's open bidirectional connection to a
// room. The transport layer owns the underlying socket; the room only
// needs fire-and-forget delivery and a way to close.
type Channel interface {
	// Send queues an encoded frame for delivery. It must not block;
	// a channel that is closing or closed silently discards the frame.
	Send(data []byte)

	// Close tears the connection down. The transport reports the
	// closure back to the room through Detach.
	Close()

	// Open reports whether the channel can still accept frames.
	Open() bool
}

// Relay receives every message a room broadcasts, for fan-out beyond
// the room's own channel set (activity feeds, audit). Delivery is
// best-effort; a relay must never block the room loop.
type Relay interface {
	Publish(slug string, msg *protocol.ServerMessage)
}
