package main

// Broadcaster is the single fan-out path: every accepted mutation reaches the
// room's websocket members and the polling log in one call, which is what
// keeps the two bindings observationally equivalent. The author is excluded
// on both sides, never echoed.
type Broadcaster struct {
	Hub *WSHub
	Log *EventLog
}

func NewBroadcaster(hub *WSHub, log *EventLog) *Broadcaster {
	return &Broadcaster{Hub: hub, Log: log}
}

func (b *Broadcaster) Fanout(roomID, authorID string, events []OutboundEvent) {
	for _, event := range events {
		b.Hub.Broadcast(roomID, authorID, EncodeOutbound(event))
		b.Log.Append(roomID, authorID, event)
	}
}
