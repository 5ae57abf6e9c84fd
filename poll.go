package main

import (
	"encoding/json"
	"sync"
	"time"
)

const maxEventsPerRoom = 100

// LoggedEvent is one entry of a room's polling log, in the same type/data
// envelope the websocket binding writes to the wire.
type LoggedEvent struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	PlayerID  string          `json:"playerId"`
	Timestamp int64           `json:"timestamp"`
}

// EventLog is the polling binding's outbound side: a per-room append-only log
// with monotonically increasing ids, capped to the most recent entries.
type EventLog struct {
	rooms  map[string][]LoggedEvent
	nextID map[string]int64
	lock   sync.RWMutex
}

func NewEventLog() *EventLog {
	return &EventLog{
		rooms:  make(map[string][]LoggedEvent),
		nextID: make(map[string]int64),
	}
}

func (l *EventLog) Append(roomID, authorID string, event OutboundEvent) {
	data, _ := json.Marshal(event)
	l.lock.Lock()
	defer l.lock.Unlock()
	id := l.nextID[roomID] + 1
	l.nextID[roomID] = id
	events := append(l.rooms[roomID], LoggedEvent{
		ID:        id,
		Type:      event.EventType(),
		Data:      data,
		PlayerID:  authorID,
		Timestamp: time.Now().UnixMilli(),
	})
	if len(events) > maxEventsPerRoom {
		events = events[len(events)-maxEventsPerRoom:]
	}
	l.rooms[roomID] = events
}

// After returns all events with id > lastEventID, excluding those authored by
// the polling player. The polling client advances its cursor to the highest
// id it receives, so exclusion must not reorder ids.
func (l *EventLog) After(roomID, requesterID string, lastEventID int64) []LoggedEvent {
	l.lock.RLock()
	defer l.lock.RUnlock()
	out := make([]LoggedEvent, 0)
	for _, event := range l.rooms[roomID] {
		if event.ID > lastEventID && event.PlayerID != requesterID {
			out = append(out, event)
		}
	}
	return out
}

func (l *EventLog) Drop(roomID string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	delete(l.rooms, roomID)
	delete(l.nextID, roomID)
}
