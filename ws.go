package main

import (
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

const sendBufferSize = 32

// WSHub tracks the send channel of every websocket member per room. Sends are
// non-blocking: a receiver that cannot keep up drops frames instead of
// stalling the dispatcher.
type WSHub struct {
	rooms map[string]map[string]chan []byte
	lock  sync.RWMutex
}

func NewWSHub() *WSHub {
	return &WSHub{rooms: make(map[string]map[string]chan []byte)}
}

// Join registers the channel for the player, replacing and closing any
// channel left by a previous connection for the same player id.
func (h *WSHub) Join(roomID, playerID string, ch chan []byte) {
	h.lock.Lock()
	defer h.lock.Unlock()
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]chan []byte)
		h.rooms[roomID] = members
	}
	if old, ok := members[playerID]; ok && old != ch {
		close(old)
	}
	members[playerID] = ch
}

// Detach removes the player only if ch is still the registered channel, so a
// stale connection dying after a reconnect cannot evict the new one. The
// channel stays open; the connection keeps using it when switching rooms.
func (h *WSHub) Detach(roomID, playerID string, ch chan []byte) bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	members, ok := h.rooms[roomID]
	if !ok {
		return false
	}
	current, ok := members[playerID]
	if !ok || current != ch {
		return false
	}
	delete(members, playerID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
	return true
}

// Leave is Detach plus closing the channel, for a connection that is done.
func (h *WSHub) Leave(roomID, playerID string, ch chan []byte) bool {
	if !h.Detach(roomID, playerID, ch) {
		return false
	}
	close(ch)
	return true
}

func (h *WSHub) Broadcast(roomID, exceptPlayerID string, frame []byte) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	for playerID, ch := range h.rooms[roomID] {
		if playerID == exceptPlayerID {
			continue
		}
		select {
		case ch <- frame:
		default:
			GetRoomPlayerLogger(roomID, playerID).DroppedFrame()
		}
	}
}

func (h *WSHub) DropRoom(roomID string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for _, ch := range h.rooms[roomID] {
		close(ch)
	}
	delete(h.rooms, roomID)
}

func (h HTTPHandler) websocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			LogErrorWhileUpgradingHTTP(err)
			return
		}
		go h.serveConn(conn, token)
	}
}

// serveConn runs the read loop of one duplex connection. A companion writer
// goroutine drains the send channel; closing that channel (via hub removal)
// closes the connection.
func (h HTTPHandler) serveConn(conn net.Conn, token string) {
	send := make(chan []byte, sendBufferSize)
	go func() {
		defer conn.Close()
		for frame := range send {
			if err := wsutil.WriteServerText(conn, frame); err != nil {
				return
			}
		}
	}()

	var roomID, playerID string
	joined := false

	join := func(m JoinRoomEvent) {
		result := h.Gateway.Dispatch(m.PlayerID, m)
		if result.JoinedRoom != "" {
			if joined && (roomID != result.JoinedRoom || playerID != m.PlayerID) {
				h.Broadcaster.Hub.Detach(roomID, playerID, send)
			}
			roomID = result.JoinedRoom
			playerID = m.PlayerID
			joined = true
			h.Broadcaster.Hub.Join(roomID, playerID, send)
		}
		h.deliver(m.PlayerID, result, send)
	}

	// A session token stands in for an explicit join_room event on reconnect.
	// The registry entry may already be gone; the name claim covers that.
	if token != "" {
		if tokenRoom, tokenPlayer, tokenName, ok := h.Sessions.Parse(token); ok {
			name := tokenName
			if player, found := h.Registry.Player(tokenRoom, tokenPlayer); found {
				name = player.Name
			}
			join(JoinRoomEvent{RoomID: tokenRoom, PlayerID: tokenPlayer, PlayerName: name})
		}
	}

readLoop:
	for {
		frame, err := wsutil.ReadClientText(conn)
		if err != nil {
			break
		}
		envelope := UnmarshalJSON[Envelope](frame)
		event, err := DecodeInbound(envelope.Type, envelope.Data)
		if err != nil {
			continue
		}
		switch m := event.(type) {
		case JoinRoomEvent:
			join(m)
		case LeaveRoomEvent:
			break readLoop
		default:
			if !joined {
				continue
			}
			h.deliver(playerID, h.Gateway.Dispatch(playerID, event), send)
		}
	}

	if joined {
		if h.Broadcaster.Hub.Leave(roomID, playerID, send) {
			GetRoomPlayerLogger(roomID, playerID).Disconnected()
			h.deliver(playerID, h.Gateway.Dispatch(playerID, LeaveRoomEvent{}), nil)
		}
	} else {
		close(send)
	}
}
