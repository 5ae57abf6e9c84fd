package main

import (
	"sync"
	"time"
)

// RoomEvents is a fan-out batch addressed to one room, excluding the author.
type RoomEvents struct {
	RoomID string
	Events []OutboundEvent
}

type DispatchResult struct {
	// JoinedRoom is set when a join_room event was accepted.
	JoinedRoom string
	ToSender   []OutboundEvent
	Broadcasts []RoomEvents
}

// Gateway is the single dispatch path shared by both transport bindings. One
// mutex serializes all inbound events, so registry mutations run to
// completion in acceptance order and broadcast order matches it.
type Gateway struct {
	registry    *RoomRegistry
	playerRooms map[string]string
	lock        sync.Mutex
}

func NewGateway(registry *RoomRegistry) *Gateway {
	return &Gateway{
		registry:    registry,
		playerRooms: make(map[string]string),
	}
}

// Dispatch processes one inbound event on behalf of playerID. Unknown rooms,
// pieces and lock conflicts all degrade to an empty result: a stale client
// can never corrupt another player's session.
func (g *Gateway) Dispatch(playerID string, event any) DispatchResult {
	g.lock.Lock()
	defer g.lock.Unlock()

	switch m := event.(type) {
	case JoinRoomEvent:
		return g.join(m)
	case PieceMoveEvent:
		return g.pieceMove(playerID, m)
	case PiecePickupEvent:
		return g.piecePickup(playerID, m)
	case PieceDropEvent:
		return g.pieceDrop(playerID, m)
	case CursorMoveEvent:
		return g.cursorMove(playerID, m)
	case LeaveRoomEvent:
		return g.leave(playerID)
	}
	return DispatchResult{}
}

func (g *Gateway) join(m JoinRoomEvent) DispatchResult {
	var result DispatchResult

	// A reconnecting player may still be associated with a room from a
	// previous connection. Tear that down first so presence never
	// duplicates.
	if prevRoom, ok := g.playerRooms[m.PlayerID]; ok && prevRoom != m.RoomID {
		delete(g.playerRooms, m.PlayerID)
		if g.registry.RemovePlayer(prevRoom, m.PlayerID) {
			result.Broadcasts = append(result.Broadcasts, RoomEvents{
				RoomID: prevRoom,
				Events: []OutboundEvent{PlayerLeftEvent{PlayerID: m.PlayerID}},
			})
		}
	}

	player, err := g.registry.AttachPlayer(m.RoomID, m.PlayerID, m.PlayerName)
	if err != nil {
		return result
	}
	g.playerRooms[m.PlayerID] = m.RoomID
	GetRoomPlayerLogger(m.RoomID, m.PlayerID).JoinedRoom()

	players, _ := g.registry.Players(m.RoomID)
	result.JoinedRoom = m.RoomID
	result.ToSender = []OutboundEvent{
		ConnectedEvent{PlayerID: m.PlayerID, RoomID: m.RoomID},
		RoomStateEvent{Players: players},
	}
	result.Broadcasts = append(result.Broadcasts, RoomEvents{
		RoomID: m.RoomID,
		Events: []OutboundEvent{PlayerJoinedEvent{Player: player}},
	})
	return result
}

func (g *Gateway) pieceMove(playerID string, m PieceMoveEvent) DispatchResult {
	roomID, ok := g.playerRooms[playerID]
	if !ok {
		return DispatchResult{}
	}
	// Expected race under concurrent dragging: silently ignored, never an
	// error toward the caller.
	if g.registry.IsLockedByOther(roomID, m.PieceID, playerID) {
		return DispatchResult{}
	}
	result, ok := g.registry.UpdatePiecePosition(roomID, m.PieceID, m.X, m.Y)
	if !ok {
		return DispatchResult{}
	}
	events := []OutboundEvent{PieceMovedEvent{PieceID: m.PieceID, X: m.X, Y: m.Y, PlayerID: playerID}}
	events = append(events, g.placementEvents(roomID, playerID, m.PieceID, result)...)
	return DispatchResult{Broadcasts: []RoomEvents{{RoomID: roomID, Events: events}}}
}

func (g *Gateway) piecePickup(playerID string, m PiecePickupEvent) DispatchResult {
	roomID, ok := g.playerRooms[playerID]
	if !ok {
		return DispatchResult{}
	}
	if !g.registry.LockPiece(roomID, m.PieceID, playerID) {
		return DispatchResult{}
	}
	return DispatchResult{Broadcasts: []RoomEvents{{
		RoomID: roomID,
		Events: []OutboundEvent{PieceLockedEvent{PieceID: m.PieceID, LockedBy: playerID}},
	}}}
}

func (g *Gateway) pieceDrop(playerID string, m PieceDropEvent) DispatchResult {
	roomID, ok := g.playerRooms[playerID]
	if !ok {
		return DispatchResult{}
	}
	if g.registry.IsLockedByOther(roomID, m.PieceID, playerID) {
		return DispatchResult{}
	}
	result, ok := g.registry.UpdatePiecePosition(roomID, m.PieceID, m.X, m.Y)
	if !ok {
		return DispatchResult{}
	}
	events := []OutboundEvent{PieceMovedEvent{PieceID: m.PieceID, X: m.X, Y: m.Y, PlayerID: playerID}}
	if result.Placed {
		// Snapping already force-cleared the lock.
		events = append(events, PieceUnlockedEvent{PieceID: m.PieceID})
		events = append(events, g.placementEvents(roomID, playerID, m.PieceID, result)...)
	} else {
		g.registry.UnlockPiece(roomID, m.PieceID)
		events = append(events, PieceUnlockedEvent{PieceID: m.PieceID})
	}
	return DispatchResult{Broadcasts: []RoomEvents{{RoomID: roomID, Events: events}}}
}

func (g *Gateway) placementEvents(roomID, playerID, pieceID string, result MoveResult) []OutboundEvent {
	if !result.Placed {
		return nil
	}
	events := []OutboundEvent{
		PiecePlacedEvent{PieceID: pieceID, PlayerID: playerID},
		GameStateUpdateEvent{GameState: result.GameState},
	}
	if result.Completed {
		players, _ := g.registry.Players(roomID)
		completionTime := ""
		if result.GameState.EndTime != nil {
			completionTime = result.GameState.EndTime.Format(time.RFC3339)
		}
		events = append(events, GameCompletedEvent{
			CompletionTime: completionTime,
			TotalPieces:    result.GameState.TotalPieces,
			Players:        players,
		})
	}
	return events
}

func (g *Gateway) cursorMove(playerID string, m CursorMoveEvent) DispatchResult {
	roomID, ok := g.playerRooms[playerID]
	if !ok {
		return DispatchResult{}
	}
	if !g.registry.UpdatePlayerCursor(roomID, playerID, m.X, m.Y) {
		return DispatchResult{}
	}
	player, _ := g.registry.Player(roomID, playerID)
	return DispatchResult{Broadcasts: []RoomEvents{{
		RoomID: roomID,
		Events: []OutboundEvent{CursorUpdateEvent{X: m.X, Y: m.Y, PlayerID: playerID, PlayerName: player.Name}},
	}}}
}

func (g *Gateway) leave(playerID string) DispatchResult {
	roomID, ok := g.playerRooms[playerID]
	if !ok {
		return DispatchResult{}
	}
	delete(g.playerRooms, playerID)
	if !g.registry.RemovePlayer(roomID, playerID) {
		return DispatchResult{}
	}
	GetRoomPlayerLogger(roomID, playerID).LeftRoom()
	return DispatchResult{Broadcasts: []RoomEvents{{
		RoomID: roomID,
		Events: []OutboundEvent{PlayerLeftEvent{PlayerID: playerID}},
	}}}
}
