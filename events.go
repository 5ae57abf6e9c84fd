package main

import (
	"encoding/json"
	"errors"
)

// Both bindings speak the same envelope: {"type": "...", "data": {...}}.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

var ErrUndefinedType = errors.New("incorrect type")

func UnmarshalJSON[T any](data []byte) T {
	var parsed T
	json.Unmarshal(data, &parsed)
	return parsed
}

// Inbound events (client → server).

type JoinRoomEvent struct {
	RoomID     string `json:"roomId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type PieceMoveEvent struct {
	PieceID  string  `json:"pieceId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	PlayerID string  `json:"playerId"`
}

type PiecePickupEvent struct {
	PieceID  string `json:"pieceId"`
	PlayerID string `json:"playerId"`
}

type PieceDropEvent struct {
	PieceID  string  `json:"pieceId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	PlayerID string  `json:"playerId"`
}

type CursorMoveEvent struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	PlayerID string  `json:"playerId"`
}

type LeaveRoomEvent struct{}

// DecodeInbound returns one of the inbound event structs.
func DecodeInbound(eventType string, data []byte) (any, error) {
	var parsed any
	switch eventType {
	case "join_room":
		parsed = UnmarshalJSON[JoinRoomEvent](data)
	case "piece_move":
		parsed = UnmarshalJSON[PieceMoveEvent](data)
	case "piece_pickup":
		parsed = UnmarshalJSON[PiecePickupEvent](data)
	case "piece_drop":
		parsed = UnmarshalJSON[PieceDropEvent](data)
	case "cursor_move":
		parsed = UnmarshalJSON[CursorMoveEvent](data)
	case "leave_room":
		parsed = LeaveRoomEvent{}
	default:
		return nil, ErrUndefinedType
	}
	return parsed, nil
}

// Outbound events (server → client).

type OutboundEvent interface {
	EventType() string
}

type ConnectedEvent struct {
	PlayerID string `json:"playerId"`
	RoomID   string `json:"roomId"`
}

func (ConnectedEvent) EventType() string { return "connected" }

type RoomStateEvent struct {
	Players []Player `json:"players"`
}

func (RoomStateEvent) EventType() string { return "room_state" }

type PlayerJoinedEvent struct {
	Player Player `json:"player"`
}

func (PlayerJoinedEvent) EventType() string { return "player_joined" }

type PlayerLeftEvent struct {
	PlayerID string `json:"playerId"`
}

func (PlayerLeftEvent) EventType() string { return "player_left" }

type PieceMovedEvent struct {
	PieceID  string  `json:"pieceId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	PlayerID string  `json:"playerId"`
}

func (PieceMovedEvent) EventType() string { return "piece_moved" }

type PieceLockedEvent struct {
	PieceID  string `json:"pieceId"`
	LockedBy string `json:"lockedBy"`
}

func (PieceLockedEvent) EventType() string { return "piece_locked" }

type PieceUnlockedEvent struct {
	PieceID string `json:"pieceId"`
}

func (PieceUnlockedEvent) EventType() string { return "piece_unlocked" }

type PiecePlacedEvent struct {
	PieceID  string `json:"pieceId"`
	PlayerID string `json:"playerId"`
}

func (PiecePlacedEvent) EventType() string { return "piece_placed" }

type CursorUpdateEvent struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
}

func (CursorUpdateEvent) EventType() string { return "cursor_update" }

type GameStateUpdateEvent struct {
	GameState GameState `json:"gameState"`
}

func (GameStateUpdateEvent) EventType() string { return "game_state_update" }

type GameCompletedEvent struct {
	CompletionTime string   `json:"completionTime"`
	TotalPieces    int      `json:"totalPieces"`
	Players        []Player `json:"players"`
}

func (GameCompletedEvent) EventType() string { return "game_completed" }

func EncodeOutbound(event OutboundEvent) []byte {
	data, _ := json.Marshal(event)
	frame, _ := json.Marshal(Envelope{Type: event.EventType(), Data: data})
	return frame
}
