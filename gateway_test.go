package main

import (
	"testing"
	"time"
)

func eventTypes(events []OutboundEvent) []string {
	types := make([]string, 0, len(events))
	for _, event := range events {
		types = append(types, event.EventType())
	}
	return types
}

func sameTypes(got []OutboundEvent, want ...string) bool {
	types := eventTypes(got)
	if len(types) != len(want) {
		return false
	}
	for i := range want {
		if types[i] != want[i] {
			return false
		}
	}
	return true
}

func newJoinedPair(t *testing.T) (*RoomRegistry, *Gateway, string, string, string) {
	t.Helper()
	reg := NewRoomRegistry(time.Minute)
	gateway := NewGateway(reg)
	roomID, aliceID, _, err := reg.CreateRoom("Alice", "img.png", DifficultyEasy)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	bobID, err := reg.JoinRoom(roomID, "Bob")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	gateway.Dispatch(aliceID, JoinRoomEvent{RoomID: roomID, PlayerID: aliceID, PlayerName: "Alice"})
	gateway.Dispatch(bobID, JoinRoomEvent{RoomID: roomID, PlayerID: bobID, PlayerName: "Bob"})
	return reg, gateway, roomID, aliceID, bobID
}

func TestDispatchJoinRoom(t *testing.T) {
	reg := NewRoomRegistry(time.Minute)
	gateway := NewGateway(reg)
	roomID, aliceID, _, _ := reg.CreateRoom("Alice", "img.png", DifficultyEasy)

	result := gateway.Dispatch(aliceID, JoinRoomEvent{RoomID: roomID, PlayerID: aliceID, PlayerName: "Alice"})
	if result.JoinedRoom != roomID {
		t.Fatalf("join not accepted: %+v", result)
	}
	if !sameTypes(result.ToSender, "connected", "room_state") {
		t.Errorf("wrong sender events: %v", eventTypes(result.ToSender))
	}
	connected := result.ToSender[0].(ConnectedEvent)
	if connected.PlayerID != aliceID || connected.RoomID != roomID {
		t.Errorf("wrong connected payload: %+v", connected)
	}
	if len(result.Broadcasts) != 1 || !sameTypes(result.Broadcasts[0].Events, "player_joined") {
		t.Errorf("wrong broadcasts: %+v", result.Broadcasts)
	}
}

func TestDispatchJoinUnknownRoom(t *testing.T) {
	reg := NewRoomRegistry(time.Minute)
	gateway := NewGateway(reg)
	result := gateway.Dispatch("player_x", JoinRoomEvent{RoomID: "room_nope", PlayerID: "player_x", PlayerName: "X"})
	if result.JoinedRoom != "" || len(result.ToSender) != 0 || len(result.Broadcasts) != 0 {
		t.Errorf("unknown room join should be a no-op: %+v", result)
	}
}

func TestStaleAssociationTornDownOnRejoin(t *testing.T) {
	reg := NewRoomRegistry(time.Minute)
	gateway := NewGateway(reg)
	room1, aliceID, _, _ := reg.CreateRoom("Alice", "img.png", DifficultyEasy)
	room2, _, _, _ := reg.CreateRoom("Zed", "img.png", DifficultyEasy)
	gateway.Dispatch(aliceID, JoinRoomEvent{RoomID: room1, PlayerID: aliceID, PlayerName: "Alice"})

	result := gateway.Dispatch(aliceID, JoinRoomEvent{RoomID: room2, PlayerID: aliceID, PlayerName: "Alice"})
	if result.JoinedRoom != room2 {
		t.Fatalf("rejoin not accepted: %+v", result)
	}
	if len(result.Broadcasts) != 2 {
		t.Fatalf("expected teardown + join broadcasts: %+v", result.Broadcasts)
	}
	if result.Broadcasts[0].RoomID != room1 || !sameTypes(result.Broadcasts[0].Events, "player_left") {
		t.Errorf("vacated room not notified: %+v", result.Broadcasts[0])
	}
	if result.Broadcasts[1].RoomID != room2 || !sameTypes(result.Broadcasts[1].Events, "player_joined") {
		t.Errorf("new room not notified: %+v", result.Broadcasts[1])
	}
	players, _ := reg.Players(room1)
	for _, player := range players {
		if player.ID == aliceID {
			t.Error("player still present in vacated room")
		}
	}
	if _, ok := reg.Player(room2, aliceID); !ok {
		t.Error("player missing from joined room")
	}
}

func TestReconnectSameRoomDoesNotDuplicatePresence(t *testing.T) {
	reg, gateway, roomID, aliceID, _ := newJoinedPair(t)
	result := gateway.Dispatch(aliceID, JoinRoomEvent{RoomID: roomID, PlayerID: aliceID, PlayerName: "Alice"})
	if result.JoinedRoom != roomID {
		t.Fatalf("reconnect rejected: %+v", result)
	}
	players, _ := reg.Players(roomID)
	if len(players) != 2 {
		t.Errorf("presence duplicated on reconnect: %+v", players)
	}
}

func TestPieceMoveLockConflictIsSilent(t *testing.T) {
	reg, gateway, roomID, aliceID, bobID := newJoinedPair(t)
	gateway.Dispatch(bobID, PiecePickupEvent{PieceID: "piece_0_0", PlayerID: bobID})
	before, _ := reg.PieceState(roomID, "piece_0_0")

	result := gateway.Dispatch(aliceID, PieceMoveEvent{PieceID: "piece_0_0", X: 400, Y: 400, PlayerID: aliceID})
	if len(result.ToSender) != 0 || len(result.Broadcasts) != 0 {
		t.Errorf("lock conflict must be silent: %+v", result)
	}
	after, _ := reg.PieceState(roomID, "piece_0_0")
	if after.CurrentX != before.CurrentX || after.CurrentY != before.CurrentY {
		t.Error("conflicting move mutated the piece")
	}
}

func TestPiecePickupConflict(t *testing.T) {
	_, gateway, _, aliceID, bobID := newJoinedPair(t)
	first := gateway.Dispatch(bobID, PiecePickupEvent{PieceID: "piece_0_0", PlayerID: bobID})
	if len(first.Broadcasts) != 1 || !sameTypes(first.Broadcasts[0].Events, "piece_locked") {
		t.Fatalf("pickup should broadcast piece_locked: %+v", first)
	}
	locked := first.Broadcasts[0].Events[0].(PieceLockedEvent)
	if locked.LockedBy != bobID {
		t.Errorf("wrong lock holder: %+v", locked)
	}
	second := gateway.Dispatch(aliceID, PiecePickupEvent{PieceID: "piece_0_0", PlayerID: aliceID})
	if len(second.Broadcasts) != 0 {
		t.Errorf("conflicting pickup must be silent: %+v", second)
	}
}

func TestPieceDropAwayFromTarget(t *testing.T) {
	reg, gateway, roomID, _, bobID := newJoinedPair(t)
	gateway.Dispatch(bobID, PiecePickupEvent{PieceID: "piece_0_0", PlayerID: bobID})
	result := gateway.Dispatch(bobID, PieceDropEvent{PieceID: "piece_0_0", X: 400, Y: 300, PlayerID: bobID})
	if len(result.Broadcasts) != 1 || !sameTypes(result.Broadcasts[0].Events, "piece_moved", "piece_unlocked") {
		t.Fatalf("wrong drop events: %+v", result.Broadcasts)
	}
	piece, _ := reg.PieceState(roomID, "piece_0_0")
	if piece.IsPlaced || piece.IsLocked || piece.CurrentX != 400 || piece.CurrentY != 300 {
		t.Errorf("wrong piece state after drop: %+v", piece)
	}
}

func TestPieceDropSnapsAndBroadcastsPlacement(t *testing.T) {
	reg, gateway, roomID, _, bobID := newJoinedPair(t)
	gateway.Dispatch(bobID, PiecePickupEvent{PieceID: "piece_0_0", PlayerID: bobID})
	result := gateway.Dispatch(bobID, PieceDropEvent{PieceID: "piece_0_0", X: 4, Y: 3, PlayerID: bobID})
	if len(result.Broadcasts) != 1 {
		t.Fatalf("expected one broadcast batch: %+v", result.Broadcasts)
	}
	if !sameTypes(result.Broadcasts[0].Events, "piece_moved", "piece_unlocked", "piece_placed", "game_state_update") {
		t.Fatalf("wrong placement events: %v", eventTypes(result.Broadcasts[0].Events))
	}
	update := result.Broadcasts[0].Events[3].(GameStateUpdateEvent)
	if update.GameState.CompletedPieces != 1 {
		t.Errorf("wrong game state broadcast: %+v", update.GameState)
	}
	piece, _ := reg.PieceState(roomID, "piece_0_0")
	if !piece.IsPlaced || piece.IsLocked {
		t.Errorf("wrong piece state after snap: %+v", piece)
	}
}

func TestGameCompletedBroadcast(t *testing.T) {
	reg, gateway, roomID, aliceID, _ := newJoinedPair(t)
	status, _ := reg.Status(roomID)
	var last DispatchResult
	for _, piece := range status.Puzzle.Pieces {
		last = gateway.Dispatch(aliceID, PieceMoveEvent{PieceID: piece.ID, X: piece.CorrectX, Y: piece.CorrectY, PlayerID: aliceID})
	}
	if len(last.Broadcasts) != 1 {
		t.Fatalf("expected one broadcast batch: %+v", last.Broadcasts)
	}
	types := eventTypes(last.Broadcasts[0].Events)
	if types[len(types)-1] != "game_completed" {
		t.Fatalf("final placement should end with game_completed: %v", types)
	}
	completed := last.Broadcasts[0].Events[len(types)-1].(GameCompletedEvent)
	if completed.TotalPieces != 24 || completed.CompletionTime == "" || len(completed.Players) != 2 {
		t.Errorf("wrong game_completed payload: %+v", completed)
	}
}

func TestCursorMoveBroadcastsName(t *testing.T) {
	_, gateway, _, aliceID, _ := newJoinedPair(t)
	result := gateway.Dispatch(aliceID, CursorMoveEvent{X: 11, Y: 22, PlayerID: aliceID})
	if len(result.Broadcasts) != 1 || !sameTypes(result.Broadcasts[0].Events, "cursor_update") {
		t.Fatalf("wrong cursor events: %+v", result.Broadcasts)
	}
	update := result.Broadcasts[0].Events[0].(CursorUpdateEvent)
	if update.PlayerName != "Alice" || update.X != 11 || update.Y != 22 {
		t.Errorf("wrong cursor payload: %+v", update)
	}
}

func TestLeaveRoom(t *testing.T) {
	reg, gateway, roomID, aliceID, _ := newJoinedPair(t)
	result := gateway.Dispatch(aliceID, LeaveRoomEvent{})
	if len(result.Broadcasts) != 1 || !sameTypes(result.Broadcasts[0].Events, "player_left") {
		t.Fatalf("wrong leave events: %+v", result.Broadcasts)
	}
	players, _ := reg.Players(roomID)
	if len(players) != 1 {
		t.Errorf("player not removed: %+v", players)
	}
	again := gateway.Dispatch(aliceID, LeaveRoomEvent{})
	if len(again.Broadcasts) != 0 {
		t.Errorf("second leave should be a no-op: %+v", again)
	}
}

func TestEventsWithoutJoinAreIgnored(t *testing.T) {
	_, gateway, _, _, _ := newJoinedPair(t)
	result := gateway.Dispatch("player_stranger", PieceMoveEvent{PieceID: "piece_0_0", X: 1, Y: 1})
	if len(result.Broadcasts) != 0 {
		t.Errorf("unjoined player's events must be ignored: %+v", result)
	}
}
