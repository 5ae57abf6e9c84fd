package main

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeInbound(t *testing.T) {
	event, err := DecodeInbound("piece_move", []byte(`{"pieceId":"piece_1_2","x":10.5,"y":-3,"playerId":"player_a"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	move, ok := event.(PieceMoveEvent)
	if !ok {
		t.Fatalf("wrong type: %T", event)
	}
	if move.PieceID != "piece_1_2" || move.X != 10.5 || move.Y != -3 || move.PlayerID != "player_a" {
		t.Errorf("wrong payload: %+v", move)
	}

	event, err = DecodeInbound("leave_room", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := event.(LeaveRoomEvent); !ok {
		t.Errorf("wrong type: %T", event)
	}
}

func TestDecodeInboundUndefinedType(t *testing.T) {
	if _, err := DecodeInbound("teleport_piece", []byte(`{}`)); !errors.Is(err, ErrUndefinedType) {
		t.Errorf("expected ErrUndefinedType got: %v", err)
	}
}

func TestEncodeOutbound(t *testing.T) {
	frame := EncodeOutbound(PieceLockedEvent{PieceID: "piece_0_0", LockedBy: "player_b"})
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		t.Fatalf("invalid envelope json: %v", err)
	}
	if envelope.Type != "piece_locked" {
		t.Errorf("wrong type expected: piece_locked got: %v", envelope.Type)
	}
	var payload PieceLockedEvent
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("invalid payload json: %v", err)
	}
	if payload.PieceID != "piece_0_0" || payload.LockedBy != "player_b" {
		t.Errorf("wrong payload: %+v", payload)
	}
}
