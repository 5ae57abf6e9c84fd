package main

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

const (
	maxPlayersPerRoom  = 2
	snapTolerance      = 20.0
	defaultGracePeriod = 5 * time.Minute
)

// RoomRegistry owns every room and all state inside it. Constructed once per
// process and handed to both transport bindings.
type RoomRegistry struct {
	rooms       map[string]*Room
	gracePeriod time.Duration
	rnd         *rand.Rand
	lock        sync.RWMutex

	// OnRoomDeleted runs after a room is purged by the grace timer.
	OnRoomDeleted func(roomID string)
}

func NewRoomRegistry(gracePeriod time.Duration) *RoomRegistry {
	return &RoomRegistry{
		rooms:       make(map[string]*Room),
		gracePeriod: gracePeriod,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func (reg *RoomRegistry) CreateRoom(playerName, puzzleImage string, difficulty Difficulty) (roomID, playerID, puzzleID string, err error) {
	cfg, ok := difficultyConfigs[difficulty]
	if !ok {
		return "", "", "", ErrUnknownDifficulty
	}
	roomID = newID("room")
	playerID = newID("player")
	puzzleID = newID("puzzle")

	reg.lock.Lock()
	defer reg.lock.Unlock()
	puzzle := newPuzzle(puzzleID, puzzleImage, difficulty, cfg, reg.rnd)
	reg.rooms[roomID] = &Room{
		ID:      roomID,
		Players: []Player{{ID: playerID, Name: playerName, IsConnected: true}},
		Puzzle:  puzzle,
		GameState: GameState{
			TotalPieces: puzzle.PieceCount,
			StartTime:   time.Now(),
		},
		CreatedAt: time.Now(),
	}
	LogCreatedRoom(roomID)
	return roomID, playerID, puzzleID, nil
}

func (reg *RoomRegistry) JoinRoom(roomID, playerName string) (string, error) {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return "", ErrRoomNotFound
	}
	if len(room.Players) >= maxPlayersPerRoom {
		return "", ErrRoomFull
	}
	playerID := newID("player")
	room.Players = append(room.Players, Player{ID: playerID, Name: playerName, IsConnected: true})
	return playerID, nil
}

// AttachPlayer registers a player id inside a room, re-using the existing
// entry when the id is already a member. Used by the gateway on join_room so
// a reconnecting player whose old entry was removed gets re-seated.
func (reg *RoomRegistry) AttachPlayer(roomID, playerID, playerName string) (Player, error) {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return Player{}, ErrRoomNotFound
	}
	if player := findPlayer(room, playerID); player != nil {
		player.IsConnected = true
		if playerName != "" {
			player.Name = playerName
		}
		return *player, nil
	}
	if len(room.Players) >= maxPlayersPerRoom {
		return Player{}, ErrRoomFull
	}
	player := Player{ID: playerID, Name: playerName, IsConnected: true}
	room.Players = append(room.Players, player)
	return player, nil
}

func (reg *RoomRegistry) UpdatePlayerConnection(roomID, playerID string, connected bool) bool {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return false
	}
	player := findPlayer(room, playerID)
	if player == nil {
		return false
	}
	player.IsConnected = connected
	return true
}

func (reg *RoomRegistry) UpdatePlayerCursor(roomID, playerID string, x, y float64) bool {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return false
	}
	player := findPlayer(room, playerID)
	if player == nil {
		return false
	}
	player.Cursor = &Cursor{X: x, Y: y}
	return true
}

// RemovePlayer drops the player and any piece locks they still hold. When the
// room becomes empty a deletion timer is armed; it is never cancelled on
// rejoin, the emptiness re-check at fire time resolves that race.
func (reg *RoomRegistry) RemovePlayer(roomID, playerID string) bool {
	reg.lock.Lock()
	room, ok := reg.rooms[roomID]
	if !ok {
		reg.lock.Unlock()
		return false
	}
	found := false
	for i, player := range room.Players {
		if player.ID == playerID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		reg.lock.Unlock()
		return false
	}
	for i := range room.Puzzle.Pieces {
		piece := &room.Puzzle.Pieces[i]
		if piece.LockedBy == playerID {
			piece.IsLocked = false
			piece.LockedBy = ""
		}
	}
	empty := len(room.Players) == 0
	reg.lock.Unlock()

	if empty {
		time.AfterFunc(reg.gracePeriod, func() {
			reg.deleteIfEmpty(roomID)
		})
	}
	return true
}

func (reg *RoomRegistry) deleteIfEmpty(roomID string) {
	reg.lock.Lock()
	room, ok := reg.rooms[roomID]
	deleted := ok && len(room.Players) == 0
	if deleted {
		delete(reg.rooms, roomID)
	}
	reg.lock.Unlock()

	if deleted {
		LogRemovingRoom(roomID)
		if reg.OnRoomDeleted != nil {
			reg.OnRoomDeleted(roomID)
		}
	}
}

type MoveResult struct {
	Placed    bool
	GameState GameState
	Completed bool
}

// UpdatePiecePosition sets the current position and snaps the piece in place
// when both axes are within the tolerance. Placed pieces are frozen: any
// further move is a no-op returning false.
func (reg *RoomRegistry) UpdatePiecePosition(roomID, pieceID string, x, y float64) (MoveResult, bool) {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return MoveResult{}, false
	}
	piece := findPiece(room, pieceID)
	if piece == nil || piece.IsPlaced {
		return MoveResult{}, false
	}
	piece.CurrentX = x
	piece.CurrentY = y
	if math.Abs(x-piece.CorrectX) < snapTolerance && math.Abs(y-piece.CorrectY) < snapTolerance {
		piece.IsPlaced = true
		piece.CurrentX = piece.CorrectX
		piece.CurrentY = piece.CorrectY
		piece.IsLocked = false
		piece.LockedBy = ""
		reg.updateGameState(room)
		return MoveResult{Placed: true, GameState: room.GameState, Completed: room.GameState.IsCompleted}, true
	}
	return MoveResult{}, true
}

// LockPiece is the sole concurrency primitive over pieces. The lock is
// advisory: it only works because clients request it before dragging.
func (reg *RoomRegistry) LockPiece(roomID, pieceID, playerID string) bool {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return false
	}
	piece := findPiece(room, pieceID)
	if piece == nil || piece.IsPlaced {
		return false
	}
	if piece.IsLocked && piece.LockedBy != playerID {
		return false
	}
	piece.IsLocked = true
	piece.LockedBy = playerID
	return true
}

func (reg *RoomRegistry) UnlockPiece(roomID, pieceID string) bool {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return false
	}
	piece := findPiece(room, pieceID)
	if piece == nil {
		return false
	}
	piece.IsLocked = false
	piece.LockedBy = ""
	return true
}

func (reg *RoomRegistry) IsLockedByOther(roomID, pieceID, playerID string) bool {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return false
	}
	piece := findPiece(room, pieceID)
	return piece != nil && piece.IsLocked && piece.LockedBy != playerID
}

type RoomStatus struct {
	RoomID      string    `json:"roomId"`
	Players     []Player  `json:"players"`
	Puzzle      Puzzle    `json:"puzzle"`
	GameState   GameState `json:"gameState"`
	IsCompleted bool      `json:"isCompleted"`
}

// Status returns a copy safe to marshal outside the registry lock.
func (reg *RoomRegistry) Status(roomID string) (RoomStatus, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return RoomStatus{}, false
	}
	puzzle := room.Puzzle
	puzzle.Pieces = append([]Piece(nil), room.Puzzle.Pieces...)
	return RoomStatus{
		RoomID:      room.ID,
		Players:     append([]Player(nil), room.Players...),
		Puzzle:      puzzle,
		GameState:   room.GameState,
		IsCompleted: room.GameState.IsCompleted,
	}, true
}

func (reg *RoomRegistry) Players(roomID string) ([]Player, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return nil, false
	}
	return append([]Player(nil), room.Players...), true
}

func (reg *RoomRegistry) Player(roomID, playerID string) (Player, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return Player{}, false
	}
	player := findPlayer(room, playerID)
	if player == nil {
		return Player{}, false
	}
	return *player, true
}

func (reg *RoomRegistry) PieceState(roomID, pieceID string) (Piece, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return Piece{}, false
	}
	piece := findPiece(room, pieceID)
	if piece == nil {
		return Piece{}, false
	}
	return *piece, true
}

func (reg *RoomRegistry) RoomExists(roomID string) bool {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	_, ok := reg.rooms[roomID]
	return ok
}

func (reg *RoomRegistry) updateGameState(room *Room) {
	completed := 0
	for i := range room.Puzzle.Pieces {
		if room.Puzzle.Pieces[i].IsPlaced {
			completed++
		}
	}
	total := len(room.Puzzle.Pieces)
	room.GameState.CompletedPieces = completed
	room.GameState.TotalPieces = total
	room.GameState.CompletionPercentage = float64(completed) / float64(total) * 100
	room.GameState.IsCompleted = completed == total
	if room.GameState.IsCompleted && room.GameState.EndTime == nil {
		now := time.Now()
		room.GameState.EndTime = &now
	}
}

func findPlayer(room *Room, playerID string) *Player {
	for i := range room.Players {
		if room.Players[i].ID == playerID {
			return &room.Players[i]
		}
	}
	return nil
}

func findPiece(room *Room, pieceID string) *Piece {
	for i := range room.Puzzle.Pieces {
		if room.Puzzle.Pieces[i].ID == pieceID {
			return &room.Puzzle.Pieces[i]
		}
	}
	return nil
}
