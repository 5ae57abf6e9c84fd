package main

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Cursor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Player struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	IsConnected bool    `json:"isConnected"`
	Cursor      *Cursor `json:"cursor,omitempty"`
}

type ConnectorSide string

const (
	ConnectorNone ConnectorSide = "none"
	ConnectorOut  ConnectorSide = "out"
	ConnectorIn   ConnectorSide = "in"
)

type Connectors struct {
	Top    ConnectorSide `json:"top"`
	Right  ConnectorSide `json:"right"`
	Bottom ConnectorSide `json:"bottom"`
	Left   ConnectorSide `json:"left"`
}

// PieceShape is render-only data; the server never inspects it after creation.
type PieceShape struct {
	Path       string     `json:"path"`
	Connectors Connectors `json:"connectors"`
}

type Piece struct {
	ID       string     `json:"id"`
	Row      int        `json:"row"`
	Col      int        `json:"col"`
	CorrectX float64    `json:"correctX"`
	CorrectY float64    `json:"correctY"`
	CurrentX float64    `json:"currentX"`
	CurrentY float64    `json:"currentY"`
	IsPlaced bool       `json:"isPlaced"`
	IsLocked bool       `json:"isLocked"`
	LockedBy string     `json:"lockedBy,omitempty"`
	Shape    PieceShape `json:"shape"`
}

type Puzzle struct {
	ID         string     `json:"id"`
	ImageURL   string     `json:"imageUrl"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	PieceCount int        `json:"pieceCount"`
	Pieces     []Piece    `json:"pieces"`
	Difficulty Difficulty `json:"difficulty"`
}

type GameState struct {
	CompletedPieces      int        `json:"completedPieces"`
	TotalPieces          int        `json:"totalPieces"`
	CompletionPercentage float64    `json:"completionPercentage"`
	IsCompleted          bool       `json:"isCompleted"`
	StartTime            time.Time  `json:"startTime"`
	EndTime              *time.Time `json:"endTime"`
}

type Room struct {
	ID        string    `json:"id"`
	Players   []Player  `json:"players"`
	Puzzle    Puzzle    `json:"puzzle"`
	GameState GameState `json:"gameState"`
	CreatedAt time.Time `json:"createdAt"`
}
