package main

import (
	"fmt"
	"math/rand"
	"strings"
)

type difficultyConfig struct {
	Rows   int
	Cols   int
	Width  float64
	Height float64
}

var difficultyConfigs = map[Difficulty]difficultyConfig{
	DifficultyEasy:   {Rows: 4, Cols: 6, Width: 600, Height: 400},
	DifficultyMedium: {Rows: 6, Cols: 8, Width: 800, Height: 600},
	DifficultyHard:   {Rows: 8, Cols: 12, Width: 1200, Height: 800},
}

const (
	connectorSize = 15.0
	scatterMargin = 100.0
)

func newPuzzle(id, imageURL string, difficulty Difficulty, cfg difficultyConfig, rnd *rand.Rand) Puzzle {
	pieceWidth := cfg.Width / float64(cfg.Cols)
	pieceHeight := cfg.Height / float64(cfg.Rows)
	pieces := generatePieces(cfg.Rows, cfg.Cols, pieceWidth, pieceHeight, rnd)
	return Puzzle{
		ID:         id,
		ImageURL:   imageURL,
		Width:      cfg.Width,
		Height:     cfg.Height,
		PieceCount: len(pieces),
		Pieces:     pieces,
		Difficulty: difficulty,
	}
}

// generatePieces lays correct positions on a rows×cols grid and scatters the
// initial positions across the board plus a margin on every side.
func generatePieces(rows, cols int, pieceWidth, pieceHeight float64, rnd *rand.Rand) []Piece {
	pieces := make([]Piece, 0, rows*cols)
	boardWidth := float64(cols) * pieceWidth
	boardHeight := float64(rows) * pieceHeight
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			connectors := Connectors{
				Top:    sideConnector(row == 0, rnd),
				Right:  sideConnector(col == cols-1, rnd),
				Bottom: sideConnector(row == rows-1, rnd),
				Left:   sideConnector(col == 0, rnd),
			}
			pieces = append(pieces, Piece{
				ID:       fmt.Sprintf("piece_%d_%d", row, col),
				Row:      row,
				Col:      col,
				CorrectX: float64(col) * pieceWidth,
				CorrectY: float64(row) * pieceHeight,
				CurrentX: rnd.Float64()*(boardWidth+2*scatterMargin) - scatterMargin,
				CurrentY: rnd.Float64()*(boardHeight+2*scatterMargin) - scatterMargin,
				Shape: PieceShape{
					Path:       piecePath(pieceWidth, pieceHeight, connectors),
					Connectors: connectors,
				},
			})
		}
	}
	return pieces
}

func sideConnector(isBorder bool, rnd *rand.Rand) ConnectorSide {
	if isBorder {
		return ConnectorNone
	}
	if rnd.Float64() > 0.5 {
		return ConnectorOut
	}
	return ConnectorIn
}

// piecePath builds the SVG outline: a rectangle with a quadratic bump or
// notch in the middle of each non-border edge.
func piecePath(width, height float64, c Connectors) string {
	var b strings.Builder
	b.WriteString("M0,0")
	switch c.Top {
	case ConnectorOut:
		fmt.Fprintf(&b, " L%g,0 Q%g,%g %g,0", width/2-connectorSize, width/2, -connectorSize, width/2+connectorSize)
	case ConnectorIn:
		fmt.Fprintf(&b, " L%g,0 Q%g,%g %g,0", width/2-connectorSize, width/2, connectorSize, width/2+connectorSize)
	}
	fmt.Fprintf(&b, " L%g,0", width)
	switch c.Right {
	case ConnectorOut:
		fmt.Fprintf(&b, " L%g,%g Q%g,%g %g,%g", width, height/2-connectorSize, width+connectorSize, height/2, width, height/2+connectorSize)
	case ConnectorIn:
		fmt.Fprintf(&b, " L%g,%g Q%g,%g %g,%g", width, height/2-connectorSize, width-connectorSize, height/2, width, height/2+connectorSize)
	}
	fmt.Fprintf(&b, " L%g,%g", width, height)
	switch c.Bottom {
	case ConnectorOut:
		fmt.Fprintf(&b, " L%g,%g Q%g,%g %g,%g", width/2+connectorSize, height, width/2, height+connectorSize, width/2-connectorSize, height)
	case ConnectorIn:
		fmt.Fprintf(&b, " L%g,%g Q%g,%g %g,%g", width/2+connectorSize, height, width/2, height-connectorSize, width/2-connectorSize, height)
	}
	fmt.Fprintf(&b, " L0,%g", height)
	switch c.Left {
	case ConnectorOut:
		fmt.Fprintf(&b, " L0,%g Q%g,%g 0,%g", height/2+connectorSize, -connectorSize, height/2, height/2-connectorSize)
	case ConnectorIn:
		fmt.Fprintf(&b, " L0,%g Q%g,%g 0,%g", height/2+connectorSize, connectorSize, height/2, height/2-connectorSize)
	}
	b.WriteString(" Z")
	return b.String()
}
