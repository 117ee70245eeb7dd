// Package game wraps a board.Position with outcome tracking for callers that
// play a game move by move: user interfaces, match runners and the UCI server.
package game

import (
	"context"
	"sync"

	"golang.org/x/exp/slices"

	"chess-rules/board"
	"chess-rules/engine"
)

// Game is safe for concurrent use.
type Game struct {
	mu     sync.Mutex
	pos    *board.Position
	moves  []board.Move
	state  State
	reason Reason
}

// New returns a game at the standard starting position.
func New() *Game {
	g := &Game{pos: board.NewPosition()}
	g.classify()
	return g
}

// FromFEN returns a game starting at fen.
func FromFEN(fen string) (*Game, error) {
	p, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	g := &Game{pos: p}
	g.classify()
	return g, nil
}

func (g *Game) classify() {
	g.state, g.reason = Classify(g.pos)
}

// TryLoadFEN replaces the game with the position in text. On failure the
// game is left as it was.
func (g *Game) TryLoadFEN(text string) bool {
	p, err := board.ParseFEN(text)
	if err != nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pos = p
	g.moves = g.moves[:0]
	g.classify()
	return true
}

// ExportFEN returns the current position as FEN.
func (g *Game) ExportFEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos.FEN()
}

// LegalTargets lists where the piece on sq may move. It is empty once the
// game is over or when the piece belongs to the side not to move.
// sq must hold a piece.
func (g *Game) LegalTargets(sq board.Square) []board.Square {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Terminal() {
		return nil
	}
	return g.pos.LegalTargets(sq)
}

// Move plays m if it is legal and the game is still in progress.
func (g *Game) Move(m board.Move) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Terminal() || !g.pos.IsLegal(m) {
		return false
	}
	g.pos.Apply(m)
	g.moves = append(g.moves, m)
	g.classify()
	return true
}

// MoveUCI plays a move given in coordinate notation such as "e2e4" or "a7a8q".
func (g *Game) MoveUCI(text string) bool {
	m, err := board.ParseUCIMove(text)
	if err != nil {
		return false
	}
	g.mu.Lock()
	legal := g.pos.LegalMoves()
	g.mu.Unlock()
	// pick up the castle flag from the generated move
	i := slices.IndexFunc(legal, func(l board.Move) bool {
		return l.From == m.From && l.To == m.To && l.Promotion == m.Promotion
	})
	if i < 0 {
		return false
	}
	return g.Move(legal[i])
}

// Undo takes back the last move played in this game.
func (g *Game) Undo() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.moves) == 0 {
		return false
	}
	g.pos.Undo()
	g.moves = g.moves[:len(g.moves)-1]
	g.classify()
	return true
}

func (g *Game) PieceAt(sq board.Square) board.Piece {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos.PieceAt(sq)
}

func (g *Game) SideToMove() board.Color {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos.SideToMove()
}

func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Reason explains a terminal State; it is NoReason while in progress.
func (g *Game) Reason() Reason {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reason
}

// PlayerInCheck names the side to move if its king is attacked.
func (g *Game) PlayerInCheck() (board.Color, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	side := g.pos.SideToMove()
	if g.pos.InCheck(side) {
		return side, true
	}
	return side, false
}

// Position returns a copy of the current position.
func (g *Game) Position() *board.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos.Clone()
}

// Moves returns the moves played since the game was created or loaded.
func (g *Game) Moves() []board.Move {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.moves)
}

// BestMove searches the current position to depth. The game lock is only
// held while the position is copied.
func (g *Game) BestMove(ctx context.Context, depth int) (board.Move, bool) {
	g.mu.Lock()
	if g.state.Terminal() {
		g.mu.Unlock()
		return board.NullMove, false
	}
	p := g.pos.Clone()
	g.mu.Unlock()
	return engine.BestMove(ctx, p, depth)
}
