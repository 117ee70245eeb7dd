package game

import "chess-rules/board"

// State is the outcome classification of a position.
type State int

const (
	InProgress State = iota
	WhiteWin
	BlackWin
	Draw
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case WhiteWin:
		return "white wins"
	case BlackWin:
		return "black wins"
	case Draw:
		return "draw"
	}
	return "unknown"
}

// Terminal reports whether no further moves may be played.
func (s State) Terminal() bool { return s != InProgress }

// Reason names the rule that ended the game.
type Reason int

const (
	NoReason Reason = iota
	Checkmate
	Stalemate
	FiftyMoveRule
	ThreefoldRepetition
	InsufficientMaterial
)

func (r Reason) String() string {
	switch r {
	case NoReason:
		return "none"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case FiftyMoveRule:
		return "fifty-move rule"
	case ThreefoldRepetition:
		return "threefold repetition"
	case InsufficientMaterial:
		return "insufficient material"
	}
	return "unknown"
}

// fiftyMoveLimit is the half-move clock value that ends the game.
const fiftyMoveLimit = 100

// Classify evaluates the rules in order: no legal moves (mate or stalemate),
// the fifty-move rule, threefold repetition, then insufficient material.
func Classify(p *board.Position) (State, Reason) {
	side := p.SideToMove()
	if !p.HasLegalMoves() {
		if !p.InCheck(side) {
			return Draw, Stalemate
		}
		if side == board.White {
			return BlackWin, Checkmate
		}
		return WhiteWin, Checkmate
	}
	if p.HalfmoveClock() >= fiftyMoveLimit {
		return Draw, FiftyMoveRule
	}
	if p.Repetitions() >= 3 {
		return Draw, ThreefoldRepetition
	}
	if p.InsufficientMaterial() {
		return Draw, InsufficientMaterial
	}
	return InProgress, NoReason
}
