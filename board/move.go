package board

import (
	"errors"
	"strings"
)

// Move is a request to move the piece on From to To.
//
// Promotion names the piece a pawn becomes on the last rank and must be
// PieceTypeNone otherwise. Castle marks a castling king move explicitly; a
// two-file king move is treated as castling whether or not the flag is set.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
	Castle    bool
}

// NullMove is the zero Move, used where no move is available.
var NullMove = Move{}

// String renders the move in coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if !m.From.Valid() || !m.To.Valid() || m == NullMove {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.Promotion != PieceTypeNone {
		s += string(pieceLetters[m.Promotion])
	}
	return s
}

// ErrInvalidMove is returned for move text that is not coordinate notation.
var ErrInvalidMove = errors.New("invalid move text")

// ParseUCIMove converts coordinate notation (e2e4, e7e8q) into a Move.
// The castle flag is left unset; legality checks derive it from the position.
func ParseUCIMove(text string) (Move, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if len(text) < 4 || len(text) > 5 {
		return NullMove, ErrInvalidMove
	}
	from, err := ParseSquare(text[0:2])
	if err != nil {
		return NullMove, ErrInvalidMove
	}
	to, err := ParseSquare(text[2:4])
	if err != nil {
		return NullMove, ErrInvalidMove
	}
	m := Move{From: from, To: to}
	if len(text) == 5 {
		m.Promotion = pieceTypeFromChar(text[4])
		if m.Promotion == PieceTypeNone {
			return NullMove, ErrInvalidMove
		}
	}
	return m, nil
}
