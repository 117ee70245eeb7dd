package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the standard initial chess position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidPosition is matched by every FEN parse failure.
var ErrInvalidPosition = errors.New("invalid position")

// InvalidPositionError reports a FEN string that could not be parsed.
type InvalidPositionError struct {
	FEN    string
	Reason string
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid FEN %q: %s", e.FEN, e.Reason)
}

func (e *InvalidPositionError) Unwrap() error { return ErrInvalidPosition }

// ParseFEN parses a six-field FEN string into a new Position.
func ParseFEN(fen string) (*Position, error) {
	p := &Position{}
	if err := p.decodeFEN(fen); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFEN replaces p with the position described by fen.
// On error p is left untouched.
func (p *Position) LoadFEN(fen string) error {
	np, err := ParseFEN(fen)
	if err != nil {
		return err
	}
	*p = *np
	return nil
}

func (p *Position) decodeFEN(fen string) error {
	fail := func(reason string) error { return &InvalidPositionError{FEN: fen, Reason: reason} }

	fields := strings.Split(fen, " ")
	if len(fields) != 6 {
		return fail(fmt.Sprintf("expected 6 fields, got %d", len(fields)))
	}

	p.kings = [2]Square{NoSquare, NoSquare}
	p.enPassant = NoSquare

	// 1. Piece placement, eighth rank first
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return fail("board must have 8 ranks")
	}
	for rank, row := range ranks {
		file := 0
		for i := 0; i < len(row); i++ {
			ch := row[i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				if file > 8 {
					return fail("too many squares in rank " + strconv.Itoa(8-rank))
				}
				continue
			}
			pc := pieceFromChar(ch)
			if pc == NoPiece {
				return fail(fmt.Sprintf("unrecognized piece character %q", ch))
			}
			if file >= 8 {
				return fail("too many squares in rank " + strconv.Itoa(8-rank))
			}
			p.squares[NewSquare(file, rank)] = pc
			if pc.Type() == PieceTypeKing {
				p.kings[pc.Color()] = NewSquare(file, rank)
			}
			file++
		}
		if file != 8 {
			return fail("rank " + strconv.Itoa(8-rank) + " does not have 8 files")
		}
	}

	// 2. Side to move
	switch fields[1] {
	case "w":
		p.sideToMove = White
	case "b":
		p.sideToMove = Black
	default:
		return fail("side to move must be 'w' or 'b'")
	}

	// 3. Castling rights
	if fields[2] != "-" {
		if len(fields[2]) > 4 {
			return fail("castling field longer than 4 characters")
		}
		for i := 0; i < len(fields[2]); i++ {
			var r CastlingRights
			switch fields[2][i] {
			case 'K':
				r = CastlingWhiteK
			case 'Q':
				r = CastlingWhiteQ
			case 'k':
				r = CastlingBlackK
			case 'q':
				r = CastlingBlackQ
			default:
				return fail(fmt.Sprintf("invalid castling character %q", fields[2][i]))
			}
			if p.castlingRights&r != 0 {
				return fail("duplicate castling character")
			}
			p.castlingRights |= r
		}
	}

	// 4. En passant target square
	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return fail("malformed en passant square")
		}
		// the target sits behind a pawn the side not to move just pushed
		want := 2
		if p.sideToMove == Black {
			want = 5
		}
		if sq.Rank() != want {
			return fail("malformed en passant square")
		}
		p.enPassant = sq
	}

	// 5. Halfmove clock
	half, err := strconv.Atoi(fields[4])
	if err != nil || half < 0 {
		return fail("halfmove clock is not a non-negative number")
	}
	p.halfmoveClock = half

	// 6. Fullmove number
	full, err := strconv.Atoi(fields[5])
	if err != nil || full < 1 {
		return fail("fullmove number is not a positive number")
	}
	p.fullmoveNumber = full

	p.key = p.computeKey()
	p.undo = p.undo[:0]
	p.keys = append(p.keys[:0], p.key)
	return nil
}

// FEN produces the FEN string of the current position.
func (p *Position) FEN() string {
	var sb strings.Builder

	// 1. Piece placement
	for rank := 0; rank < 8; rank++ {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.squares[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(pc.Char())
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank < 7 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')

	// 2. Side to move
	if p.sideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')

	// 3. Castling rights
	if p.castlingRights == CastlingNone {
		sb.WriteByte('-')
	} else {
		if p.castlingRights&CastlingWhiteK != 0 {
			sb.WriteByte('K')
		}
		if p.castlingRights&CastlingWhiteQ != 0 {
			sb.WriteByte('Q')
		}
		if p.castlingRights&CastlingBlackK != 0 {
			sb.WriteByte('k')
		}
		if p.castlingRights&CastlingBlackQ != 0 {
			sb.WriteByte('q')
		}
	}
	sb.WriteByte(' ')

	// 4. En passant square
	sb.WriteString(p.enPassant.String())
	sb.WriteByte(' ')

	// 5-6. Clocks
	sb.WriteString(strconv.Itoa(p.halfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.fullmoveNumber))
	return sb.String()
}
