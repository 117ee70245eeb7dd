package board

import "errors"

// Square is a board index in 0..63, laid out row-major in FEN order:
// index = rank*8 + file where rank 0 is the eighth rank (Black's back rank)
// and file 0 is the a-file. So a8 = 0, h8 = 7, a1 = 56, h1 = 63.
type Square int

// NoSquare marks an absent square (no en-passant target, missing king).
const NoSquare Square = -1

// ErrInvalidSquare is returned for text that is not a square name like "e2".
var ErrInvalidSquare = errors.New("invalid square")

// NewSquare builds a square from a file (0 = a) and a FEN rank index (0 = eighth rank).
func NewSquare(file, rank int) Square { return Square(rank*8 + file) }

// File returns the file index, 0 for the a-file.
func (s Square) File() int { return int(s) & 7 }

// Rank returns the FEN rank index, 0 for the eighth rank.
func (s Square) Rank() int { return int(s) >> 3 }

// Valid reports whether s is on the board.
func (s Square) Valid() bool { return s >= 0 && s < 64 }

// String returns the algebraic name, e.g. "e2", or "-" for NoSquare.
func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{'a' + byte(s.File()), '8' - byte(s.Rank())})
}

// ParseSquare converts an algebraic name such as "e2" to a Square.
func ParseSquare(alg string) (Square, error) {
	if len(alg) != 2 {
		return NoSquare, ErrInvalidSquare
	}
	file, rank := alg[0], alg[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, ErrInvalidSquare
	}
	return NewSquare(int(file-'a'), int('8'-rank)), nil
}

// MustSquare is ParseSquare for constant names; it panics on bad input.
func MustSquare(alg string) Square {
	sq, err := ParseSquare(alg)
	if err != nil {
		panic("board.MustSquare: " + alg)
	}
	return sq
}

// ==========================
// Precomputed tables
// ==========================

// direction is a (file, rank) step on the board.
type direction struct{ df, dr int }

// Ray directions: the first four are orthogonal, the last four diagonal.
var directions = [8]direction{
	{0, -1}, {0, 1}, {1, 0}, {-1, 0},
	{1, -1}, {-1, -1}, {1, 1}, {-1, 1},
}

func isOrthogonal(dir int) bool { return dir < 4 }

var knightOffsets = [8]direction{
	{1, -2}, {2, -1}, {2, 1}, {1, 2},
	{-1, 2}, {-2, 1}, {-2, -1}, {-1, -2},
}

var (
	// rays[sq][dir] lists squares from sq outward along dir, excluding sq.
	rays [64][8][]Square
	// knightTargets and kingTargets hold the on-board squares one jump away.
	knightTargets [64][]Square
	kingTargets   [64][]Square
	// pawnAttacks[color][sq] lists the squares a pawn of color on sq attacks.
	pawnAttacks [2][64][]Square
)

func init() {
	initAttackTables()
	initRays()
}

func onBoard(file, rank int) bool { return file >= 0 && file < 8 && rank >= 0 && rank < 8 }

// initAttackTables precomputes jump targets for knights, kings and pawn captures.
func initAttackTables() {
	for sq := Square(0); sq < 64; sq++ {
		f, r := sq.File(), sq.Rank()
		for _, off := range knightOffsets {
			if onBoard(f+off.df, r+off.dr) {
				knightTargets[sq] = append(knightTargets[sq], NewSquare(f+off.df, r+off.dr))
			}
		}
		for _, d := range directions {
			if onBoard(f+d.df, r+d.dr) {
				kingTargets[sq] = append(kingTargets[sq], NewSquare(f+d.df, r+d.dr))
			}
		}
		for _, c := range [2]Color{White, Black} {
			dr := pawnForward(c)
			for _, df := range [2]int{-1, 1} {
				if onBoard(f+df, r+dr) {
					pawnAttacks[c][sq] = append(pawnAttacks[c][sq], NewSquare(f+df, r+dr))
				}
			}
		}
	}
}

// initRays precomputes the slider rays for every square and direction.
func initRays() {
	for sq := Square(0); sq < 64; sq++ {
		for dir, d := range directions {
			f, r := sq.File()+d.df, sq.Rank()+d.dr
			for onBoard(f, r) {
				rays[sq][dir] = append(rays[sq][dir], NewSquare(f, r))
				f, r = f+d.df, r+d.dr
			}
		}
	}
}

// pawnForward is the rank step of a pawn of color c. White walks toward rank index 0.
func pawnForward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// pawnStartRank is the FEN rank index pawns of color c double-step from.
func pawnStartRank(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

// promotionRank is the FEN rank index where pawns of color c promote.
func promotionRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

// backRank is the FEN rank index of color c's home rank.
func backRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// kingHomeFile is the file both kings start on.
const kingHomeFile = 4
