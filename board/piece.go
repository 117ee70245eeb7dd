package board

// Piece is a colored chess piece packed into one byte.
//
// The low three bits hold the type (1..6) and bit 3 marks Black, so
//   - piece & 7 gives the PieceType
//   - piece & 8 != 0 indicates Black
//
// NoPiece carries neither type nor color bits.
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = 1
	WhiteKnight Piece = 2
	WhiteBishop Piece = 3
	WhiteRook   Piece = 4
	WhiteQueen  Piece = 5
	WhiteKing   Piece = 6

	BlackPawn   Piece = 1 | blackBit
	BlackKnight Piece = 2 | blackBit
	BlackBishop Piece = 3 | blackBit
	BlackRook   Piece = 4 | blackBit
	BlackQueen  Piece = 5 | blackBit
	BlackKing   Piece = 6 | blackBit
)

const (
	typeMask Piece = 7
	blackBit Piece = 8
)

// PieceType is a colorless piece kind, used for promotions and table lookups.
type PieceType uint8

const (
	PieceTypeNone   PieceType = 0
	PieceTypePawn   PieceType = 1
	PieceTypeKnight PieceType = 2
	PieceTypeBishop PieceType = 3
	PieceTypeRook   PieceType = 4
	PieceTypeQueen  PieceType = 5
	PieceTypeKing   PieceType = 6
)

// promotionTypes lists the legal promotion choices in generation order.
var promotionTypes = [4]PieceType{PieceTypeQueen, PieceTypeRook, PieceTypeBishop, PieceTypeKnight}

// Color is the side owning a piece or the side to move.
type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposing color.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// NewPiece combines a color and a type. PieceTypeNone yields NoPiece.
func NewPiece(c Color, pt PieceType) Piece {
	if pt == PieceTypeNone || pt > PieceTypeKing {
		return NoPiece
	}
	p := Piece(pt)
	if c == Black {
		p |= blackBit
	}
	return p
}

// Type returns the colorless type of the piece.
func (p Piece) Type() PieceType { return PieceType(p & typeMask) }

// Color returns the owner of the piece. NoPiece reports White; check IsEmpty first.
func (p Piece) Color() Color {
	if p&blackBit != 0 {
		return Black
	}
	return White
}

// IsEmpty reports whether the square holding p is vacant.
func (p Piece) IsEmpty() bool { return p == NoPiece }

// Is reports whether p is a piece of the given color and type.
func (p Piece) Is(c Color, pt PieceType) bool { return p != NoPiece && p.Color() == c && p.Type() == pt }

// IsSlider reports whether the piece moves along rays.
func (p Piece) IsSlider() bool {
	t := p.Type()
	return t == PieceTypeBishop || t == PieceTypeRook || t == PieceTypeQueen
}

// Char returns the FEN letter of the piece, or '.' for NoPiece.
func (p Piece) Char() byte {
	if p == NoPiece {
		return '.'
	}
	c := pieceLetters[p.Type()]
	if p.Color() == White {
		c -= 'a' - 'A'
	}
	return c
}

func (p Piece) String() string { return string(p.Char()) }

var pieceLetters = [7]byte{'.', 'p', 'n', 'b', 'r', 'q', 'k'}

// pieceFromChar converts a FEN letter to a Piece. Unknown letters give NoPiece.
func pieceFromChar(ch byte) Piece {
	switch ch {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}

// pieceTypeFromChar maps a lowercase promotion letter to its type.
func pieceTypeFromChar(ch byte) PieceType {
	switch ch {
	case 'n':
		return PieceTypeKnight
	case 'b':
		return PieceTypeBishop
	case 'r':
		return PieceTypeRook
	case 'q':
		return PieceTypeQueen
	default:
		return PieceTypeNone
	}
}

// Material values in centipawns, indexed by PieceType. Kings carry no material.
var pieceValues = [7]int{0, 100, 300, 300, 500, 900, 0}

// Value returns the material value of a piece type in centipawns.
func (pt PieceType) Value() int { return pieceValues[pt] }

// CastlingRights is a bitmask of the four castling permissions.
type CastlingRights uint8

const (
	// White king-side (short) castling
	CastlingWhiteK CastlingRights = 1 << iota
	// White queen-side (long) castling
	CastlingWhiteQ
	// Black king-side castling
	CastlingBlackK
	// Black queen-side castling
	CastlingBlackQ

	CastlingNone CastlingRights = 0
	CastlingAll                 = CastlingWhiteK | CastlingWhiteQ | CastlingBlackK | CastlingBlackQ
)

// Has reports whether every right in r2 is present in r.
func (r CastlingRights) Has(r2 CastlingRights) bool { return r&r2 == r2 }

// castlingRight returns the right for a color on the king (true) or queen side.
func castlingRight(c Color, kingSide bool) CastlingRights {
	switch {
	case c == White && kingSide:
		return CastlingWhiteK
	case c == White:
		return CastlingWhiteQ
	case kingSide:
		return CastlingBlackK
	default:
		return CastlingBlackQ
	}
}

func colorRights(c Color) CastlingRights {
	if c == White {
		return CastlingWhiteK | CastlingWhiteQ
	}
	return CastlingBlackK | CastlingBlackQ
}
