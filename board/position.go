package board

// Position is the mutable game state: piece placement plus side to move,
// castling rights, en-passant target and move clocks. It also carries the undo
// log used by Undo and the key history used for repetition counting.
//
// A Position is owned by one goroutine at a time. Use Clone to hand a copy to
// another goroutine.
type Position struct {
	// Piece placement, row-major in FEN order (index 0 is a8)
	squares [64]Piece

	// King squares per color, NoSquare if the king is missing
	kings [2]Square

	sideToMove     Color
	castlingRights CastlingRights

	// Square a pawn may capture onto right after an opposing double step, else NoSquare
	enPassant Square

	// Half-moves since the last pawn move or capture (50-move rule)
	halfmoveClock int

	// Starts at 1, incremented after Black's move
	fullmoveNumber int

	// Zobrist key of the current position
	key uint64

	// Undo log, one record per applied move
	undo []undoRecord

	// Keys of every position since load, current position last
	keys []uint64
}

// NewPosition returns the standard initial position.
func NewPosition() *Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// PieceAt returns the piece on sq.
func (p *Position) PieceAt(sq Square) Piece { return p.squares[sq] }

// MustPiece returns the piece on sq and panics if the square is empty.
// Callers asking for the moves of an empty square have violated their contract.
func (p *Position) MustPiece(sq Square) Piece {
	pc := p.squares[sq]
	if pc == NoPiece {
		panic("board: no piece on " + sq.String())
	}
	return pc
}

// SideToMove reports which side is to play.
func (p *Position) SideToMove() Color { return p.sideToMove }

// CastlingRights returns the current castling permissions.
func (p *Position) CastlingRights() CastlingRights { return p.castlingRights }

// EnPassant returns the en-passant target square or NoSquare.
func (p *Position) EnPassant() Square { return p.enPassant }

// HalfmoveClock returns the number of half-moves since the last pawn move or capture.
func (p *Position) HalfmoveClock() int { return p.halfmoveClock }

// FullmoveNumber returns the full move counter.
func (p *Position) FullmoveNumber() int { return p.fullmoveNumber }

// KingSquare returns the square of color's king or NoSquare.
func (p *Position) KingSquare(c Color) Square { return p.kings[c] }

// Key returns the Zobrist key of the current position.
func (p *Position) Key() uint64 { return p.key }

// Ply returns how many moves have been applied since the position was loaded.
func (p *Position) Ply() int { return len(p.undo) }

// Clone returns an independent deep copy, including undo log and key history.
func (p *Position) Clone() *Position {
	c := *p
	c.undo = append(make([]undoRecord, 0, cap(p.undo)), p.undo...)
	c.keys = append(make([]uint64, 0, cap(p.keys)), p.keys...)
	return &c
}

// Equal reports whether two positions describe the same FEN state.
// History is not compared.
func (p *Position) Equal(o *Position) bool {
	return p.squares == o.squares &&
		p.sideToMove == o.sideToMove &&
		p.castlingRights == o.castlingRights &&
		p.enPassant == o.enPassant &&
		p.halfmoveClock == o.halfmoveClock &&
		p.fullmoveNumber == o.fullmoveNumber
}

// Repetitions counts how often the current position occurred since load,
// the current occurrence included.
func (p *Position) Repetitions() int {
	n := 0
	for _, k := range p.keys {
		if k == p.key {
			n++
		}
	}
	return n
}

// Material returns the signed material balance in centipawns.
// Positive values favor White.
func (p *Position) Material() int {
	score := 0
	for _, pc := range p.squares {
		if pc == NoPiece {
			continue
		}
		if pc.Color() == White {
			score += pc.Type().Value()
		} else {
			score -= pc.Type().Value()
		}
	}
	return score
}

// InsufficientMaterial reports whether neither side can force mate:
// king versus king, or king and a single minor piece versus king.
func (p *Position) InsufficientMaterial() bool {
	minors := 0
	for _, pc := range p.squares {
		switch pc.Type() {
		case PieceTypePawn, PieceTypeRook, PieceTypeQueen:
			return false
		case PieceTypeKnight, PieceTypeBishop:
			minors++
		}
	}
	return minors <= 1
}

// ==========================
// Square mutation helpers
// ==========================

// computeKey sums the key of the position from scratch; put, remove and the
// setters below keep p.key equal to it incrementally.
func (p *Position) computeKey() uint64 {
	var key uint64
	for sq, pc := range p.squares {
		if pc != NoPiece {
			key ^= hashKeys.piece[pc][sq]
		}
	}
	key ^= hashKeys.castle[p.castlingRights]
	if p.enPassant != NoSquare {
		key ^= hashKeys.enPassant[p.enPassant.File()]
	}
	if p.sideToMove == Black {
		key ^= hashKeys.black
	}
	return key
}

// put places pc on an empty square and keeps the key and king cache in sync.
func (p *Position) put(sq Square, pc Piece) {
	p.squares[sq] = pc
	p.key ^= hashKeys.piece[pc][sq]
	if pc.Type() == PieceTypeKing {
		p.kings[pc.Color()] = sq
	}
}

// remove clears sq and returns what was there.
func (p *Position) remove(sq Square) Piece {
	pc := p.squares[sq]
	if pc == NoPiece {
		return NoPiece
	}
	p.squares[sq] = NoPiece
	p.key ^= hashKeys.piece[pc][sq]
	return pc
}

func (p *Position) setCastlingRights(r CastlingRights) {
	if r == p.castlingRights {
		return
	}
	p.key ^= hashKeys.castle[p.castlingRights] ^ hashKeys.castle[r]
	p.castlingRights = r
}

func (p *Position) setEnPassant(sq Square) {
	if p.enPassant != NoSquare {
		p.key ^= hashKeys.enPassant[p.enPassant.File()]
	}
	p.enPassant = sq
	if sq != NoSquare {
		p.key ^= hashKeys.enPassant[sq.File()]
	}
}

// String draws the board as eight text rows, eighth rank first.
func (p *Position) String() string {
	buf := make([]byte, 0, 8*9)
	for sq := Square(0); sq < 64; sq++ {
		buf = append(buf, p.squares[sq].Char())
		if sq.File() == 7 {
			buf = append(buf, '\n')
		}
	}
	return string(buf)
}
