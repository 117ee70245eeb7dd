package board

// undoRecord holds everything Undo needs to restore the prior state exactly.
// Nothing is recomputed on undo.
type undoRecord struct {
	move          Move
	moved         Piece
	captured      Piece
	capturedOn    Square // differs from move.To for en passant
	prevCastling  CastlingRights
	prevEnPassant Square
	prevHalfmove  int
	prevFullmove  int
	prevKey       uint64
	rookFrom      Square // NoSquare unless castling
	rookTo        Square
}

// rookHomeRights maps a rook home square to the right it guards.
var rookHomeRights = map[Square]CastlingRights{
	NewSquare(0, 7): CastlingWhiteQ,
	NewSquare(7, 7): CastlingWhiteK,
	NewSquare(0, 0): CastlingBlackQ,
	NewSquare(7, 0): CastlingBlackK,
}

// isCastle reports whether m moves a king two files, which is only possible by castling.
func (p *Position) isCastle(m Move) bool {
	if m.Castle {
		return true
	}
	if p.squares[m.From].Type() != PieceTypeKing {
		return false
	}
	df := m.To.File() - m.From.File()
	return m.From.Rank() == m.To.Rank() && (df == 2 || df == -2)
}

// isEnPassant reports whether m is a pawn capture onto the en-passant target.
func (p *Position) isEnPassant(m Move) bool {
	return p.enPassant != NoSquare && m.To == p.enPassant &&
		p.squares[m.From].Type() == PieceTypePawn && m.From.File() != m.To.File()
}

// Apply plays m in place and returns the captured piece, or NoPiece.
//
// Apply does not validate the move; pass moves accepted by IsLegal or produced
// by LegalMoves. Every call pushes an undo record that Undo pops.
func (p *Position) Apply(m Move) Piece {
	moved := p.squares[m.From]
	us := moved.Color()
	rec := undoRecord{
		move:          m,
		moved:         moved,
		capturedOn:    m.To,
		prevCastling:  p.castlingRights,
		prevEnPassant: p.enPassant,
		prevHalfmove:  p.halfmoveClock,
		prevFullmove:  p.fullmoveNumber,
		prevKey:       p.key,
		rookFrom:      NoSquare,
		rookTo:        NoSquare,
	}
	enPassant := p.isEnPassant(m)
	castle := p.isCastle(m)

	// Record and lift the captured piece on the target square
	rec.captured = p.remove(m.To)

	// Move the piece, promoting if asked
	p.remove(m.From)
	placed := moved
	if m.Promotion != PieceTypeNone && moved.Type() == PieceTypePawn {
		placed = NewPiece(us, m.Promotion)
	}
	p.put(m.To, placed)

	// En passant: the captured pawn sits one rank behind the target
	if enPassant {
		rec.capturedOn = NewSquare(m.To.File(), m.To.Rank()-pawnForward(us))
		rec.captured = p.remove(rec.capturedOn)
	}

	// New en-passant target after a double step
	newEP := NoSquare
	if moved.Type() == PieceTypePawn {
		if dr := m.To.Rank() - m.From.Rank(); dr == 2 || dr == -2 {
			newEP = NewSquare(m.From.File(), m.From.Rank()+dr/2)
		}
	}
	p.setEnPassant(newEP)

	// Castling rook relocation next to the king's new square
	if castle {
		rookSq, step := castleGeometry(m.From, m.To > m.From)
		rec.rookFrom, rec.rookTo = rookSq, m.To-step
		p.put(rec.rookTo, p.remove(rec.rookFrom))
	}

	// Castling rights
	rights := p.castlingRights
	if moved.Type() == PieceTypeKing {
		rights &^= colorRights(us)
	}
	if r, ok := rookHomeRights[m.From]; ok && moved.Type() == PieceTypeRook {
		rights &^= r
	}
	if r, ok := rookHomeRights[rec.capturedOn]; ok && rec.captured.Type() == PieceTypeRook {
		rights &^= r
	}
	p.setCastlingRights(rights)

	// Clocks
	if moved.Type() == PieceTypePawn || rec.captured != NoPiece {
		p.halfmoveClock = 0
	} else {
		p.halfmoveClock++
	}
	if us == Black {
		p.fullmoveNumber++
	}

	p.sideToMove = us.Other()
	p.key ^= hashKeys.black

	p.undo = append(p.undo, rec)
	p.keys = append(p.keys, p.key)
	return rec.captured
}

// Undo restores the state before the most recent Apply.
// It panics if there is nothing to undo.
func (p *Position) Undo() {
	n := len(p.undo)
	if n == 0 {
		panic("board: Undo with empty history")
	}
	rec := p.undo[n-1]
	p.undo = p.undo[:n-1]
	p.keys = p.keys[:len(p.keys)-1]

	if rec.rookFrom != NoSquare {
		p.put(rec.rookFrom, p.remove(rec.rookTo))
	}
	p.remove(rec.move.To)
	p.put(rec.move.From, rec.moved)
	if rec.captured != NoPiece {
		p.put(rec.capturedOn, rec.captured)
	}

	p.sideToMove = rec.moved.Color()
	p.castlingRights = rec.prevCastling
	p.enPassant = rec.prevEnPassant
	p.halfmoveClock = rec.prevHalfmove
	p.fullmoveNumber = rec.prevFullmove
	// Ensure exact key restoration
	p.key = rec.prevKey
}
