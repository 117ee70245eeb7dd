package board

// ==========================
// Pseudo-legal generation
// ==========================

// PseudoLegalTargets returns the squares the piece on sq could physically
// move to, ignoring whether the move would leave its own king in check.
// The order is deterministic. An empty square yields nil.
func (p *Position) PseudoLegalTargets(sq Square) []Square {
	if !sq.Valid() || p.squares[sq] == NoPiece {
		return nil
	}
	return p.appendPseudoTargets(make([]Square, 0, 28), sq)
}

// appendPseudoTargets appends the pseudo-legal targets of the piece on sq to dst.
func (p *Position) appendPseudoTargets(dst []Square, sq Square) []Square {
	pc := p.squares[sq]
	us := pc.Color()
	switch pc.Type() {
	case PieceTypePawn:
		return p.appendPawnTargets(dst, sq, us)
	case PieceTypeKnight:
		return p.appendJumpTargets(dst, knightTargets[sq], us)
	case PieceTypeBishop:
		return p.appendSliderTargets(dst, sq, us, 4, 8)
	case PieceTypeRook:
		return p.appendSliderTargets(dst, sq, us, 0, 4)
	case PieceTypeQueen:
		return p.appendSliderTargets(dst, sq, us, 0, 8)
	case PieceTypeKing:
		dst = p.appendJumpTargets(dst, kingTargets[sq], us)
		return p.appendCastleTargets(dst, sq, us)
	}
	return dst
}

// appendSliderTargets walks rays dirFrom..dirTo-1 until blocked. An enemy
// blocker is included as a capture, a friendly one is not.
func (p *Position) appendSliderTargets(dst []Square, sq Square, us Color, dirFrom, dirTo int) []Square {
	for dir := dirFrom; dir < dirTo; dir++ {
		for _, t := range rays[sq][dir] {
			occ := p.squares[t]
			if occ == NoPiece {
				dst = append(dst, t)
				continue
			}
			if occ.Color() != us {
				dst = append(dst, t)
			}
			break
		}
	}
	return dst
}

// appendJumpTargets keeps the table squares not occupied by our own pieces.
func (p *Position) appendJumpTargets(dst []Square, table []Square, us Color) []Square {
	for _, t := range table {
		occ := p.squares[t]
		if occ == NoPiece || occ.Color() != us {
			dst = append(dst, t)
		}
	}
	return dst
}

func (p *Position) appendPawnTargets(dst []Square, sq Square, us Color) []Square {
	f, r := sq.File(), sq.Rank()
	fwd := pawnForward(us)

	// Pushes
	if onBoard(f, r+fwd) {
		one := NewSquare(f, r+fwd)
		if p.squares[one] == NoPiece {
			dst = append(dst, one)
			if r == pawnStartRank(us) {
				two := NewSquare(f, r+2*fwd)
				if p.squares[two] == NoPiece {
					dst = append(dst, two)
				}
			}
		}
	}

	// Captures, including onto the en-passant target
	for _, t := range pawnAttacks[us][sq] {
		occ := p.squares[t]
		if (occ != NoPiece && occ.Color() != us) || (occ == NoPiece && t == p.enPassant) {
			dst = append(dst, t)
		}
	}
	return dst
}

// appendCastleTargets adds the two-file king steps allowed by the castling
// rights when every square between king and rook is empty. The rook home file
// and the path are derived from the king's file, so both wings share one rule.
func (p *Position) appendCastleTargets(dst []Square, sq Square, us Color) []Square {
	if sq.Rank() != backRank(us) || sq.File() != kingHomeFile {
		return dst
	}
	for _, kingSide := range [2]bool{true, false} {
		if !p.castlingRights.Has(castlingRight(us, kingSide)) {
			continue
		}
		rookSq, step := castleGeometry(sq, kingSide)
		if !p.squares[rookSq].Is(us, PieceTypeRook) {
			continue
		}
		clear := true
		for t := sq + step; t != rookSq; t += step {
			if p.squares[t] != NoPiece {
				clear = false
				break
			}
		}
		if clear {
			dst = append(dst, sq+2*step)
		}
	}
	return dst
}

// castleGeometry returns the rook home square and the file step from the king
// toward it for the given wing.
func castleGeometry(kingSq Square, kingSide bool) (rookSq Square, step Square) {
	if kingSide {
		return NewSquare(7, kingSq.Rank()), 1
	}
	return NewSquare(0, kingSq.Rank()), -1
}

// ==========================
// Attack queries
// ==========================

// Attacked reports whether sq is attacked by any piece of color by.
func (p *Position) Attacked(sq Square, by Color) bool {
	// Pawn attacks via the reverse table: a pawn of "by" attacks sq iff it
	// stands on a square that a pawn of the other color on sq would attack.
	for _, s := range pawnAttacks[by.Other()][sq] {
		if p.squares[s].Is(by, PieceTypePawn) {
			return true
		}
	}
	for _, s := range knightTargets[sq] {
		if p.squares[s].Is(by, PieceTypeKnight) {
			return true
		}
	}
	for _, s := range kingTargets[sq] {
		if p.squares[s].Is(by, PieceTypeKing) {
			return true
		}
	}
	for dir := 0; dir < 8; dir++ {
		if blocker := p.firstOnRay(sq, dir); blocker != NoSquare {
			if slidesAlong(p.squares[blocker], by, dir) {
				return true
			}
		}
	}
	return false
}

// attackers lists the squares of every piece of color by that attacks sq.
func (p *Position) attackers(sq Square, by Color) []Square {
	var out []Square
	for _, s := range pawnAttacks[by.Other()][sq] {
		if p.squares[s].Is(by, PieceTypePawn) {
			out = append(out, s)
		}
	}
	for _, s := range knightTargets[sq] {
		if p.squares[s].Is(by, PieceTypeKnight) {
			out = append(out, s)
		}
	}
	for _, s := range kingTargets[sq] {
		if p.squares[s].Is(by, PieceTypeKing) {
			out = append(out, s)
		}
	}
	for dir := 0; dir < 8; dir++ {
		if blocker := p.firstOnRay(sq, dir); blocker != NoSquare && slidesAlong(p.squares[blocker], by, dir) {
			out = append(out, blocker)
		}
	}
	return out
}

// firstOnRay returns the first occupied square from sq along dir, or NoSquare.
func (p *Position) firstOnRay(sq Square, dir int) Square {
	for _, t := range rays[sq][dir] {
		if p.squares[t] != NoPiece {
			return t
		}
	}
	return NoSquare
}

// slidesAlong reports whether pc belongs to color c and attacks along dir.
func slidesAlong(pc Piece, c Color, dir int) bool {
	if pc == NoPiece || pc.Color() != c {
		return false
	}
	switch pc.Type() {
	case PieceTypeQueen:
		return true
	case PieceTypeRook:
		return isOrthogonal(dir)
	case PieceTypeBishop:
		return !isOrthogonal(dir)
	}
	return false
}

// InCheck reports whether color's king is attacked. A missing king is never in check.
func (p *Position) InCheck(c Color) bool {
	ks := p.kings[c]
	if ks == NoSquare {
		return false
	}
	return p.Attacked(ks, c.Other())
}
