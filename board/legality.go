package board

import "golang.org/x/exp/slices"

// IsLegal reports whether m may be played in the current position.
//
// The move must start on a piece of the side to move and match one of its
// pseudo-legal targets. It is then simulated, and rejected if the mover's own
// king is attacked afterwards. Castling additionally requires that the king is
// not in check and does not cross an attacked square. Pawn moves onto the last
// rank need a promotion to knight, bishop, rook or queen; any other move must
// not name one.
func (p *Position) IsLegal(m Move) bool {
	if !m.From.Valid() || !m.To.Valid() {
		return false
	}
	pc := p.squares[m.From]
	if pc == NoPiece || pc.Color() != p.sideToMove {
		return false
	}
	if m.Castle && !p.isCastle(Move{From: m.From, To: m.To}) {
		return false
	}
	if !p.promotionFits(pc, m) {
		return false
	}
	var buf [32]Square
	if !slices.Contains(p.appendPseudoTargets(buf[:0], m.From), m.To) {
		return false
	}
	return p.kingSafeAfter(m)
}

// promotionFits checks the promotion field against the moving piece and target.
func (p *Position) promotionFits(pc Piece, m Move) bool {
	if pc.Type() == PieceTypePawn && m.To.Rank() == promotionRank(pc.Color()) {
		return slices.Contains(promotionTypes[:], m.Promotion)
	}
	return m.Promotion == PieceTypeNone
}

// kingSafeAfter simulates a pseudo-legal move and reports whether the mover's
// king is safe afterwards. Castling also checks the start and crossed squares.
func (p *Position) kingSafeAfter(m Move) bool {
	us := p.sideToMove
	if p.isCastle(m) {
		_, step := castleGeometry(m.From, m.To > m.From)
		if p.Attacked(m.From, us.Other()) || p.Attacked(m.From+step, us.Other()) {
			return false
		}
	}
	p.Apply(m)
	safe := !p.InCheck(us)
	p.Undo()
	return safe
}

// LegalTargets returns the squares the piece on sq may legally move to.
// A pawn promotion target is listed once. Pieces of the side not to move have
// no legal targets.
func (p *Position) LegalTargets(sq Square) []Square {
	if !sq.Valid() {
		return nil
	}
	pc := p.MustPiece(sq)
	if pc.Color() != p.sideToMove {
		return nil
	}
	var buf [32]Square
	out := make([]Square, 0, 8)
	for _, t := range p.appendPseudoTargets(buf[:0], sq) {
		if p.kingSafeAfter(p.probeMove(pc, sq, t)) {
			out = append(out, t)
		}
	}
	return out
}

// probeMove builds the move from sq to t, picking a queen for promotions.
// The promotion piece never changes whether the mover's king is safe.
func (p *Position) probeMove(pc Piece, sq, t Square) Move {
	m := Move{From: sq, To: t}
	if pc.Type() == PieceTypePawn && t.Rank() == promotionRank(pc.Color()) {
		m.Promotion = PieceTypeQueen
	}
	if p.isCastle(m) {
		m.Castle = true
	}
	return m
}

// LegalMoves returns every legal move for the side to move, ordered by origin
// square (a8 first), then target generation order. Promotions are expanded to
// queen, rook, bishop and knight.
func (p *Position) LegalMoves() []Move {
	return p.AppendLegalMoves(make([]Move, 0, 64))
}

// AppendLegalMoves appends the legal moves to dst and returns the extended slice.
func (p *Position) AppendLegalMoves(dst []Move) []Move {
	us := p.sideToMove
	// In double check only the king can move.
	doubleCheck := false
	if ks := p.kings[us]; ks != NoSquare {
		doubleCheck = len(p.attackers(ks, us.Other())) > 1
	}
	var buf [32]Square
	for sq := Square(0); sq < 64; sq++ {
		pc := p.squares[sq]
		if pc == NoPiece || pc.Color() != us {
			continue
		}
		if doubleCheck && pc.Type() != PieceTypeKing {
			continue
		}
		for _, t := range p.appendPseudoTargets(buf[:0], sq) {
			m := p.probeMove(pc, sq, t)
			if !p.kingSafeAfter(m) {
				continue
			}
			if m.Promotion == PieceTypeNone {
				dst = append(dst, m)
				continue
			}
			for _, pt := range promotionTypes {
				m.Promotion = pt
				dst = append(dst, m)
			}
		}
	}
	return dst
}

// HasLegalMoves reports whether the side to move has at least one legal move.
func (p *Position) HasLegalMoves() bool {
	var buf [32]Square
	for sq := Square(0); sq < 64; sq++ {
		pc := p.squares[sq]
		if pc == NoPiece || pc.Color() != p.sideToMove {
			continue
		}
		for _, t := range p.appendPseudoTargets(buf[:0], sq) {
			if p.kingSafeAfter(p.probeMove(pc, sq, t)) {
				return true
			}
		}
	}
	return false
}

// ==========================
// Check and pin descriptors
// ==========================

// CheckInfo describes the check and pin situation of the side to move.
type CheckInfo struct {
	// InCheck is set when the king is attacked.
	InCheck bool
	// DoubleCheck is set when two pieces give check; only king moves help.
	DoubleCheck bool
	// Checkers lists the attacking pieces.
	Checkers []Square
	// BlockSquares holds the squares a non-king move may go to in single check:
	// the checker itself and, for a slider, the squares between it and the king.
	BlockSquares []Square
	// Pins maps a pinned piece to the squares it may still move along,
	// from next to the king up to and including the pinning piece.
	Pins map[Square][]Square
}

// Checks computes the check and pin descriptor for the side to move.
func (p *Position) Checks() CheckInfo {
	us := p.sideToMove
	info := CheckInfo{Pins: map[Square][]Square{}}
	ks := p.kings[us]
	if ks == NoSquare {
		return info
	}
	info.Checkers = p.attackers(ks, us.Other())
	info.InCheck = len(info.Checkers) > 0
	info.DoubleCheck = len(info.Checkers) > 1

	if info.InCheck && !info.DoubleCheck {
		c := info.Checkers[0]
		if p.squares[c].IsSlider() {
			for dir := 0; dir < 8; dir++ {
				if line, ok := rayUntil(ks, dir, c); ok {
					info.BlockSquares = line
					break
				}
			}
		}
		if info.BlockSquares == nil {
			info.BlockSquares = []Square{c}
		}
	}

	// For each ray from the king: a friendly piece followed by an enemy
	// slider moving along that ray is pinned.
	for dir := 0; dir < 8; dir++ {
		first := p.firstOnRay(ks, dir)
		if first == NoSquare || p.squares[first].Color() != us {
			continue
		}
		pinner := NoSquare
		for _, t := range rays[first][dir] {
			if p.squares[t] != NoPiece {
				pinner = t
				break
			}
		}
		if pinner != NoSquare && slidesAlong(p.squares[pinner], us.Other(), dir) {
			line, _ := rayUntil(ks, dir, pinner)
			info.Pins[first] = line
		}
	}
	return info
}

// rayUntil returns the squares from sq along dir up to and including stop.
func rayUntil(sq Square, dir int, stop Square) ([]Square, bool) {
	ray := rays[sq][dir]
	i := slices.Index(ray, stop)
	if i < 0 {
		return nil, false
	}
	return append([]Square(nil), ray[:i+1]...), true
}
