package board_test

import (
	"testing"

	"chess-rules/board"
)

func mv(from, to string) board.Move {
	return board.Move{From: board.MustSquare(from), To: board.MustSquare(to)}
}

func TestEnPassantCapture(t *testing.T) {
	p := mustParse(t, "rnbqkbnr/ppp1pppp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	m := mv("e5", "f6")
	if !p.IsLegal(m) {
		t.Fatal("e5f6 en passant should be legal")
	}
	captured := p.Apply(m)
	if captured != board.BlackPawn {
		t.Fatalf("captured: got %v want black pawn", captured)
	}
	if !p.PieceAt(board.MustSquare("f5")).IsEmpty() {
		t.Fatal("f5 should be empty after en passant")
	}
	if p.PieceAt(board.MustSquare("f6")) != board.WhitePawn {
		t.Fatal("white pawn should stand on f6")
	}
	if p.EnPassant() != board.NoSquare {
		t.Fatal("en passant target must expire")
	}
	p.Undo()
	if got := p.FEN(); got != "rnbqkbnr/ppp1pppp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3" {
		t.Fatalf("undo: got %s", got)
	}
}

func TestDoubleStepSetsEnPassant(t *testing.T) {
	p := mustParse(t, board.StartFEN)
	p.Apply(mv("e2", "e4"))
	if got := p.FEN(); got != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
		t.Fatalf("after e4: %s", got)
	}
	p.Apply(mv("g8", "f6"))
	if got := p.FEN(); got != "rnbqkb1r/pppppppp/5n2/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 1 2" {
		t.Fatalf("after Nf6: %s", got)
	}
}

func TestCastlingMovesRook(t *testing.T) {
	p := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 3 10")
	p.Apply(board.Move{From: board.MustSquare("e1"), To: board.MustSquare("g1"), Castle: true})
	if got := p.FEN(); got != "r3k2r/8/8/8/8/8/8/R4RK1 b kq - 4 10" {
		t.Fatalf("after O-O: %s", got)
	}
	p.Apply(board.Move{From: board.MustSquare("e8"), To: board.MustSquare("c8"), Castle: true})
	if got := p.FEN(); got != "2kr3r/8/8/8/8/8/8/R4RK1 w - - 5 11" {
		t.Fatalf("after O-O-O: %s", got)
	}
	p.Undo()
	p.Undo()
	if got := p.FEN(); got != "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 3 10" {
		t.Fatalf("undo castling: %s", got)
	}
}

func TestCastlingRightsUpdates(t *testing.T) {
	p := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	p.Apply(mv("h1", "h8")) // rook leaves home and captures a rook on its home square
	if got := p.CastlingRights(); got != board.CastlingWhiteQ|board.CastlingBlackQ {
		t.Fatalf("rights after Rxh8: got %04b", got)
	}
	p.Undo()
	p.Apply(mv("a1", "a2"))
	if got := p.CastlingRights(); got != board.CastlingWhiteK|board.CastlingBlackK|board.CastlingBlackQ {
		t.Fatalf("rights after Ra2: got %04b", got)
	}
	p.Apply(mv("e8", "e7"))
	if got := p.CastlingRights(); got != board.CastlingWhiteK {
		t.Fatalf("rights after Ke7: got %04b", got)
	}
}

func TestPromotionApplyUndo(t *testing.T) {
	p := mustParse(t, "1n5k/P7/8/8/8/8/8/7K w - - 5 40")
	captured := p.Apply(board.Move{From: board.MustSquare("a7"), To: board.MustSquare("b8"), Promotion: board.PieceTypeKnight})
	if captured != board.BlackKnight {
		t.Fatalf("captured: got %v", captured)
	}
	if got := p.FEN(); got != "1N5k/8/8/8/8/8/8/7K b - - 0 40" {
		t.Fatalf("after axb8=N: %s", got)
	}
	p.Undo()
	if got := p.FEN(); got != "1n5k/P7/8/8/8/8/8/7K w - - 5 40" {
		t.Fatalf("undo promotion: %s", got)
	}
}

func TestApplyUndoRestoresEveryMove(t *testing.T) {
	for _, fen := range closureFENs {
		p := mustParse(t, fen)
		key := p.Key()
		for _, m := range p.LegalMoves() {
			p.Apply(m)
			// incremental key must match a from-scratch recomputation
			fresh := mustParse(t, p.FEN())
			if fresh.Key() != p.Key() {
				t.Fatalf("%s after %s: incremental key drifted", fen, m)
			}
			for _, reply := range p.LegalMoves() {
				p.Apply(reply)
				p.Undo()
			}
			p.Undo()
			if p.FEN() != fen || p.Key() != key {
				t.Fatalf("%s: undo of %s left %s", fen, m, p.FEN())
			}
		}
	}
}

func TestUndoOnEmptyHistoryPanics(t *testing.T) {
	p := mustParse(t, board.StartFEN)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	p.Undo()
}

func TestRepetitionsCount(t *testing.T) {
	p := mustParse(t, board.StartFEN)
	cycle := []board.Move{mv("g1", "f3"), mv("g8", "f6"), mv("f3", "g1"), mv("f6", "g8")}
	if p.Repetitions() != 1 {
		t.Fatalf("start: got %d", p.Repetitions())
	}
	for _, m := range cycle {
		p.Apply(m)
	}
	if p.Repetitions() != 2 {
		t.Fatalf("after one cycle: got %d", p.Repetitions())
	}
	for _, m := range cycle {
		p.Apply(m)
	}
	if p.Repetitions() != 3 {
		t.Fatalf("after two cycles: got %d", p.Repetitions())
	}
	p.Undo() // back to the knights-out position seen twice
	if p.Repetitions() != 2 {
		t.Fatalf("after undo: got %d", p.Repetitions())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := mustParse(t, board.StartFEN)
	p.Apply(mv("e2", "e4"))
	c := p.Clone()
	c.Apply(mv("e7", "e5"))
	c.Undo()
	c.Undo()
	if p.Ply() != 1 || p.FEN() != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
		t.Fatalf("clone mutated original: %s", p.FEN())
	}
	p.Undo()
	if p.FEN() != board.StartFEN {
		t.Fatal("original undo log broken by clone")
	}
}

func TestMaterialAndInsufficient(t *testing.T) {
	if got := mustParse(t, board.StartFEN).Material(); got != 0 {
		t.Fatalf("start material: %d", got)
	}
	if got := mustParse(t, "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1").Material(); got != 900 {
		t.Fatalf("white queen up: %d", got)
	}
	cases := map[string]bool{
		"8/8/4k3/8/8/8/8/4K3 w - - 0 1":   true,
		"8/8/4k3/8/8/8/8/3NK3 w - - 0 1":  true,
		"8/8/4k3/8/8/8/8/3bK3 w - - 0 1":  true,
		"8/8/4k3/8/8/8/8/2BBK3 w - - 0 1": false,
		"8/8/4k3/8/8/8/8/2BNK3 w - - 0 1": false,
		"8/8/4k3/8/8/8/4P3/4K3 w - - 0 1": false,
		"8/8/4k3/8/8/8/8/3RK3 w - - 0 1":  false,
	}
	for fen, want := range cases {
		if got := mustParse(t, fen).InsufficientMaterial(); got != want {
			t.Fatalf("%s: insufficient=%v want %v", fen, got, want)
		}
	}
}

func TestMoveText(t *testing.T) {
	m, err := board.ParseUCIMove("e7e8q")
	if err != nil {
		t.Fatal(err)
	}
	if m.From != board.MustSquare("e7") || m.To != board.MustSquare("e8") || m.Promotion != board.PieceTypeQueen {
		t.Fatalf("parsed %+v", m)
	}
	if m.String() != "e7e8q" {
		t.Fatalf("String: %s", m.String())
	}
	for _, bad := range []string{"", "e2", "e2e9", "e7e8k", "e2e4e5"} {
		if _, err := board.ParseUCIMove(bad); err == nil {
			t.Fatalf("ParseUCIMove(%q) should fail", bad)
		}
	}
}
