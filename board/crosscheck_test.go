package board_test

import (
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"golang.org/x/exp/slices"

	"chess-rules/board"
)

// referenceMoves lists dragontoothmg's legal moves in coordinate notation.
func referenceMoves(fen string) []string {
	ref := dragontoothmg.ParseFen(fen)
	moves := ref.GenerateLegalMoves()
	out := make([]string, 0, len(moves))
	for i := range moves {
		out = append(out, moves[i].String())
	}
	slices.Sort(out)
	return out
}

func ourMoves(p *board.Position) []string {
	moves := p.LegalMoves()
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	slices.Sort(out)
	return out
}

func TestLegalMovesMatchReferenceGenerator(t *testing.T) {
	for _, fen := range closureFENs {
		if fen == epPinFEN {
			continue // covered by TestEnPassantDiscoveredCheckIsIllegal
		}
		p := mustParse(t, fen)
		got, want := ourMoves(p), referenceMoves(fen)
		if !slices.Equal(got, want) {
			t.Fatalf("%s:\n got  %v\n want %v", fen, got, want)
		}
	}
}

func TestLegalMovesMatchReferenceAlongGames(t *testing.T) {
	// Walk the first reply tree two plies deep and compare every node.
	for _, fen := range []string{board.StartFEN, kiwipeteFEN} {
		p := mustParse(t, fen)
		for _, m := range p.LegalMoves() {
			p.Apply(m)
			for _, reply := range p.LegalMoves() {
				p.Apply(reply)
				got, want := ourMoves(p), referenceMoves(p.FEN())
				if !slices.Equal(got, want) {
					t.Fatalf("%s after %s %s:\n got  %v\n want %v", fen, m, reply, got, want)
				}
				p.Undo()
			}
			p.Undo()
		}
	}
}
