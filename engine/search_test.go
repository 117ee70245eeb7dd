package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess-rules/board"
	"chess-rules/engine"
)

func mustParse(t testing.TB, fen string) *board.Position {
	t.Helper()
	p, err := board.ParseFEN(fen)
	require.NoError(t, err)
	return p
}

// minimax is the unpruned reference search: first move found wins ties.
func minimax(p *board.Position, depth int) (board.Move, int) {
	if depth == 0 {
		return board.NullMove, p.Material()
	}
	moves := p.LegalMoves()
	side := p.SideToMove()
	if len(moves) == 0 {
		switch {
		case !p.InCheck(side):
			return board.NullMove, engine.DrawScore
		case side == board.White:
			return board.NullMove, -(engine.MateScore + depth)
		default:
			return board.NullMove, engine.MateScore + depth
		}
	}
	var best board.Move
	var bestScore int
	for i, m := range moves {
		p.Apply(m)
		_, score := minimax(p, depth-1)
		p.Undo()
		if i == 0 || (side == board.White && score > bestScore) || (side == board.Black && score < bestScore) {
			best, bestScore = m, score
		}
	}
	return best, bestScore
}

func TestSearchMatchesPlainMinimax(t *testing.T) {
	cases := []struct {
		fen   string
		depth int
	}{
		{board.StartFEN, 3},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 3},
		{"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 2},
		{"rnbqkbnr/ppp1pppp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3", 2},
		{"r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1", 3},
	}
	for _, tc := range cases {
		p := mustParse(t, tc.fen)
		wantMove, wantScore := minimax(p, tc.depth)
		res, err := engine.Search(context.Background(), p, tc.depth)
		require.NoError(t, err, tc.fen)
		assert.Equal(t, wantMove, res.Move, "%s depth %d", tc.fen, tc.depth)
		assert.Equal(t, wantScore, res.Score, "%s depth %d", tc.fen, tc.depth)
	}
}

func TestBestMoveFindsMateInOne(t *testing.T) {
	p := mustParse(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	m, ok := engine.BestMove(context.Background(), p, 2)
	require.True(t, ok)
	assert.Equal(t, "a1a8", m.String())

	p = mustParse(t, "r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1")
	res, err := engine.Search(context.Background(), p, 2)
	require.NoError(t, err)
	assert.Equal(t, "a8a1", res.Move.String())
	assert.Equal(t, -(engine.MateScore + 1), res.Score)
}

func TestBestMoveWinsMaterial(t *testing.T) {
	p := mustParse(t, "4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1")
	m, ok := engine.BestMove(context.Background(), p, 1)
	require.True(t, ok)
	assert.Equal(t, "d1d5", m.String())
}

func TestBestMoveDeterministic(t *testing.T) {
	p := mustParse(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	first, ok := engine.BestMove(context.Background(), p, 2)
	require.True(t, ok)
	second, ok := engine.BestMove(context.Background(), p, 2)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestBestMoveLeavesPositionUntouched(t *testing.T) {
	p := mustParse(t, board.StartFEN)
	p.Apply(board.Move{From: board.MustSquare("e2"), To: board.MustSquare("e4")})
	before := p.FEN()
	_, ok := engine.BestMove(context.Background(), p, 3)
	require.True(t, ok)
	assert.Equal(t, before, p.FEN())
	assert.Equal(t, 1, p.Ply())
}

func TestBestMoveWithoutLegalMoves(t *testing.T) {
	stalemate := mustParse(t, "k7/8/1Q6/8/8/8/8/7K b - - 0 1")
	_, ok := engine.BestMove(context.Background(), stalemate, 3)
	assert.False(t, ok)

	mated := mustParse(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	res, err := engine.Search(context.Background(), mated, 2)
	require.NoError(t, err)
	assert.Equal(t, board.NullMove, res.Move)
	assert.Equal(t, -(engine.MateScore + 2), res.Score)
}

func TestSearchHonorsCancellation(t *testing.T) {
	p := mustParse(t, board.StartFEN)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.Search(ctx, p, 3)
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := engine.BestMove(ctx, p, 3)
	assert.False(t, ok)

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = engine.Search(ctx, p, 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, board.StartFEN, p.FEN())
}

func TestSearchClampsDepth(t *testing.T) {
	p := mustParse(t, "4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1")
	res, err := engine.Search(context.Background(), p, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Depth)
	assert.Equal(t, "d1d5", res.Move.String())
}

func TestThinkDepthLimitMatchesSearch(t *testing.T) {
	p := mustParse(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	want, err := engine.Search(context.Background(), p, 2)
	require.NoError(t, err)

	var depths []int
	got, err := engine.Think(context.Background(), p, engine.Limits{Depth: 2}, func(r engine.Result) {
		depths = append(depths, r.Depth)
	})
	require.NoError(t, err)
	assert.Equal(t, want.Move, got.Move)
	assert.Equal(t, want.Score, got.Score)
	assert.Equal(t, []int{1, 2}, depths)
}

func TestThinkMoveTime(t *testing.T) {
	p := mustParse(t, board.StartFEN)
	start := time.Now()
	res, err := engine.Think(context.Background(), p, engine.Limits{MoveTime: 50 * time.Millisecond}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, board.NullMove, res.Move)
	assert.GreaterOrEqual(t, res.Depth, 1)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestThinkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := engine.Think(ctx, mustParse(t, board.StartFEN), engine.Limits{Depth: 3}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, board.NullMove, res.Move)
}
