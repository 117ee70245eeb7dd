package engine

import (
	"context"

	"chess-rules/board"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
// Scores are in centipawns from White's point of view: White maximizes,
// Black minimizes.
const (
	MaxScore  = 1 << 30
	MateScore = 1 << 20
	DrawScore = 0
)

// How many nodes pass between cancellation polls.
const pollInterval = 1024

// Result describes a finished search.
type Result struct {
	Move  board.Move
	Score int
	Nodes uint64
	Depth int
}

type searcher struct {
	ctx     context.Context
	pos     *board.Position
	nodes   uint64
	stopped bool
	// per-ply move buffers, reused across siblings
	moves [][]board.Move
}

// BestMove returns the move the fixed-depth search prefers for the side to
// move, or false when there is none or ctx was cancelled first.
func BestMove(ctx context.Context, p *board.Position, depth int) (board.Move, bool) {
	res, err := Search(ctx, p, depth)
	if err != nil || res.Move == board.NullMove {
		return board.NullMove, false
	}
	return res.Move, true
}

// Search runs a fixed-depth alpha-beta search on a clone of p. The root only
// replaces its best move on a strict improvement, so the chosen move is the
// first one in LegalMoves order among those with the best minimax score.
// Depths below one are searched at depth one.
func Search(ctx context.Context, p *board.Position, depth int) (Result, error) {
	if depth < 1 {
		depth = 1
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s := &searcher{
		ctx:   ctx,
		pos:   p.Clone(),
		moves: make([][]board.Move, depth+1),
	}
	move, score := s.root(depth)
	if s.stopped {
		return Result{Nodes: s.nodes, Depth: depth}, ctx.Err()
	}
	return Result{Move: move, Score: score, Nodes: s.nodes, Depth: depth}, nil
}

func (s *searcher) root(depth int) (board.Move, int) {
	b := s.pos
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return board.NullMove, s.terminalScore(depth)
	}

	white := b.SideToMove() == board.White
	bestMove := board.NullMove
	bestScore := MaxScore
	if white {
		bestScore = -MaxScore
	}

	for _, m := range moves {
		b.Apply(m)
		var score int
		if white {
			score = s.alphabeta(depth-1, bestScore, MaxScore)
		} else {
			score = s.alphabeta(depth-1, -MaxScore, bestScore)
		}
		b.Undo()
		if s.stopped {
			return board.NullMove, 0
		}
		if bestMove == board.NullMove || (white && score > bestScore) || (!white && score < bestScore) {
			bestMove, bestScore = m, score
		}
	}
	return bestMove, bestScore
}

// alphabeta returns the minimax score of the current position within the
// (alpha, beta) window. Scores outside the window are bounds, never chosen
// over an exact score at the root.
func (s *searcher) alphabeta(depth int, alpha, beta int) int {
	s.nodes++
	if s.nodes%pollInterval == 0 && s.ctx.Err() != nil {
		s.stopped = true
	}
	if s.stopped {
		return 0
	}

	b := s.pos
	if depth == 0 {
		return b.Material()
	}

	moves := b.AppendLegalMoves(s.moves[depth][:0])
	s.moves[depth] = moves
	if len(moves) == 0 {
		return s.terminalScore(depth)
	}

	if b.SideToMove() == board.White {
		best := -MaxScore
		for _, m := range moves {
			b.Apply(m)
			score := s.alphabeta(depth-1, alpha, beta)
			b.Undo()
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				break
			}
		}
		return best
	}

	best := MaxScore
	for _, m := range moves {
		b.Apply(m)
		score := s.alphabeta(depth-1, alpha, beta)
		b.Undo()
		if score < best {
			best = score
		}
		if best < beta {
			beta = best
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// terminalScore scores a position without legal moves. Mates found with more
// depth remaining are shorter and score further from zero.
func (s *searcher) terminalScore(depth int) int {
	b := s.pos
	side := b.SideToMove()
	if !b.InCheck(side) {
		return DrawScore
	}
	if side == board.White {
		return -(MateScore + depth)
	}
	return MateScore + depth
}
