package engine

import (
	"context"
	"time"

	"chess-rules/board"
)

const (
	// DefaultDepth is searched when neither a depth nor a time is given.
	DefaultDepth = 4
	// MaxDepth bounds time-limited searches.
	MaxDepth = 64
)

// Limits bound a Think call. A zero Depth with a MoveTime searches until the
// time is spent.
type Limits struct {
	Depth    int
	MoveTime time.Duration
}

// Think deepens the search one ply at a time and returns the deepest
// completed result. Depth one always completes unless ctx is cancelled, so a
// time-limited search still yields a move. When ctx itself is cancelled the
// best result so far is returned together with ctx.Err().
//
// With only a Depth limit the result equals Search at that depth.
func Think(ctx context.Context, p *board.Position, lim Limits, info func(Result)) (Result, error) {
	maxDepth := lim.Depth
	if maxDepth <= 0 {
		maxDepth = DefaultDepth
		if lim.MoveTime > 0 {
			maxDepth = MaxDepth
		}
	}

	sctx := ctx
	if lim.MoveTime > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, lim.MoveTime)
		defer cancel()
	}

	var best Result
	var nodes uint64
	for depth := 1; depth <= maxDepth; depth++ {
		dctx := sctx
		if depth == 1 {
			dctx = ctx
		}
		res, err := Search(dctx, p, depth)
		nodes += res.Nodes
		if err != nil {
			break
		}
		best = res
		best.Nodes = nodes
		if info != nil {
			info(best)
		}
		if res.Move == board.NullMove {
			// no legal moves; deeper searches say the same
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return best, err
	}
	return best, nil
}
