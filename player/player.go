// Package player defines the entities that can take part in a game and a
// coordinator that runs a game between two of them.
package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"chess-rules/board"
	"chess-rules/engine"
	"chess-rules/uci"
)

// Player proposes moves for one color.
type Player interface {
	// Color is the side this player moves for.
	Color() board.Color
	// Propose returns a move for p, which the player may keep. It reports
	// false when it has no move to offer or ctx ends first.
	Propose(ctx context.Context, p *board.Position) (board.Move, bool)
	// Close releases whatever the player holds.
	Close() error
}

// LocalSearch plays the move chosen by this module's search.
type LocalSearch struct {
	color  board.Color
	limits engine.Limits
}

func NewLocalSearch(c board.Color, lim engine.Limits) *LocalSearch {
	return &LocalSearch{color: c, limits: lim}
}

func (l *LocalSearch) Color() board.Color { return l.color }

func (l *LocalSearch) Propose(ctx context.Context, p *board.Position) (board.Move, bool) {
	res, err := engine.Think(ctx, p, l.limits, nil)
	if err != nil || res.Move == board.NullMove {
		return board.NullMove, false
	}
	return res.Move, true
}

func (l *LocalSearch) Close() error { return nil }

// External asks a UCI engine for its moves.
type External struct {
	color    board.Color
	client   *uci.Client
	movetime time.Duration
}

// NewExternal takes ownership of client; Close closes it.
func NewExternal(c board.Color, client *uci.Client, movetime time.Duration) *External {
	return &External{color: c, client: client, movetime: movetime}
}

func (e *External) Color() board.Color { return e.color }

func (e *External) Propose(ctx context.Context, p *board.Position) (board.Move, bool) {
	return e.client.BestMove(ctx, p.FEN(), e.movetime)
}

func (e *External) Close() error { return e.client.Close() }

// ErrPlayerClosed is returned by Interactive.Submit after Close.
var ErrPlayerClosed = errors.New("player: closed")

// Interactive relays moves submitted from outside, typically a user
// interface, to the game.
type Interactive struct {
	color board.Color
	moves chan board.Move

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewInteractive buffers up to queue submitted moves.
func NewInteractive(c board.Color, queue int) *Interactive {
	return &Interactive{
		color: c,
		moves: make(chan board.Move, queue),
		done:  make(chan struct{}),
	}
}

func (i *Interactive) Color() board.Color { return i.color }

// Submit hands a move to the next Propose call. It blocks while the queue is
// full.
func (i *Interactive) Submit(ctx context.Context, m board.Move) error {
	i.mu.Lock()
	closed := i.closed
	i.mu.Unlock()
	if closed {
		return ErrPlayerClosed
	}
	select {
	case i.moves <- m:
		return nil
	case <-i.done:
		return ErrPlayerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (i *Interactive) Propose(ctx context.Context, p *board.Position) (board.Move, bool) {
	select {
	case m := <-i.moves:
		return m, true
	case <-i.done:
		return board.NullMove, false
	case <-ctx.Done():
		return board.NullMove, false
	}
}

func (i *Interactive) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.closed {
		i.closed = true
		close(i.done)
	}
	return nil
}
