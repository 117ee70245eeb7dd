package engine

import (
	"context"
	"errors"
	"sync"

	"chess-rules/board"
)

// ErrWorkerClosed is reported for requests submitted after Close.
var ErrWorkerClosed = errors.New("engine: worker closed")

// Reply carries the outcome of one submitted search.
type Reply struct {
	Seq    uint64
	Result Result
	Err    error
}

// OK reports whether the reply holds a usable move.
func (r Reply) OK() bool { return r.Err == nil && r.Result.Move != board.NullMove }

type request struct {
	ctx    context.Context
	cancel context.CancelFunc
	seq    uint64
	pos    *board.Position
	limits Limits
	out    chan Reply
}

// Worker runs searches one at a time on its own goroutine. Submitting a new
// request cancels whatever is pending or running, so only the latest
// position is ever searched to completion.
type Worker struct {
	mu      sync.Mutex
	pending chan request
	cancel  context.CancelFunc
	seq     uint64
	closed  bool
	done    chan struct{}
}

// NewWorker starts a worker goroutine. Call Close to stop it.
func NewWorker() *Worker {
	w := &Worker{
		pending: make(chan request, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer close(w.done)
	for req := range w.pending {
		res, err := Think(req.ctx, req.pos, req.limits, nil)
		req.cancel()
		req.out <- Reply{Seq: req.seq, Result: res, Err: err}
		close(req.out)
	}
}

// Submit queues a search of a snapshot of p and returns a channel that
// receives exactly one Reply. A superseded or cancelled request replies with
// context.Canceled and whatever depth it had completed.
func (w *Worker) Submit(ctx context.Context, p *board.Position, lim Limits) <-chan Reply {
	out := make(chan Reply, 1)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		out <- Reply{Err: ErrWorkerClosed}
		close(out)
		return out
	}
	if w.cancel != nil {
		w.cancel()
	}
	// drop a request the loop has not picked up yet
	select {
	case stale := <-w.pending:
		stale.cancel()
		stale.out <- Reply{Seq: stale.seq, Err: context.Canceled}
		close(stale.out)
	default:
	}

	w.seq++
	rctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.pending <- request{ctx: rctx, cancel: cancel, seq: w.seq, pos: p.Clone(), limits: lim, out: out}
	return out
}

// Cancel aborts the pending or running search, if any.
func (w *Worker) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

// Close cancels outstanding work and waits for the worker goroutine to exit.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	close(w.pending)
	w.mu.Unlock()
	<-w.done
}
