package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chess-rules/board"
	"chess-rules/engine"
)

// ServerOptions configure a Server. Zero values are replaced by defaults.
type ServerOptions struct {
	Name   string
	Author string
	// Depth is searched for a bare "go". Default engine.DefaultDepth.
	Depth  int
	Logger *zerolog.Logger
}

func (o ServerOptions) withDefaults() ServerOptions {
	if o.Name == "" {
		o.Name = "chess-rules"
	}
	if o.Author == "" {
		o.Author = "chess-rules authors"
	}
	if o.Depth <= 0 {
		o.Depth = engine.DefaultDepth
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// Server answers UCI commands with this module's search. Searches run on an
// engine.Worker so "stop", "isready" and "quit" are handled while thinking.
type Server struct {
	opts ServerOptions
	log  zerolog.Logger

	outMu sync.Mutex
	out   io.Writer

	pos       *board.Position
	worker    *engine.Worker
	searching sync.WaitGroup
}

func NewServer(out io.Writer, opts ServerOptions) *Server {
	opts = opts.withDefaults()
	return &Server{
		opts: opts,
		log:  *opts.Logger,
		out:  out,
		pos:  board.NewPosition(),
	}
}

func (s *Server) println(a ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintln(s.out, a...)
}

// Serve reads commands from in until "quit", EOF or ctx is done. A search
// still running at that point is stopped and its bestmove is printed before
// Serve returns.
func (s *Server) Serve(ctx context.Context, in io.Reader) error {
	s.worker = engine.NewWorker()
	defer func() {
		s.worker.Cancel()
		s.searching.Wait()
		s.worker.Close()
	}()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stopped:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if s.handle(ctx, line) {
				return nil
			}
		}
	}
}

// handle runs one command and reports whether it was "quit".
func (s *Server) handle(ctx context.Context, line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 { // ignore blank lines
		return false
	}
	s.log.Debug().Str("cmd", line).Msg("uci <")
	switch strings.ToLower(tokens[0]) {
	case "uci":
		s.println("id name", s.opts.Name)
		s.println("id author", s.opts.Author)
		s.println("uciok")
	case "isready":
		s.println("readyok")
	case "ucinewgame":
		s.stopSearch()
		s.pos = board.NewPosition()
	case "quit":
		return true
	case "stop":
		s.stopSearch()
	case "position":
		s.position(tokens[1:])
	case "go":
		s.goCommand(ctx, tokens[1:])
	case "d":
		s.println(s.pos.String())
		s.println("Fen:", s.pos.FEN())
	default:
		s.println("Unknown command:", line)
	}
	return false
}

// stopSearch cancels a running search and returns once its bestmove has been
// written, so every reply after a "stop" belongs to later commands.
func (s *Server) stopSearch() {
	s.worker.Cancel()
	s.searching.Wait()
}

// position handles "position startpos|fen <FEN> [moves ...]". On a bad FEN
// the previous position is kept.
func (s *Server) position(args []string) {
	if len(args) == 0 {
		s.println("info string Malformed position command")
		return
	}
	var pos *board.Position
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		end := len(rest)
		for i, tok := range rest {
			if strings.ToLower(tok) == "moves" {
				end = i
				break
			}
		}
		p, err := board.ParseFEN(strings.Join(rest[:end], " "))
		if err != nil {
			s.log.Debug().Err(err).Msg("rejected position")
			s.println("info string Invalid fen position")
			return
		}
		pos, rest = p, rest[end:]
	default:
		s.println("info string Invalid position subcommand")
		return
	}

	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		for _, text := range rest[1:] {
			m, ok := findLegal(pos, text)
			if !ok {
				s.println("info string Move", text, "not found for position", pos.FEN())
				break
			}
			pos.Apply(m)
		}
	}
	s.pos = pos
}

// findLegal matches move text against the legal moves of p.
func findLegal(p *board.Position, text string) (board.Move, bool) {
	parsed, err := board.ParseUCIMove(text)
	if err != nil {
		return board.NullMove, false
	}
	for _, m := range p.LegalMoves() {
		if m.From == parsed.From && m.To == parsed.To && m.Promotion == parsed.Promotion {
			return m, true
		}
	}
	return board.NullMove, false
}

// goCommand parses the search limits and starts a search. Clock-based limits
// spend a thirtieth of the remaining time plus half the increment.
func (s *Server) goCommand(ctx context.Context, args []string) {
	var lim engine.Limits
	var wTime, bTime, wInc, bInc int
	infinite := false

	intArg := func(i int, name string) (int, bool) {
		if i+1 >= len(args) {
			s.println("info string Malformed go command option", name)
			return 0, false
		}
		v, err := strconv.Atoi(args[i+1])
		if err != nil {
			s.println("info string Malformed go command option; could not convert", name)
			return 0, false
		}
		return v, true
	}

	for i := 0; i < len(args); i++ {
		name := strings.ToLower(args[i])
		var target *int
		switch name {
		case "infinite":
			infinite = true
			continue
		case "depth":
			target = &lim.Depth
		case "wtime":
			target = &wTime
		case "btime":
			target = &bTime
		case "winc":
			target = &wInc
		case "binc":
			target = &bInc
		case "movetime":
			if v, ok := intArg(i, name); ok {
				lim.MoveTime = time.Duration(v) * time.Millisecond
			}
			i++
			continue
		default:
			s.println("info string Unknown go subcommand", name)
			continue
		}
		if v, ok := intArg(i, name); ok {
			*target = v
		}
		i++
	}

	side := s.pos.SideToMove()
	if lim.MoveTime == 0 {
		timeLeft, inc := wTime, wInc
		if side == board.Black {
			timeLeft, inc = bTime, bInc
		}
		if timeLeft > 0 {
			lim.MoveTime = time.Duration(timeLeft/30+inc/2) * time.Millisecond
		}
	}
	switch {
	case infinite:
		lim = engine.Limits{Depth: engine.MaxDepth}
	case lim.Depth == 0 && lim.MoveTime == 0:
		lim.Depth = s.opts.Depth
	}

	s.log.Debug().Int("depth", lim.Depth).Dur("movetime", lim.MoveTime).Msg("search started")
	reply := s.worker.Submit(ctx, s.pos, lim)
	s.searching.Add(1)
	go func() {
		defer s.searching.Done()
		r := <-reply
		if r.Err != nil && !errors.Is(r.Err, context.Canceled) {
			s.log.Warn().Err(r.Err).Msg("search failed")
		}
		if r.Result.Depth > 0 {
			s.println(fmt.Sprintf("info depth %d score %s nodes %d pv %s",
				r.Result.Depth, scoreText(r.Result, side), r.Result.Nodes, r.Result.Move))
		}
		s.println("bestmove", r.Result.Move.String())
	}()
}

// scoreText renders a score from the mover's point of view, as UCI expects.
func scoreText(r engine.Result, side board.Color) string {
	rel := r.Score
	if side == board.Black {
		rel = -rel
	}
	abs := rel
	if abs < 0 {
		abs = -abs
	}
	if abs < engine.MateScore {
		return "cp " + strconv.Itoa(rel)
	}
	plies := r.Depth - (abs - engine.MateScore)
	n := (plies + 1) / 2
	if rel < 0 {
		n = -n
	}
	return "mate " + strconv.Itoa(n)
}
