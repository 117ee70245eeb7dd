package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"chess-rules/board"
	"chess-rules/game"
)

// MatchOptions configure a Match. Zero values are replaced by defaults.
type MatchOptions struct {
	// MaxPlies stops an unfinished game. Default 400.
	MaxPlies int
	Logger   *zerolog.Logger
	// OnMove, if set, is called after every accepted move.
	OnMove func(ply int, m board.Move, g *game.Game)
}

const defaultMaxPlies = 400

func (o MatchOptions) withDefaults() MatchOptions {
	if o.MaxPlies <= 0 {
		o.MaxPlies = defaultMaxPlies
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// Result is how a match ended.
type Result struct {
	State  game.State
	Reason game.Reason
	// Forfeit names the side that failed to produce a legal move.
	Forfeit   bool
	Forfeiter board.Color
	Plies     int
}

func (r Result) String() string {
	switch {
	case r.Forfeit:
		return fmt.Sprintf("%s by forfeit of %s", r.State, r.Forfeiter)
	case r.State.Terminal():
		return fmt.Sprintf("%s by %s", r.State, r.Reason)
	}
	return fmt.Sprintf("unfinished after %d plies", r.Plies)
}

// ErrColorMismatch is returned when a player is seated on the wrong side.
var ErrColorMismatch = errors.New("player: color mismatch")

// Match alternates two players over one game until it ends.
type Match struct {
	game    *game.Game
	players [2]Player
	opts    MatchOptions
	log     zerolog.Logger
}

func NewMatch(g *game.Game, white, black Player, opts MatchOptions) (*Match, error) {
	if white.Color() != board.White || black.Color() != board.Black {
		return nil, ErrColorMismatch
	}
	opts = opts.withDefaults()
	return &Match{
		game:    g,
		players: [2]Player{white, black},
		opts:    opts,
		log:     *opts.Logger,
	}, nil
}

// Run plays until the game ends, a player forfeits, MaxPlies moves have been
// played or ctx is done. Only the last case returns an error.
func (m *Match) Run(ctx context.Context) (Result, error) {
	g := m.game
	plies := 0
	for !g.State().Terminal() && plies < m.opts.MaxPlies {
		side := g.SideToMove()
		mv, ok := m.players[side].Propose(ctx, g.Position())
		if err := ctx.Err(); err != nil {
			return Result{State: g.State(), Reason: g.Reason(), Plies: plies}, err
		}
		if !ok {
			m.log.Warn().Str("side", side.String()).Str("fen", g.ExportFEN()).Msg("player offered no move")
			return m.forfeit(side, plies), nil
		}
		if !g.Move(mv) {
			m.log.Warn().Str("side", side.String()).Str("move", mv.String()).Str("fen", g.ExportFEN()).Msg("illegal move")
			return m.forfeit(side, plies), nil
		}
		plies++
		m.log.Info().Int("ply", plies).Str("side", side.String()).Str("move", mv.String()).Msg("move")
		if m.opts.OnMove != nil {
			m.opts.OnMove(plies, mv, g)
		}
	}
	res := Result{State: g.State(), Reason: g.Reason(), Plies: plies}
	m.log.Info().Str("result", res.String()).Str("fen", g.ExportFEN()).Msg("match finished")
	return res, nil
}

func (m *Match) forfeit(side board.Color, plies int) Result {
	winner := game.WhiteWin
	if side == board.White {
		winner = game.BlackWin
	}
	return Result{State: winner, Forfeit: true, Forfeiter: side, Plies: plies}
}
