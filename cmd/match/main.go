// Command match plays one game between two players and prints the result.
// A player is either "local" (the built-in search) or the path of a UCI
// engine binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	notnil "github.com/notnil/chess"
	"github.com/rs/zerolog"

	"chess-rules/board"
	"chess-rules/engine"
	"chess-rules/game"
	"chess-rules/player"
	"chess-rules/uci"
)

func main() {
	fen := flag.String("fen", board.StartFEN, "starting position")
	white := flag.String("white", "local", `white player: "local" or a UCI engine path`)
	black := flag.String("black", "local", `black player: "local" or a UCI engine path`)
	depth := flag.Int("depth", engine.DefaultDepth, "search depth for local players")
	movetime := flag.Duration("movetime", time.Second, "think time per move")
	timeout := flag.Duration("timeout", 5*time.Second, "grace period for external engines")
	maxPlies := flag.Int("max-plies", 400, "stop an unfinished game after this many plies")
	level := flag.String("log-level", "info", "zerolog level")
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -log-level: %v\n", err)
		os.Exit(2)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, err := game.FromFEN(*fen)
	if err != nil {
		logger.Fatal().Err(err).Str("fen", *fen).Msg("bad starting position")
	}

	lim := engine.Limits{Depth: *depth, MoveTime: *movetime}
	opts := uci.Options{Timeout: *timeout, Logger: &logger}
	wp, err := newPlayer(ctx, board.White, *white, lim, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("white player")
	}
	defer wp.Close()
	bp, err := newPlayer(ctx, board.Black, *black, lim, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("black player")
	}
	defer bp.Close()

	score, err := newScoresheet(*fen)
	if err != nil {
		logger.Fatal().Err(err).Msg("scoresheet")
	}

	m, err := player.NewMatch(g, wp, bp, player.MatchOptions{
		MaxPlies: *maxPlies,
		Logger:   &logger,
		OnMove: func(ply int, mv board.Move, _ *game.Game) {
			if err := score.record(mv); err != nil {
				logger.Warn().Err(err).Int("ply", ply).Msg("scoresheet out of sync")
			}
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("match")
	}

	res, err := m.Run(ctx)
	fmt.Println(score.movetext())
	fmt.Println(res)
	if err != nil {
		logger.Error().Err(err).Msg("match interrupted")
		os.Exit(1)
	}
}

func newPlayer(ctx context.Context, c board.Color, who string, lim engine.Limits, opts uci.Options) (player.Player, error) {
	if who == "local" {
		return player.NewLocalSearch(c, lim), nil
	}
	client, err := uci.Start(who, nil, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return player.NewExternal(c, client, lim.MoveTime), nil
}

// scoresheet mirrors the game in notnil/chess to print standard algebraic
// notation.
type scoresheet struct {
	g    *notnil.Game
	sans []string
	// full move number and side of the first recorded move
	start int
	black bool
}

func newScoresheet(fen string) (*scoresheet, error) {
	opt, err := notnil.FEN(fen)
	if err != nil {
		return nil, err
	}
	p, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &scoresheet{
		g:     notnil.NewGame(opt),
		start: p.FullmoveNumber(),
		black: p.SideToMove() == board.Black,
	}, nil
}

func (s *scoresheet) record(m board.Move) error {
	pos := s.g.Position()
	nm, err := notnil.UCINotation{}.Decode(pos, m.String())
	if err != nil {
		return err
	}
	san := notnil.AlgebraicNotation{}.Encode(pos, nm)
	if err := s.g.Move(nm); err != nil {
		return err
	}
	s.sans = append(s.sans, san)
	return nil
}

func (s *scoresheet) movetext() string {
	var sb strings.Builder
	n := s.start
	white := !s.black
	for i, san := range s.sans {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case white:
			fmt.Fprintf(&sb, "%d. ", n)
		case i == 0:
			fmt.Fprintf(&sb, "%d... ", n)
		}
		sb.WriteString(san)
		if !white {
			n++
		}
		white = !white
	}
	return sb.String()
}
