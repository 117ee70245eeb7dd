package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"chess-rules/engine"
	"chess-rules/uci"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run speaks UCI on in/out. Logs go to errOut so they never mix with
// protocol output.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("chess-rules", flag.ContinueOnError)
	fs.SetOutput(errOut)
	depth := fs.Int("depth", engine.DefaultDepth, "search depth for a bare go command")
	level := fs.String("log-level", "warn", "zerolog level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		return fmt.Errorf("bad -log-level: %w", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: errOut, TimeFormat: time.Kitchen, NoColor: true}).
		Level(lvl).With().Timestamp().Logger()

	srv := uci.NewServer(out, uci.ServerOptions{Depth: *depth, Logger: &logger})
	err = srv.Serve(ctx, in)
	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("interrupted")
		return nil
	}
	return err
}
