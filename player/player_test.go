package player_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess-rules/board"
	"chess-rules/engine"
	"chess-rules/game"
	"chess-rules/player"
	"chess-rules/uci"
)

func mv(t *testing.T, text string) board.Move {
	t.Helper()
	m, err := board.ParseUCIMove(text)
	require.NoError(t, err)
	return m
}

func scripted(t *testing.T, c board.Color, moves ...string) *player.Interactive {
	t.Helper()
	p := player.NewInteractive(c, len(moves))
	for _, text := range moves {
		require.NoError(t, p.Submit(context.Background(), mv(t, text)))
	}
	return p
}

func TestMatchFoolsMate(t *testing.T) {
	white := scripted(t, board.White, "f2f3", "g2g4")
	black := scripted(t, board.Black, "e7e5", "d8h4")
	var plies []string
	m, err := player.NewMatch(game.New(), white, black, player.MatchOptions{
		OnMove: func(ply int, m board.Move, g *game.Game) { plies = append(plies, m.String()) },
	})
	require.NoError(t, err)

	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.BlackWin, res.State)
	assert.Equal(t, game.Checkmate, res.Reason)
	assert.Equal(t, 4, res.Plies)
	assert.Equal(t, []string{"f2f3", "e7e5", "g2g4", "d8h4"}, plies)
	assert.Equal(t, "black wins by checkmate", res.String())
}

func TestMatchLocalSearchMates(t *testing.T) {
	g, err := game.FromFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	require.NoError(t, err)
	white := player.NewLocalSearch(board.White, engine.Limits{Depth: 2})
	black := player.NewLocalSearch(board.Black, engine.Limits{Depth: 2})
	m, err := player.NewMatch(g, white, black, player.MatchOptions{})
	require.NoError(t, err)

	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.WhiteWin, res.State)
	assert.Equal(t, 1, res.Plies)
}

func TestMatchIllegalMoveForfeits(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	white := scripted(t, board.White, "e2e5")
	black := scripted(t, board.Black)
	m, err := player.NewMatch(game.New(), white, black, player.MatchOptions{Logger: &logger})
	require.NoError(t, err)

	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Forfeit)
	assert.Equal(t, board.White, res.Forfeiter)
	assert.Equal(t, game.BlackWin, res.State)
	assert.Contains(t, logs.String(), "illegal move")
}

func TestMatchMaxPlies(t *testing.T) {
	white := player.NewLocalSearch(board.White, engine.Limits{Depth: 1})
	black := player.NewLocalSearch(board.Black, engine.Limits{Depth: 1})
	g := game.New()
	m, err := player.NewMatch(g, white, black, player.MatchOptions{MaxPlies: 6})
	require.NoError(t, err)

	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.InProgress, res.State)
	assert.Equal(t, 6, res.Plies)
	assert.Len(t, g.Moves(), 6)
}

func TestMatchCancelled(t *testing.T) {
	white := player.NewInteractive(board.White, 1)
	black := player.NewInteractive(board.Black, 1)
	m, err := player.NewMatch(game.New(), white, black, player.MatchOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewMatchChecksColors(t *testing.T) {
	a := player.NewInteractive(board.Black, 1)
	b := player.NewInteractive(board.White, 1)
	_, err := player.NewMatch(game.New(), a, b, player.MatchOptions{})
	assert.ErrorIs(t, err, player.ErrColorMismatch)
}

func TestInteractiveClose(t *testing.T) {
	p := player.NewInteractive(board.White, 0)
	require.NoError(t, p.Close())
	_, ok := p.Propose(context.Background(), board.NewPosition())
	assert.False(t, ok)
	assert.ErrorIs(t, p.Submit(context.Background(), mv(t, "e2e4")), player.ErrPlayerClosed)
}

// External players talk UCI; here the engine on the other end is this
// module's own server.
func TestExternalPlayer(t *testing.T) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	srv := uci.NewServer(outW, uci.ServerOptions{})
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(context.Background(), inR)
		outW.Close()
	}()
	client := uci.NewClient(inW, outR, uci.Options{Timeout: 5 * time.Second})

	g, err := game.FromFEN("r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1")
	require.NoError(t, err)
	white := player.NewLocalSearch(board.White, engine.Limits{Depth: 1})
	black := player.NewExternal(board.Black, client, 100*time.Millisecond)
	m, err := player.NewMatch(g, white, black, player.MatchOptions{})
	require.NoError(t, err)

	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.BlackWin, res.State)
	assert.Equal(t, game.Checkmate, res.Reason)

	require.NoError(t, black.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("engine did not quit")
	}
}
