// Package uci speaks the subset of the Universal Chess Interface needed to
// ask an engine for a move: a Client that drives an external engine process
// and a Server that exposes this module's own search the same way.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chess-rules/board"
)

var (
	ErrTimeout  = errors.New("uci: engine did not answer in time")
	ErrProtocol = errors.New("uci: protocol error")
	ErrClosed   = errors.New("uci: engine closed")
)

// Options configure a Client. Zero values are replaced by defaults.
type Options struct {
	// Timeout bounds every request. A move request waits for the move time
	// plus Timeout. Default 5s.
	Timeout time.Duration
	// Logger receives request failures and, at debug level, the traffic.
	// Default is a no-op logger.
	Logger *zerolog.Logger
}

const defaultTimeout = 5 * time.Second

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// Client is a request/response driver for one engine. Every request writes
// its commands and then waits for a reply line with a deadline; a missing,
// unknown or malformed reply fails only that request.
//
// Requests are serialized; a Client is safe for concurrent use.
type Client struct {
	opts  Options
	log   zerolog.Logger
	w     io.WriteCloser
	lines chan string
	cmd   *exec.Cmd

	mu          sync.Mutex
	initialized bool
	closed      bool
}

// Start launches the engine at path and wraps its standard streams.
func Start(path string, args []string, opts Options) (*Client, error) {
	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("uci: start %s: %w", path, err)
	}
	c := NewClient(stdin, stdout, opts)
	c.cmd = cmd
	c.log = c.log.With().Str("engine", path).Logger()
	return c, nil
}

// NewClient drives an engine reachable through w (its input) and r (its
// output). A goroutine reads r until EOF.
func NewClient(w io.WriteCloser, r io.Reader, opts Options) *Client {
	opts = opts.withDefaults()
	c := &Client{
		opts:  opts,
		log:   *opts.Logger,
		w:     w,
		lines: make(chan string, 64),
	}
	go c.readLoop(r)
	return c
}

func (c *Client) readLoop(r io.Reader) {
	defer close(c.lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		c.log.Debug().Err(err).Msg("engine output ended")
	}
}

// send writes one command line.
func (c *Client) send(line string) error {
	if c.closed {
		return ErrClosed
	}
	c.log.Debug().Str("cmd", line).Msg("engine <")
	if _, err := io.WriteString(c.w, line+"\n"); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrClosed, line, err)
	}
	return nil
}

// drain discards output left over from an earlier request that timed out.
func (c *Client) drain() {
	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				return
			}
			c.log.Debug().Str("line", line).Msg("discarding stale output")
		default:
			return
		}
	}
}

// expect reads lines until one starts with prefix and returns it.
func (c *Client) expect(ctx context.Context, prefix string, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				return "", ErrClosed
			}
			c.log.Debug().Str("line", line).Msg("engine >")
			if strings.Contains(line, "Unknown command") || strings.Contains(line, "Unexpected token") {
				return "", fmt.Errorf("%w: %q", ErrProtocol, line)
			}
			if strings.HasPrefix(line, prefix) {
				return line, nil
			}
		case <-timer.C:
			return "", fmt.Errorf("%w: waiting for %q after %v", ErrTimeout, prefix, timeout)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Init performs the uci/uciok handshake.
func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.init(ctx)
}

func (c *Client) init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	c.drain()
	if err := c.send("uci"); err != nil {
		return err
	}
	if _, err := c.expect(ctx, "uciok", c.opts.Timeout); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	c.initialized = true
	return nil
}

// SetPosition sends the position and waits until the engine reports ready.
func (c *Client) SetPosition(ctx context.Context, fen string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setPosition(ctx, fen)
}

func (c *Client) setPosition(ctx context.Context, fen string) error {
	if err := c.init(ctx); err != nil {
		return err
	}
	c.drain()
	if err := c.send("position fen " + fen); err != nil {
		return err
	}
	if err := c.send("isready"); err != nil {
		return err
	}
	if _, err := c.expect(ctx, "readyok", c.opts.Timeout); err != nil {
		return fmt.Errorf("position: %w", err)
	}
	return nil
}

// Go asks for a move in the current position. The engine answering with
// "(none)" or "0000" yields NullMove and no error.
func (c *Client) Go(ctx context.Context, movetime time.Duration) (board.Move, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goMovetime(ctx, movetime)
}

func (c *Client) goMovetime(ctx context.Context, movetime time.Duration) (board.Move, error) {
	if err := c.send("go movetime " + strconv.FormatInt(movetime.Milliseconds(), 10)); err != nil {
		return board.NullMove, err
	}
	line, err := c.expect(ctx, "bestmove", movetime+c.opts.Timeout)
	if err != nil {
		if errors.Is(err, ErrTimeout) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// the late bestmove is drained by the next request
			_ = c.send("stop")
		}
		return board.NullMove, fmt.Errorf("go: %w", err)
	}
	return parseBestMove(line)
}

func parseBestMove(line string) (board.Move, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return board.NullMove, fmt.Errorf("%w: %q", ErrProtocol, line)
	}
	if fields[1] == "(none)" || fields[1] == "0000" {
		return board.NullMove, nil
	}
	m, err := board.ParseUCIMove(fields[1])
	if err != nil {
		return board.NullMove, fmt.Errorf("%w: bad move in %q", ErrProtocol, line)
	}
	return m, nil
}

// BestMove asks the engine for a move in fen. Failures are logged and
// reported as no move; they never end the caller's session.
func (c *Client) BestMove(ctx context.Context, fen string, movetime time.Duration) (board.Move, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.setPosition(ctx, fen); err != nil {
		c.log.Warn().Err(err).Str("fen", fen).Msg("engine rejected position")
		return board.NullMove, false
	}
	m, err := c.goMovetime(ctx, movetime)
	if err != nil {
		c.log.Warn().Err(err).Str("fen", fen).Dur("movetime", movetime).Msg("engine gave no move")
		return board.NullMove, false
	}
	if m == board.NullMove {
		c.log.Info().Str("fen", fen).Msg("engine has no move")
		return board.NullMove, false
	}
	return m, true
}

// Close asks the engine to quit and releases the process, killing it if it
// does not exit within the timeout.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	_ = c.send("quit")
	c.closed = true
	err := c.w.Close()
	if c.cmd == nil {
		return err
	}

	exited := make(chan error, 1)
	go func() { exited <- c.cmd.Wait() }()
	select {
	case werr := <-exited:
		if werr != nil {
			c.log.Debug().Err(werr).Msg("engine exited")
		}
	case <-time.After(c.opts.Timeout):
		c.log.Warn().Msg("engine ignored quit, killing it")
		_ = c.cmd.Process.Kill()
		<-exited
	}
	return err
}
