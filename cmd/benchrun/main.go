// Command benchrun prints one report covering the board and engine
// benchmarks, perft timings and a search benchmark.
// Usage: go run ./cmd/benchrun
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

// goTool runs the go command with its output passed straight through.
func goTool(args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "benchrun: %v\n", err)
	return 1
}

func main() {
	fmt.Println("== benchmarks (board, engine)")
	if err := goTool("test", "./board", "./engine", "-run", "^$", "-bench", ".", "-benchmem"); err != nil {
		os.Exit(exitCode(err))
	}

	fmt.Println("\n== perft (label depth nodes time nps)")
	failed := false
	for _, depth := range []string{"3", "4", "5"} {
		if err := goTool("run", "./cmd/perft", "-depth", depth, "-label", "startpos"); err != nil {
			failed = true
		}
	}
	if err := goTool("run", "./cmd/perft", "-fen", kiwipete, "-depth", "3", "-label", "kiwipete", "-verify"); err != nil {
		failed = true
	}

	fmt.Println("\n== search")
	if err := goTool("run", "./cmd/searchbench", "-depth", "4"); err != nil {
		failed = true
	}
	if failed {
		os.Exit(1)
	}
}
