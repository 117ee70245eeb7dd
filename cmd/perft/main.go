package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"chess-rules/board"
)

func main() {
	fen := flag.String("fen", board.StartFEN, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	verify := flag.Bool("verify", false, "Compare counts against the dragontoothmg generator")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	memProf := flag.String("memprofile", "", "Write heap profile to file after run")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		os.Exit(2)
	}

	if *divide {
		os.Exit(runDivide(pos, *fen, *depth, *verify))
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating cpuprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "start cpu profile: %v\n", err)
			os.Exit(2)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		totalNodes += board.Perft(pos, *depth)
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Single line: Depth Nodes Time NPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, totalNodes, elapsed, nps)

	if *verify {
		refBoard := dragontoothmg.ParseFen(*fen)
		ref := referencePerft(&refBoard, *depth)
		nodes := totalNodes / uint64(*repeat)
		if ref != nodes {
			fmt.Printf("MISMATCH: reference %d, ours %d\n", ref, nodes)
			os.Exit(1)
		}
		fmt.Printf("verified against reference: %d\n", ref)
	}

	if *memProf != "" {
		f, err := os.Create(*memProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating memprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "write heap profile: %v\n", err)
			os.Exit(2)
		}
		_ = f.Close()
	}
}

// runDivide prints per-move counts sorted by move text and returns the exit code.
func runDivide(pos *board.Position, fen string, depth int, verify bool) int {
	counts := make(map[string]uint64)
	for m, n := range board.PerftDivide(pos, depth) {
		counts[m.String()] = n
	}
	var ref map[string]uint64
	if verify {
		refBoard := dragontoothmg.ParseFen(fen)
		ref = referenceDivide(&refBoard, depth)
		for m := range ref {
			if _, ok := counts[m]; !ok {
				counts[m] = 0
			}
		}
	}

	keys := maps.Keys(counts)
	slices.Sort(keys)
	var sum uint64
	mismatches := 0
	for _, m := range keys {
		n := counts[m]
		sum += n
		if !verify {
			fmt.Printf("%s: %d\n", m, n)
			continue
		}
		want, ok := ref[m]
		switch {
		case !ok:
			fmt.Printf("%s: %d (not generated by reference)\n", m, n)
			mismatches++
		case want != n:
			fmt.Printf("%s: %d (reference %d)\n", m, n, want)
			mismatches++
		default:
			fmt.Printf("%s: %d\n", m, n)
		}
	}
	fmt.Printf("Total: %d\n", sum)
	if mismatches > 0 {
		fmt.Printf("MISMATCH: %d root moves differ\n", mismatches)
		return 1
	}
	return 0
}

func referencePerft(b *dragontoothmg.Board, depth int) uint64 {
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		undo := b.Apply(m)
		nodes += referencePerft(b, depth-1)
		undo()
	}
	return nodes
}

func referenceDivide(b *dragontoothmg.Board, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	moves := b.GenerateLegalMoves()
	for i := range moves {
		undo := b.Apply(moves[i])
		if depth == 1 {
			out[moves[i].String()] = 1
		} else {
			out[moves[i].String()] = referencePerft(b, depth-1)
		}
		undo()
	}
	return out
}
