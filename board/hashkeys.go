package board

// hashKeys holds the random values XORed into a position key: one per piece code
// and square, castling mask, en-passant file, and Black to move.
var hashKeys struct {
	piece     [15][64]uint64
	castle    [16]uint64
	enPassant [8]uint64
	black     uint64
}

func init() {
	// splitmix64 from a fixed seed, so keys are the same in every process
	state := uint64(0x2545F4914F6CDD1D)
	next := func() uint64 {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		return z ^ (z >> 31)
	}
	for pc := range hashKeys.piece {
		for sq := range hashKeys.piece[pc] {
			hashKeys.piece[pc][sq] = next()
		}
	}
	for r := range hashKeys.castle {
		hashKeys.castle[r] = next()
	}
	for f := range hashKeys.enPassant {
		hashKeys.enPassant[f] = next()
	}
	hashKeys.black = next()
}
