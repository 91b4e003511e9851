package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristMark  [markCount][256]uint64 // [Mark][Move]; the Empty row stays zero
	zobristSideX uint64                 // XOR while X is to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x5A0B215712CE11F0)

	for _, m := range []Mark{MarkX, MarkO} {
		for cell := range zobristMark[m] {
			zobristMark[m][cell] = rng.next()
		}
	}

	zobristSideX = rng.next()
}

// ZobristSideX returns the Zobrist key for X to move.
func ZobristSideX() uint64 {
	return zobristSideX
}
