package engine

import (
	"context"

	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/hailam/adjacency/internal/board"
)

// Random plays a uniformly random legal move. Useful as a baseline opponent.
type Random struct {
	Base
	rng *frand.RNG
}

// NewRandom creates a random-move strategy.
func NewRandom(rng *frand.RNG) *Random {
	return &Random{rng: rng}
}

// Name returns the registry name of the strategy.
func (r *Random) Name() string { return NameRandom }

// ProposeMove returns a random empty cell.
func (r *Random) ProposeMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	root, release, err := r.begin(ctx, pos)
	if err != nil {
		return board.NoMove, err
	}
	defer release()

	moves := root.EmptyCells()
	return moves[r.rng.Intn(len(moves))], nil
}

// Greedy plays one of the moves with the highest heuristic, chosen at random.
type Greedy struct {
	Base
	rng *frand.RNG
}

// NewGreedy creates a one-ply heuristic strategy.
func NewGreedy(rng *frand.RNG) *Greedy {
	return &Greedy{rng: rng}
}

// Name returns the registry name of the strategy.
func (g *Greedy) Name() string { return NameGreedy }

// ProposeMove returns a random move among those maximising the heuristic.
func (g *Greedy) ProposeMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	root, release, err := g.begin(ctx, pos)
	if err != nil {
		return board.NoMove, err
	}
	defer release()

	moves := root.EmptyCells()
	best := lo.MaxBy(moves, func(a, b board.Move) bool {
		return root.Heuristic(a) > root.Heuristic(b)
	})
	top := root.Heuristic(best)
	eligible := lo.Filter(moves, func(m board.Move, _ int) bool {
		return root.Heuristic(m) == top
	})

	return eligible[g.rng.Intn(len(eligible))], nil
}
