package engine

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/hailam/adjacency/internal/board"
	"github.com/hailam/adjacency/internal/tree"
)

// Genetic search defaults.
const (
	DefaultGenerations    = 1500
	DefaultPopulation     = 50
	DefaultMutationRate   = 0.033
	DefaultMaxGenomeDepth = 8
)

// individual is one candidate move sequence.
type individual struct {
	moves   []board.Move
	leaf    tree.NodeID
	fitness int
}

// Genetic evolves a population of move sequences. Every generation is merged
// into one shared action tree, scored by minimax, and bred by
// fitness-proportional selection.
type Genetic struct {
	Base

	Generations  int
	Population   int
	MutationRate float64
	MaxDepth     int

	rng *frand.RNG
}

// NewGenetic creates a genetic strategy with the default parameters.
func NewGenetic(rng *frand.RNG) *Genetic {
	return &Genetic{
		Generations:  DefaultGenerations,
		Population:   DefaultPopulation,
		MutationRate: DefaultMutationRate,
		MaxDepth:     DefaultMaxGenomeDepth,
		rng:          rng,
	}
}

// Name returns the registry name of the strategy.
func (g *Genetic) Name() string { return NameGenetic }

// ProposeMove evolves move sequences from pos and returns the first move of
// the best line in the accumulated tree.
func (g *Genetic) ProposeMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	root, release, err := g.begin(ctx, pos)
	if err != nil {
		return board.NoMove, err
	}
	defer release()

	t := NewActionTree(nil)
	generation := g.initialGeneration(root)
	generations := max(g.Generations, 1)

	gen := 0
	for ; gen < generations; gen++ {
		// The first generation always runs so that the tree is never empty.
		if gen > 0 && g.IsStopped() {
			log.Debug().Int("generation", gen).Msg("genetic search interrupted")
			break
		}

		for _, ind := range generation {
			g.reserve(t, ind)
		}
		if err := EvaluateTree(t, root); err != nil {
			return board.NoMove, err
		}

		if gen == generations-1 {
			break
		}

		total := 0
		for _, ind := range generation {
			ind.fitness = g.fitness(t, ind)
			total += ind.fitness
		}
		generation = g.breed(root, generation, total)
	}

	move, err := rootChoice(t)
	if err != nil {
		return board.NoMove, err
	}

	log.Info().
		Str("strategy", g.Name()).
		Str("move", move.String()).
		Int("score", t.Value(t.Root()).Score).
		Int("generations", gen+1).
		Int("nodes", t.Len()).
		Msg("move chosen")

	return move, nil
}

// genomeLength is the number of moves per individual.
func (g *Genetic) genomeLength(pos *board.Position) int {
	return min(pos.PliesLeft(), max(g.MaxDepth, 1), pos.EmptyCount())
}

// initialGeneration draws Population random sequences without replacement
// from the legal moves.
func (g *Genetic) initialGeneration(pos *board.Position) []*individual {
	length := g.genomeLength(pos)
	population := max(g.Population, 1)
	generation := make([]*individual, 0, population)

	for i := 0; i < population; i++ {
		empty := pos.EmptyCells()
		ind := &individual{moves: make([]board.Move, length)}
		for j := 0; j < length; j++ {
			k := g.rng.Intn(len(empty))
			ind.moves[j] = empty[k]
			empty[k] = empty[len(empty)-1]
			empty = empty[:len(empty)-1]
		}
		generation = append(generation, ind)
	}

	return generation
}

// reserve inserts the individual's sequence into the tree, reusing any
// existing prefix, and records the leaf it ends on.
func (g *Genetic) reserve(t *ActionTree, ind *individual) {
	cur := t.Root()
	for _, m := range ind.moves {
		next := findAction(t, cur, m)
		if next == tree.NoNode {
			next = t.AddChild(cur, Action{Move: m})
		}
		cur = next
	}
	ind.leaf = cur
}

// fitness counts how many levels up from its leaf the individual's score is
// carried by minimax, squared.
func (g *Genetic) fitness(t *ActionTree, ind *individual) int {
	levels := 0
	for cur := ind.leaf; t.Parent(cur) != tree.NoNode; cur = t.Parent(cur) {
		if t.Value(cur).Score != t.Value(t.Parent(cur)).Score {
			break
		}
		levels++
	}
	return levels * levels
}

// breed builds the next generation: 2*Population roulette picks, paired in
// order, each pair producing one offspring.
func (g *Genetic) breed(pos *board.Position, generation []*individual, total int) []*individual {
	next := make([]*individual, 0, len(generation))
	for i := 0; i < len(generation); i++ {
		p1 := g.roulette(generation, total)
		p2 := g.roulette(generation, total)
		next = append(next, g.crossover(pos, p1, p2))
	}
	return next
}

// roulette picks an individual with probability proportional to its fitness.
// When no individual has positive fitness the pick is uniform.
func (g *Genetic) roulette(generation []*individual, total int) *individual {
	if total <= 0 {
		return generation[g.rng.Intn(len(generation))]
	}
	r := g.rng.Intn(total)
	for _, ind := range generation {
		if r < ind.fitness {
			return ind
		}
		r -= ind.fitness
	}
	return generation[len(generation)-1]
}

// crossover splices p1's prefix with p2's suffix at a random point, replaces
// duplicate moves with unused legal moves and, with probability MutationRate,
// swaps two random genes.
func (g *Genetic) crossover(pos *board.Position, p1, p2 *individual) *individual {
	n := len(p1.moves)
	child := &individual{moves: make([]board.Move, n)}

	point := g.rng.Intn(n)
	copy(child.moves[:point], p1.moves[:point])
	copy(child.moves[point:], p2.moves[point:])

	unused := lo.Without(pos.EmptyCells(), child.moves...)
	seen := make(map[board.Move]struct{}, n)
	for i, m := range child.moves {
		if _, dup := seen[m]; dup {
			k := g.rng.Intn(len(unused))
			child.moves[i] = unused[k]
			unused = append(unused[:k], unused[k+1:]...)
		}
		seen[child.moves[i]] = struct{}{}
	}

	if g.rng.Float64() < g.MutationRate {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		child.moves[i], child.moves[j] = child.moves[j], child.moves[i]
	}

	return child
}
