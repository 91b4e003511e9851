package engine

import (
	"strings"

	"github.com/pkg/errors"
)

// Registered strategy names.
const (
	NameHuman     = "human"
	NameRandom    = "random"
	NameGreedy    = "greedy"
	NameMinimax   = "minimax"
	NameLocalBeam = "beam"
	NameGenetic   = "genetic"
)

var strategyNames = []string{NameHuman, NameRandom, NameGreedy, NameMinimax, NameLocalBeam, NameGenetic}

// Options configures strategies built by NewStrategy. Zero values select defaults.
type Options struct {
	Seed         uint64 // 0 draws from system entropy
	MaxDepth     int    // alpha-beta depth cap; 0 searches to the end of the game
	BeamWidth    int
	Generations  int
	Population   int
	MutationRate float64
	OnInfo       func(SearchInfo)
}

// StrategyNames returns the registered names in display order.
func StrategyNames() []string {
	return append([]string(nil), strategyNames...)
}

// NewStrategy builds the named strategy. The human player has no strategy
// and yields (nil, nil).
func NewStrategy(name string, opts Options) (Strategy, error) {
	rng := NewRand(opts.Seed)

	switch strings.ToLower(name) {
	case NameHuman:
		return nil, nil
	case NameRandom:
		return NewRandom(rng), nil
	case NameGreedy:
		return NewGreedy(rng), nil
	case NameMinimax:
		m := NewMinimax(rng)
		m.MaxDepth = opts.MaxDepth
		m.OnInfo = opts.OnInfo
		return m, nil
	case NameLocalBeam:
		return NewLocalBeam(opts.BeamWidth), nil
	case NameGenetic:
		g := NewGenetic(rng)
		if opts.Generations > 0 {
			g.Generations = opts.Generations
		}
		if opts.Population > 0 {
			g.Population = opts.Population
		}
		if opts.MutationRate > 0 {
			g.MutationRate = opts.MutationRate
		}
		return g, nil
	}
	return nil, errors.Wrapf(ErrUnknownStrategy, "%q", name)
}
