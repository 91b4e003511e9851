package engine

import (
	"context"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/hailam/adjacency/internal/board"
)

// Minimax is the iterative-deepening alpha-beta strategy.
type Minimax struct {
	Base

	// MaxDepth caps the search depth; 0 searches to the end of the game.
	MaxDepth int

	// OnInfo, if set, receives a report after every depth iteration.
	OnInfo func(SearchInfo)

	rng *frand.RNG
}

// NewMinimax creates an alpha-beta strategy whose tie-breaks draw from rng.
func NewMinimax(rng *frand.RNG) *Minimax {
	return &Minimax{rng: rng}
}

// Name returns the registry name of the strategy.
func (m *Minimax) Name() string { return NameMinimax }

// ProposeMove searches pos and returns the best move of the deepest
// completed iteration.
func (m *Minimax) ProposeMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	root, release, err := m.begin(ctx, pos)
	if err != nil {
		return board.NoMove, err
	}
	defer release()

	depth := root.PliesLeft()
	if m.MaxDepth > 0 && m.MaxDepth < depth {
		depth = m.MaxDepth
	}

	s := NewSearcher(m.rng)
	s.OnInfo = m.OnInfo
	result := s.Search(root, m.IsStopped, depth)

	log.Info().
		Str("strategy", m.Name()).
		Str("move", result.Move.String()).
		Int("score", result.Score).
		Int("depth", result.Depth).
		Msg("move chosen")

	return result.Move, nil
}
