package engine

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/hailam/adjacency/internal/board"
	"github.com/hailam/adjacency/internal/tree"
)

// DefaultBeamWidth is the number of leaves kept per ply.
const DefaultBeamWidth = 30

// LocalBeam grows an action tree ply by ply, keeping only the Width
// best-scoring new leaves after each ply.
type LocalBeam struct {
	Base

	Width int
}

// NewLocalBeam creates a beam search strategy of the given width.
func NewLocalBeam(width int) *LocalBeam {
	if width <= 0 {
		width = DefaultBeamWidth
	}
	return &LocalBeam{Width: width}
}

// Name returns the registry name of the strategy.
func (b *LocalBeam) Name() string { return NameLocalBeam }

// ProposeMove runs the beam search from pos.
func (b *LocalBeam) ProposeMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	root, release, err := b.begin(ctx, pos)
	if err != nil {
		return board.NoMove, err
	}
	defer release()

	width := max(b.Width, 1)
	t := NewActionTree(root)
	frontier := []tree.NodeID{t.Root()}

	for ply := 0; ply < root.PliesLeft(); ply++ {
		// The first ply always runs so that the root has children to choose from.
		if ply > 0 && b.IsStopped() {
			log.Debug().Int("ply", ply).Msg("beam search interrupted")
			break
		}

		next, err := b.advance(t, root, frontier, width)
		if err != nil {
			return board.NoMove, err
		}
		if len(next) == 0 {
			break
		}
		frontier = next

		log.Debug().Int("ply", ply).Int("frontier", len(frontier)).Int("nodes", t.Len()).Msg("beam ply done")
	}

	if err := EvaluateTree(t, root); err != nil {
		return board.NoMove, err
	}

	move, err := rootChoice(t)
	if err != nil {
		return board.NoMove, err
	}

	log.Info().
		Str("strategy", b.Name()).
		Str("move", move.String()).
		Int("score", t.Value(t.Root()).Score).
		Msg("move chosen")

	return move, nil
}

// advance expands the frontier by one ply, scores the tree and keeps the
// width best new leaves. Discarded leaves are pruned together with any
// ancestor they leave childless.
func (b *LocalBeam) advance(t *ActionTree, root *board.Position, frontier []tree.NodeID, width int) ([]tree.NodeID, error) {
	next := b.grow(t, frontier)
	if len(next) == 0 {
		return nil, nil
	}

	if err := EvaluateTree(t, root); err != nil {
		return nil, err
	}

	sort.SliceStable(next, func(i, j int) bool {
		return t.Value(next[i]).Score > t.Value(next[j]).Score
	})
	if len(next) > width {
		for _, id := range next[width:] {
			t.Prune(id)
		}
		next = next[:width]
	}

	// Only the frontier needs positions to expand from.
	for _, id := range frontier {
		t.Value(id).Pos = nil
	}
	return next, nil
}

// grow adds one child per legal move under every frontier leaf and returns
// the new leaves.
func (b *LocalBeam) grow(t *ActionTree, frontier []tree.NodeID) []tree.NodeID {
	var next []tree.NodeID
	for _, id := range frontier {
		pos := t.Value(id).Pos
		if pos == nil || pos.IsTerminal() {
			continue
		}
		for _, c := range expand(pos) {
			next = append(next, t.AddChild(id, Action{Move: c.move, Pos: c.pos}))
		}
	}
	return next
}
