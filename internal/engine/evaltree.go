package engine

import (
	"github.com/pkg/errors"

	"github.com/hailam/adjacency/internal/board"
	"github.com/hailam/adjacency/internal/tree"
)

// Action is the value held by each node of an action-sequence tree.
// The root carries NoMove.
type Action struct {
	Move  board.Move
	Score int

	// Pos optionally caches the position reached at this node.
	// EvaluateTree does not rely on it.
	Pos *board.Position
}

// ActionTree is a tree of hypothetical move sequences.
type ActionTree = tree.Tree[Action]

// NewActionTree creates a tree with an empty root action.
func NewActionTree(rootPos *board.Position) *ActionTree {
	return tree.New(Action{Move: board.NoMove, Pos: rootPos})
}

// findAction returns the child of parent playing m, or tree.NoNode.
func findAction(t *ActionTree, parent tree.NodeID, m board.Move) tree.NodeID {
	return t.FindChild(parent, func(a *Action) bool { return a.Move == m })
}

// EvaluateTree scores every node by plain minimax: leaves by replaying their
// move path on a copy of root, interior nodes by the max (root level) or min
// of their children, alternating per level. Scores are from the point of
// view of the side to move in root.
func EvaluateTree(t *ActionTree, root *board.Position) error {
	return evaluateNode(t, t.Root(), root, root.SideToMove(), true)
}

func evaluateNode(t *ActionTree, id tree.NodeID, root *board.Position, searching board.Mark, isMax bool) error {
	children := t.Children(id)

	if len(children) == 0 {
		leaf := root.Copy()
		for _, a := range t.Path(id) {
			if err := leaf.Apply(a.Move); err != nil {
				return errors.Wrapf(err, "replaying %v", a.Move)
			}
		}
		t.Value(id).Score = leaf.Evaluate(searching)
		return nil
	}

	score := Infinity
	if isMax {
		score = -Infinity
	}
	for _, c := range children {
		if err := evaluateNode(t, c, root, searching, !isMax); err != nil {
			return err
		}
		v := t.Value(c).Score
		if (isMax && v > score) || (!isMax && v < score) {
			score = v
		}
	}
	t.Value(id).Score = score
	return nil
}

// rootChoice returns the move of the first root child whose score equals the
// root's score.
func rootChoice(t *ActionTree) (board.Move, error) {
	root := t.Root()
	want := t.Value(root).Score
	id := t.FindChild(root, func(a *Action) bool { return a.Score == want })
	if id == tree.NoNode {
		return board.NoMove, errors.Wrap(ErrNoLegalMove, "action tree has no scored root child")
	}
	return t.Value(id).Move, nil
}
