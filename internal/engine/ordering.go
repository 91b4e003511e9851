package engine

import (
	"sort"

	"github.com/hailam/adjacency/internal/board"
)

// child pairs a candidate move with the position it produces.
type child struct {
	move  board.Move
	pos   *board.Position
	score int // ordering key
}

// expand generates every successor of pos in ascending cell order.
func expand(pos *board.Position) []child {
	moves := pos.EmptyCells()
	children := make([]child, 0, len(moves))
	for _, m := range moves {
		next, err := pos.Child(m)
		if err != nil {
			// Only empty cells are enumerated, so Apply cannot fail here.
			panic(err)
		}
		children = append(children, child{move: m, pos: next})
	}
	return children
}

// orderByParent sorts children by descending heuristic measured on the
// parent position, i.e. from the mover's point of view. Used at the root.
func orderByParent(parent *board.Position, children []child) {
	for i := range children {
		children[i].score = parent.Heuristic(children[i].move)
	}
	sortChildren(children)
}

// orderBySuccessor sorts children by descending heuristic of the move
// measured on the successor position. Used at interior nodes.
func orderBySuccessor(children []child) {
	for i := range children {
		children[i].score = children[i].pos.Heuristic(children[i].move)
	}
	sortChildren(children)
}

func sortChildren(children []child) {
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].score > children[j].score
	})
}

// promote moves the child playing m to the front, keeping the relative order
// of the rest. Returns false if m is not among the children.
func promote(children []child, m board.Move) bool {
	for i := range children {
		if children[i].move == m {
			c := children[i]
			copy(children[1:i+1], children[:i])
			children[0] = c
			return true
		}
	}
	return false
}
