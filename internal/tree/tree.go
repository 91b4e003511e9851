// Package tree provides an arena-backed rooted tree. Nodes are addressed by
// NodeID; parents and children are stored as indices, so reparenting and
// pruning are index rewrites with no back-references to manage.
package tree

// NodeID addresses a node within one Tree.
type NodeID int32

// NoNode is the null node reference.
const NoNode NodeID = -1

type node[T any] struct {
	value    T
	parent   NodeID
	children []NodeID
	live     bool
}

// Tree is a rooted tree whose nodes live in a single slice.
// Freed slots are recycled by later insertions.
type Tree[T any] struct {
	nodes []node[T]
	free  []NodeID
	live  int
}

// New creates a tree holding only a root with the given value.
func New[T any](rootValue T) *Tree[T] {
	t := &Tree[T]{}
	t.alloc(rootValue)
	return t
}

// Root returns the root node.
func (t *Tree[T]) Root() NodeID {
	return 0
}

// Len returns the number of live nodes, root included.
func (t *Tree[T]) Len() int {
	return t.live
}

// Value returns a pointer to the node's value for reading or updating in place.
// The pointer is invalidated by the next insertion.
func (t *Tree[T]) Value(id NodeID) *T {
	return &t.nodes[id].value
}

// Parent returns the node's parent, or NoNode for the root and detached nodes.
func (t *Tree[T]) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// Children returns the node's children in insertion order.
// The slice must not be modified by the caller.
func (t *Tree[T]) Children(id NodeID) []NodeID {
	return t.nodes[id].children
}

// IsLeaf reports whether the node has no children.
func (t *Tree[T]) IsLeaf(id NodeID) bool {
	return len(t.nodes[id].children) == 0
}

// Depth returns the number of edges between the node and its topmost ancestor.
func (t *Tree[T]) Depth(id NodeID) int {
	d := 0
	for p := t.nodes[id].parent; p != NoNode; p = t.nodes[p].parent {
		d++
	}
	return d
}

// AddChild creates a new node holding value under parent.
func (t *Tree[T]) AddChild(parent NodeID, value T) NodeID {
	id := t.alloc(value)
	t.nodes[id].parent = parent
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// FindChild returns the first child of parent whose value satisfies match,
// or NoNode.
func (t *Tree[T]) FindChild(parent NodeID, match func(*T) bool) NodeID {
	for _, c := range t.nodes[parent].children {
		if match(&t.nodes[c].value) {
			return c
		}
	}
	return NoNode
}

// Attach makes child a child of parent, detaching it from its previous parent
// first. A node never has two parents. Attaching an existing child is a no-op.
func (t *Tree[T]) Attach(parent, child NodeID) {
	if t.nodes[child].parent == parent {
		return
	}
	t.Detach(child)
	t.nodes[child].parent = parent
	t.nodes[parent].children = append(t.nodes[parent].children, child)
}

// Detach unlinks the node from its parent. The node and its subtree stay
// allocated and can be attached elsewhere.
func (t *Tree[T]) Detach(id NodeID) {
	p := t.nodes[id].parent
	if p == NoNode {
		return
	}
	siblings := t.nodes[p].children
	for i, c := range siblings {
		if c == id {
			t.nodes[p].children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	t.nodes[id].parent = NoNode
}

// Remove detaches the node and frees its whole subtree.
func (t *Tree[T]) Remove(id NodeID) {
	t.Detach(id)
	t.release(id)
}

// Prune removes the node and then every ancestor left without children,
// stopping below the root.
func (t *Tree[T]) Prune(id NodeID) {
	if id == t.Root() {
		return
	}
	parent := t.nodes[id].parent
	t.Remove(id)

	for parent != NoNode && parent != t.Root() && t.IsLeaf(parent) {
		grandparent := t.nodes[parent].parent
		t.Remove(parent)
		parent = grandparent
	}
}

// Path returns the values on the way from the root's child down to id.
// The root's own value is not included.
func (t *Tree[T]) Path(id NodeID) []T {
	path := make([]T, t.Depth(id))
	for i, cur := len(path)-1, id; i >= 0; i, cur = i-1, t.nodes[cur].parent {
		path[i] = t.nodes[cur].value
	}
	return path
}

func (t *Tree[T]) alloc(value T) NodeID {
	t.live++
	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		t.nodes[id] = node[T]{value: value, parent: NoNode, live: true}
		return id
	}
	t.nodes = append(t.nodes, node[T]{value: value, parent: NoNode, live: true})
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree[T]) release(id NodeID) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !t.nodes[n].live {
			continue
		}
		stack = append(stack, t.nodes[n].children...)

		var zero T
		t.nodes[n] = node[T]{value: zero, parent: NoNode}
		t.free = append(t.free, n)
		t.live--
	}
}
