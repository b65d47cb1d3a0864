package ir

// Lookup resolves a NodeID against the tree it came from.
type Lookup interface {
	Node(id NodeID) *Node
}

// VisitResult steers Tree.Visit.
type VisitResult int

const (
	// Recurse descends into the node's children.
	Recurse VisitResult = iota
	// Continue skips the node's children and moves on to its next sibling.
	Continue
	// Break stops the walk.
	Break
)

// Visitor receives each node with its immediate parent.
type Visitor func(n, parent *Node) VisitResult

// Tree is an arena of nodes rooted at a translation unit.
// Pointers returned by Node stay valid only until the next Add.
type Tree struct {
	nodes []Node
	files []string
}

// NewTree creates a tree whose root is the translation unit for the primary file.
func NewTree(primary string) *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, Node{
		ID:             0,
		Kind:           KindTranslationUnit,
		Name:           primary,
		Location:       Location{File: primary, Line: 1, Column: 1},
		LexicalParent:  NoNode,
		SemanticParent: NoNode,
		Canonical:      0,
	})
	t.files = append(t.files, primary)
	return t
}

// Root returns the translation unit node.
func (t *Tree) Root() *Node {
	return &t.nodes[0]
}

// Primary returns the path of the primary file.
func (t *Tree) Primary() string {
	return t.files[0]
}

// Files lists the primary file followed by every included file, in inclusion order.
func (t *Tree) Files() []string {
	return append([]string(nil), t.files...)
}

// AddFile records an included file.
func (t *Tree) AddFile(path string) {
	t.files = append(t.files, path)
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node for id, or nil if id is NoNode or out of range.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Add appends n as the last child of parent. Lexical and semantic parent both default to
// parent and the node is its own canonical declaration; callers adjust afterwards.
func (t *Tree) Add(parent NodeID, n Node) NodeID {
	id := NodeID(len(t.nodes))
	n.ID = id
	n.LexicalParent = parent
	n.SemanticParent = parent
	n.Canonical = id
	n.Children = nil
	t.nodes = append(t.nodes, n)
	if p := t.Node(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Visit walks every descendant of the root in depth-first pre-order.
func (t *Tree) Visit(fn Visitor) {
	t.VisitChildren(0, fn)
}

// VisitChildren walks the descendants of id in depth-first pre-order. It returns false if
// the visitor asked to Break.
func (t *Tree) VisitChildren(id NodeID, fn Visitor) bool {
	type frame struct {
		parent NodeID
		next   int
	}

	if t.Node(id) == nil {
		return true
	}
	stack := []frame{{parent: id}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		parent := &t.nodes[top.parent]
		if top.next >= len(parent.Children) {
			stack = stack[:len(stack)-1]
			continue
		}
		child := parent.Children[top.next]
		top.next++

		switch fn(&t.nodes[child], parent) {
		case Break:
			return false
		case Recurse:
			if len(t.nodes[child].Children) > 0 {
				stack = append(stack, frame{parent: child})
			}
		}
	}
	return true
}
