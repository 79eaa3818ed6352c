// Package tree builds and holds the multi-level abstraction tree used for
// collapsed-tree retrieval: candidate chunks at level 0, machine-generated
// cluster summaries above them.
package tree

import (
	"github.com/google/uuid"

	"raptor/internal/domain"
)

// Node is a single tree node. A node is either a leaf derived from a
// candidate (Candidate set, no children, level 0) or a synthesized summary
// (children set, no candidate). Parent and Children are id references into
// the owning Forest rather than live pointers, so the structure stays
// cycle-free.
type Node struct {
	ID        string
	Content   string
	Embedding []float64
	Level     int
	Children  []string
	Parent    string
	Candidate *domain.Candidate
}

// IsLeaf reports whether the node maps one-to-one to an original candidate.
func (n *Node) IsLeaf() bool { return n.Candidate != nil }

// Forest is an arena of nodes keyed by id plus the ordered set of roots.
// A build may legitimately end with more than one root.
type Forest struct {
	nodes map[string]*Node
	roots []string
}

// NewForest returns an empty forest.
func NewForest() *Forest {
	return &Forest{nodes: make(map[string]*Node)}
}

// Add registers a node in the arena.
func (f *Forest) Add(n *Node) { f.nodes[n.ID] = n }

// Node looks a node up by id. Returns nil if absent.
func (f *Forest) Node(id string) *Node { return f.nodes[id] }

// Len returns the number of nodes in the arena.
func (f *Forest) Len() int { return len(f.nodes) }

// SetRoots fixes the ordered root set at the end of a build.
func (f *Forest) SetRoots(ids []string) { f.roots = ids }

// Roots returns the root nodes in their stored order.
func (f *Forest) Roots() []*Node {
	out := make([]*Node, 0, len(f.roots))
	for _, id := range f.roots {
		if n := f.nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Flatten returns every node exactly once in pre-order: each root before its
// children, children in stored order, roots in root order. Implemented with
// an explicit stack so deep or wide forests cannot exhaust the call stack.
func (f *Forest) Flatten() []*Node {
	out := make([]*Node, 0, len(f.nodes))
	for _, rootID := range f.roots {
		stack := []string{rootID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := f.nodes[id]
			if n == nil {
				continue
			}
			out = append(out, n)
			// Push children reversed so the first child pops first.
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
		}
	}
	return out
}

// IDSource hands out unique node ids. Injected into the builder so tests can
// substitute a deterministic sequence.
type IDSource interface {
	NewID() string
}

// UUIDSource generates random UUID node ids.
type UUIDSource struct{}

// NewID returns a fresh random UUID string.
func (UUIDSource) NewID() string { return uuid.NewString() }
