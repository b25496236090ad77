package merge

import (
	"github.com/aibasel/downward-sub002/factored"
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mserr"
)

// mergeTreeNode mirrors the original source's MergeTreeNode: a leaf holds
// the factor index it stands for, an internal node holds two children and
// no index of its own (tsIndex == -1 while internal).
type mergeTreeNode struct {
	parent, left, right *mergeTreeNode
	tsIndex             int
}

func newLeaf(idx int) *mergeTreeNode { return &mergeTreeNode{tsIndex: idx} }

func newInternal(left, right *mergeTreeNode) *mergeTreeNode {
	n := &mergeTreeNode{left: left, right: right, tsIndex: -1}
	left.parent = n
	right.parent = n
	return n
}

func (n *mergeTreeNode) isLeaf() bool { return n.left == nil && n.right == nil }

func (n *mergeTreeNode) hasTwoLeafChildren() bool {
	return n.left != nil && n.right != nil && n.left.isLeaf() && n.right.isLeaf()
}

// leftmostMergeable returns the deepest-leftmost node whose two children
// are both leaves (spec.md §4.8 "the deepest both-leaves node").
func (n *mergeTreeNode) leftmostMergeable() *mergeTreeNode {
	if n.hasTwoLeafChildren() {
		return n
	}
	if n.left != nil {
		return n.left.leftmostMergeable()
	}
	return n.right.leftmostMergeable()
}

func (n *mergeTreeNode) findLeaf(idx int) *mergeTreeNode {
	if n.isLeaf() {
		if n.tsIndex == idx {
			return n
		}
		return nil
	}
	if f := n.left.findLeaf(idx); f != nil {
		return f
	}
	return n.right.findLeaf(idx)
}

// precomputedTreeStrategy builds a caterpillar binary tree once over a
// linear variable order and always merges the two leaves under the
// deepest both-leaves node, substituting the product index into their
// parent afterwards (spec.md §4.8 "precomputed tree variant").
type precomputedTreeStrategy struct {
	root *mergeTreeNode
}

func newPrecomputedTreeStrategy(task mscore.TaskView, order mscore.LinearVariableOrder, rng mscore.RNG) *precomputedTreeStrategy {
	varOrder := linearVariableOrder(task, order, rng)
	if len(varOrder) == 0 {
		return &precomputedTreeStrategy{root: newLeaf(0)}
	}
	root := newLeaf(varOrder[0])
	for _, v := range varOrder[1:] {
		root = newInternal(root, newLeaf(v))
	}
	return &precomputedTreeStrategy{root: root}
}

func (p *precomputedTreeStrategy) Next(sys *factored.System) (int, int, error) {
	if p.root.isLeaf() {
		return 0, 0, mserr.InvariantViolation.New("merge tree exhausted: no factor pair remains")
	}
	node := p.root.leftmostMergeable()
	return node.left.tsIndex, node.right.tsIndex, nil
}

func (p *precomputedTreeStrategy) Applied(i, j, newIndex int) {
	leaf := p.root.findLeaf(i)
	if leaf == nil || leaf.parent == nil {
		return
	}
	parent := leaf.parent
	parent.left = nil
	parent.right = nil
	parent.tsIndex = newIndex
}

// linearVariableOrder realizes the LinearVariableOrder variants that make
// sense without a causal-graph builder (none exists elsewhere in this
// module; PDB/regression construction never needs one). "level" is the
// task's own variable numbering, which the upstream SAS translator already
// orders by causal-graph level; "reverse_level" is its reverse. The
// causal-graph-interleaved variants named in the original source
// (CG_GOAL_LEVEL, GOAL_CG_LEVEL, ...) are not reachable through
// mscore.LinearVariableOrder and are out of scope.
func linearVariableOrder(task mscore.TaskView, order mscore.LinearVariableOrder, rng mscore.RNG) []int {
	n := task.NumVariables()
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	switch order {
	case mscore.OrderReverseLevel:
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	case mscore.OrderRandom:
		if rng != nil {
			rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		}
	}
	return out
}
