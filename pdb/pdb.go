package pdb

import (
	"fmt"

	"github.com/aibasel/downward-sub002/matchtree"
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mserr"
	"github.com/aibasel/downward-sub002/pattern"
	"github.com/aibasel/downward-sub002/pqueue"
)

// PDB is an immutable pattern database (spec.md §3 "PDB"): the distance
// table at every abstract rank, and an optional wildcard plan from the
// task's initial state.
type PDB struct {
	hash      *pattern.PerfectHash
	distances []int // INF for unreachable
	plan      [][]int
	hasPlan   bool
}

// Hash returns the PerfectHash this PDB was built over.
func (p *PDB) Hash() *pattern.PerfectHash { return p.hash }

// Value returns the abstract distance at rank, or mscore.INF if
// unreachable.
func (p *PDB) Value(rank int) int { return p.distances[rank] }

// Plan returns the wildcard plan built alongside this PDB (a sequence of
// sets of concrete operator ids, spec.md §4.3), and whether one was
// requested and is available.
func (p *PDB) Plan() ([][]int, bool) { return p.plan, p.hasPlan }

// Build constructs a PDB for pattern pat over task (spec.md §4.3). costOf
// overrides a concrete operator's cost if non-nil; pass nil to use task's
// own operator costs. withPlan requests plan extraction from the
// task's concrete initial state; wildcard selects between a wildcard plan
// (parallel sets of interchangeable operators) and a single-operator plan
// per step (spec.md §4.11, mscore.CEGARConfig.UseWildcardPlans). wildcard is
// ignored when withPlan is false.
func Build(task mscore.TaskView, pat pattern.Pattern, costOf func(opID int) int, withPlan bool, wildcard bool) (*PDB, error) {
	h, err := pattern.New(pat, task.Domain)
	if err != nil {
		return nil, err
	}

	ops := buildAbstractOperators(task, h)
	if costOf != nil {
		for i := range ops {
			ops[i].cost = costOf(ops[i].concreteOp)
		}
	}

	mtOps := make([]matchtree.Operator, len(ops))
	for i, op := range ops {
		mtOps[i] = matchtree.Operator{ID: i, Preconditions: op.preconditions}
	}
	tree := matchtree.Build(len(pat), mtOps)

	goalStates := goalRanks(h, task)
	dist, generator := regressionFill(h, task, tree, ops, goalStates)

	initRank := h.RankFacts(initialAssignment(task))
	if dist[initRank] == mscore.INF {
		return nil, mserr.Unsolvable.New(fmt.Sprintf("pattern %v: initial state has infinite abstract distance", []int(pat)))
	}

	p := &PDB{hash: h, distances: dist}
	if withPlan {
		var forwardTree *matchtree.MatchTree
		if wildcard {
			fwdOps := make([]matchtree.Operator, len(ops))
			for i, op := range ops {
				fwdOps[i] = matchtree.Operator{ID: i, Preconditions: op.forwardPreconditions}
			}
			forwardTree = matchtree.Build(len(pat), fwdOps)
		}
		p.plan = extractPlan(h, task, forwardTree, ops, generator, dist, initRank, wildcard)
		p.hasPlan = true
	}
	return p, nil
}

func initialAssignment(task mscore.TaskView) []int {
	out := make([]int, task.NumVariables())
	for v := range out {
		out[v] = task.InitialValue(v)
	}
	return out
}

// goalRanks collects every abstract rank whose unranking satisfies every
// pattern-covered goal fact (spec.md §4.3 step 3).
func goalRanks(h *pattern.PerfectHash, task mscore.TaskView) []int {
	goalByPatternIndex := make(map[int]int)
	for _, g := range task.Goals() {
		if pi := h.IndexOf(g.Var); pi != -1 {
			goalByPatternIndex[pi] = g.Value
		}
	}

	var free []freeVar
	for pi, v := range h.Pattern() {
		if _, fixed := goalByPatternIndex[pi]; !fixed {
			free = append(free, freeVar{patternIndex: pi, domainSize: task.Domain(v), multiplier: h.Multiplier(pi)})
		}
	}

	var out []int
	var base int
	for pi, val := range goalByPatternIndex {
		base += val * h.Multiplier(pi)
	}
	var walk func(i int, rank int)
	walk = func(i int, rank int) {
		if i == len(free) {
			out = append(out, rank)
			return
		}
		fv := free[i]
		for val := 0; val < fv.domainSize; val++ {
			walk(i+1, rank+val*fv.multiplier)
		}
	}
	walk(0, base)
	return out
}

// regressionFill runs a goal-sourced shortest-path fill over the
// regression graph induced by tree (spec.md §4.3 step 4): from each goal
// rank, repeatedly apply applicable abstractOperators to move
// s -> s+HashEffect, relaxing distances. generator[s] records the
// abstractOperator index that first reached s at its final distance, used
// for forward plan extraction.
func regressionFill(h *pattern.PerfectHash, task mscore.TaskView, tree *matchtree.MatchTree, ops []abstractOperator, goalStates []int) (dist []int, generator []int) {
	size := h.Size()
	dist = make([]int, size)
	generator = make([]int, size)
	for i := range dist {
		dist[i] = mscore.INF
		generator[i] = -1
	}

	pq := pqueue.New[int]()
	for _, g := range goalStates {
		if dist[g] > 0 {
			dist[g] = 0
			pq.Push(0, g)
		}
	}

	for !pq.Empty() {
		d, s := pq.Pop()
		if d > dist[s] {
			continue // stale entry
		}
		for _, opIdx := range tree.Applicable(stateAt(h, task, s)) {
			op := ops[opIdx]
			succ := s + op.hashEffect
			nd := d + op.cost
			if nd < dist[succ] {
				dist[succ] = nd
				generator[succ] = opIdx
				pq.Push(nd, succ)
			}
		}
	}
	return dist, generator
}

// stateAt returns the (patternIndex -> value) query function
// MatchTree.Applicable needs for abstract state rank.
func stateAt(h *pattern.PerfectHash, task mscore.TaskView, rank int) func(int) int {
	return func(patternIndex int) int {
		return h.UnrankVar(rank, patternIndex, task.Domain)
	}
}
