package pdb

import (
	"github.com/aibasel/downward-sub002/matchtree"
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/pattern"
)

// extractPlan follows the generator chain forward from initRank to an
// abstract goal. generator[] was recorded during the goal-sourced
// regression fill, where an edge runs from a post-state s to its
// predecessor s+HashEffect; walking forward from a state therefore steps
// to cur-HashEffect(generator[cur]), the inverse of that regression edge.
//
// When wildcard is true, every concrete operator that is forward-applicable
// at cur, shares the generator's cost, and reaches the same successor is
// emitted together as one parallel step (spec.md §4.3 "Wildcard plan
// extraction"). When wildcard is false (spec.md §4.11 "apply one operator —
// for wildcard=false, the single chosen one"), only the generator operator
// itself is emitted: a plan built this way commits to one specific operator
// per step, so a concrete task where that operator's own precondition fails
// surfaces as a flaw instead of silently falling through to a
// same-cost/same-successor sibling.
func extractPlan(h *pattern.PerfectHash, task mscore.TaskView, forwardTree *matchtree.MatchTree, ops []abstractOperator, generator []int, dist []int, initRank int, wildcard bool) [][]int {
	var plan [][]int
	cur := initRank
	for dist[cur] != 0 {
		genIdx := generator[cur]
		if genIdx == -1 {
			break // unreachable from here; should not happen when dist[initRank] != INF
		}
		gen := ops[genIdx]
		succ := cur - gen.hashEffect

		if !wildcard {
			plan = append(plan, []int{gen.concreteOp})
			cur = succ
			continue
		}

		seen := make(map[int]bool)
		var step []int
		for _, opIdx := range forwardTree.Applicable(stateAt(h, task, cur)) {
			op := ops[opIdx]
			if op.cost != gen.cost {
				continue
			}
			if cur-op.hashEffect != succ {
				continue
			}
			if !seen[op.concreteOp] {
				seen[op.concreteOp] = true
				step = append(step, op.concreteOp)
			}
		}
		plan = append(plan, step)
		cur = succ
	}
	return plan
}
