package shrink

import (
	"sort"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/transition"
)

// bisimulationStrategy computes the coarsest partition such that two
// states share a class only if they agree on goal status, goal_d, and
// (for every label group) the multiset of target classes their outgoing
// transitions reach (spec.md §4.7 "bisimulation"). greedy skips
// transitions that are not on a shortest path to the goal, yielding a
// coarser, still admissibility-preserving relation.
type bisimulationStrategy struct {
	greedy  bool
	atLimit mscore.AtLimitPolicy
}

type labeledEdge struct {
	group  int
	target int
}

// refinementKey gives the extra per-state discriminator for one
// refinement stage, given the partition produced by the previous stage.
type refinementKey func(state int, prevClass []int) string

func (s bisimulationStrategy) ComputePartition(ts *transition.TransitionSystem, target, threshold int, rng mscore.RNG) ([]int, int, bool) {
	n := ts.NumStates()
	if !needsShrink(n, target, threshold) {
		return nil, 0, false
	}
	dist := ts.Distances()

	groups := ts.Groups()
	outgoing := make([][]labeledEdge, n)
	for gi, g := range groups {
		for _, tr := range g.Transitions {
			if s.greedy && !onShortestPath(dist, g.Cost, tr) {
				continue
			}
			outgoing[tr.Src] = append(outgoing[tr.Src], labeledEdge{group: gi, target: tr.Target})
		}
	}

	// Stage 1: goal flag. Stage 2: goal_d. Stage 3+: outgoing signature,
	// to a fixpoint. Separating goal-flag and goal_d into their own
	// stages (rather than folding everything into one signature) gives
	// at_limit a meaningful intermediate stopping point, matching the
	// source's incremental signature refinement.
	class := make([]int, n) // everyone starts in one class
	numClasses := 1

	goalKey := func(s int, _ []int) string {
		if ts.IsGoal(s) {
			return "g"
		}
		return "n"
	}
	hKey := func(s int, _ []int) string { return intKey(dist.GoalD(s)) }
	edgeKey := func(s int, prev []int) string { return signatureKey(outgoing[s], prev) }

	// The goal/non-goal split is mandatory (spec.md §4.7: "must not merge
	// goal states with non-goal states for bisimulation"), never subject
	// to at_limit — it always applies before any budget-limited stage.
	class, numClasses = refineByKey(class, numClasses, goalKey)
	if numClasses >= target {
		return class, numClasses, true
	}

	// apply runs one budget-limited refinement round; stop reports
	// whether the whole computation should return now (budget reached or
	// exceeded), changed reports whether this round actually split
	// anything (used to detect a fixpoint in the edge-signature loop
	// below).
	apply := func(key refinementKey) (stop, changed bool) {
		refined, newCount := refineByKey(class, numClasses, key)
		if newCount == numClasses {
			return false, false
		}
		if newCount > target {
			if s.atLimit == mscore.AtLimitReturn {
				return true, true
			}
			class, numClasses = capSplitsAtBudget(class, numClasses, key, target)
			return true, true
		}
		class, numClasses = refined, newCount
		return numClasses >= target, true
	}

	if stop, _ := apply(hKey); stop {
		return class, numClasses, true
	}
	for {
		stop, changed := apply(edgeKey)
		if stop || !changed {
			break
		}
	}
	return class, numClasses, true
}

func intKey(v int) string { return string(appendInt(nil, v)) }

// onShortestPath reports whether transition tr (under a group of the
// given cost) lies on a shortest path to the goal: goal_d(src) equals
// cost + goal_d(target).
func onShortestPath(dist *transition.Distances, cost int, tr transition.Transition) bool {
	if dist.GoalD(tr.Src) == mscore.INF || dist.GoalD(tr.Target) == mscore.INF {
		return false
	}
	return dist.GoalD(tr.Src) == cost+dist.GoalD(tr.Target)
}

// refineByKey splits each current class by key(state, class), never
// merging across existing classes, only splitting within them.
func refineByKey(class []int, numClasses int, key refinementKey) ([]int, int) {
	byClass := make([][]int, numClasses)
	for s, c := range class {
		byClass[c] = append(byClass[c], s)
	}

	newClass := make([]int, len(class))
	next := 0
	for c := 0; c < numClasses; c++ {
		states := byClass[c]
		if len(states) == 0 {
			continue
		}
		seen := make(map[string]int)
		for _, s := range states {
			k := key(s, class)
			id, ok := seen[k]
			if !ok {
				id = next
				seen[k] = id
				next++
			}
			newClass[s] = id
		}
	}
	return newClass, next
}

// capSplitsAtBudget applies the same split as refineByKey but, under
// USE_UP, distributes a fixed "extra slots" budget (target minus the
// guaranteed one class per existing class) across classes in visiting
// order: a class fully splits into its distinct keys while enough extra
// slots remain to cover the rest of its split; otherwise its first extra
// keys (in visiting order) each get a class of their own and all its
// remaining keys share one more, which uses the remaining slots up.
// Every original class keeps at least its own id, so
// a partial split never folds states from two different original
// classes together — which would silently re-merge an already
// established, invariant-protected distinction (spec.md §4.7 "USE_UP ...
// keeps splitting until the budget is exactly exhausted"). numClasses
// (the caller's pre-round count) must not already exceed budget.
func capSplitsAtBudget(class []int, numClasses int, key refinementKey, budget int) ([]int, int) {
	byClass := make([][]int, numClasses)
	for s, c := range class {
		byClass[c] = append(byClass[c], s)
	}

	extra := budget - numClasses
	newClass := make([]int, len(class))
	next := 0
	for c := 0; c < numClasses; c++ {
		states := byClass[c]
		if len(states) == 0 {
			continue
		}
		ids := make(map[string]int)
		var order []string
		for _, s := range states {
			k := key(s, class)
			if _, ok := ids[k]; !ok {
				ids[k] = 0
				order = append(order, k)
			}
		}

		want := len(order) - 1
		if want <= extra {
			for i, k := range order {
				ids[k] = next + i
			}
			next += len(order)
			extra -= want
		} else {
			for i, k := range order {
				if i < extra {
					ids[k] = next + i
				} else {
					ids[k] = next + extra
				}
			}
			next += extra + 1
			extra = 0
		}
		for _, s := range states {
			newClass[s] = ids[key(s, class)]
		}
	}
	return newClass, next
}

func signatureKey(edges []labeledEdge, class []int) string {
	type pair struct{ group, target int }
	pairs := make([]pair, len(edges))
	for i, e := range edges {
		pairs[i] = pair{group: e.group, target: class[e.target]}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].group != pairs[j].group {
			return pairs[i].group < pairs[j].group
		}
		return pairs[i].target < pairs[j].target
	})
	dedup := pairs[:0]
	for i, p := range pairs {
		if i == 0 || p != dedup[len(dedup)-1] {
			dedup = append(dedup, p)
		}
	}
	b := make([]byte, 0, len(dedup)*8)
	for _, p := range dedup {
		b = appendInt(b, p.group)
		b = append(b, ',')
		b = appendInt(b, p.target)
		b = append(b, ';')
	}
	return string(b)
}

func appendInt(b []byte, v int) []byte {
	if v == 0 {
		return append(b, '0')
	}
	if v < 0 {
		b = append(b, '-')
		v = -v
	}
	start := len(b)
	for v > 0 {
		b = append(b, byte('0'+v%10))
		v /= 10
	}
	for i, j := start, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
