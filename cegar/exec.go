package cegar

import (
	"sort"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/pdb"
	"golang.org/x/exp/maps"
)

// planOutcome is the result of tracing one pattern's plan through the
// concrete task (spec.md §4.11 step (ii)-(iii)).
type planOutcome struct {
	solved bool
	plan   [][]int // concrete steps actually taken, one concrete op id per step
	flaws  map[int]bool
}

// concreteInitialState returns the full concrete initial assignment,
// indexed by task variable id.
func concreteInitialState(task mscore.TaskView) []int {
	state := make([]int, task.NumVariables())
	for v := range state {
		state[v] = task.InitialValue(v)
	}
	return state
}

// executePlan walks p's plan from state (a copy of which is mutated
// locally) applying one operator per step (spec.md §4.11 step (ii)): at
// each step, pick any operator in the step's candidate set that is
// concretely applicable (ignoring blacklisted variables); if none is, every
// violated non-blacklisted precondition variable across the whole step
// becomes a flaw and execution stops there. With UseWildcardPlans=false a
// step's candidate set is a singleton (the one generator operator), so a
// step only ever succeeds via that exact operator: if its precondition
// fails concretely, the mismatch surfaces as a flaw instead of being
// covered over by a same-cost/same-successor sibling from the step.
func executePlan(task mscore.TaskView, p *pdb.PDB, initState []int, blacklist map[int]bool) planOutcome {
	plan, ok := p.Plan()
	if !ok {
		return planOutcome{flaws: map[int]bool{}}
	}

	state := append([]int(nil), initState...)
	var taken [][]int

	for _, step := range plan {
		sorted := append([]int(nil), step...)
		sort.Ints(sorted)

		applied := false
		for _, opID := range sorted {
			op := task.Operator(opID)
			if concreteApplicable(op, state, blacklist) {
				state = applyEffects(op, state)
				taken = append(taken, []int{opID})
				applied = true
				break
			}
		}
		if !applied {
			flaws := make(map[int]bool)
			for _, opID := range sorted {
				for _, v := range violatedVars(task.Operator(opID), state, blacklist) {
					flaws[v] = true
				}
			}
			return planOutcome{plan: taken, flaws: flaws}
		}
	}

	flaws := unsatisfiedGoalVars(task, state, blacklist)
	if len(flaws) == 0 {
		return planOutcome{solved: true, plan: taken}
	}
	return planOutcome{plan: taken, flaws: flaws}
}

func concreteApplicable(op mscore.Operator, state []int, blacklist map[int]bool) bool {
	for _, f := range op.Preconditions {
		if blacklist[f.Var] {
			continue
		}
		if state[f.Var] != f.Value {
			return false
		}
	}
	return true
}

func violatedVars(op mscore.Operator, state []int, blacklist map[int]bool) []int {
	var out []int
	for _, f := range op.Preconditions {
		if blacklist[f.Var] {
			continue
		}
		if state[f.Var] != f.Value {
			out = append(out, f.Var)
		}
	}
	return out
}

func applyEffects(op mscore.Operator, state []int) []int {
	out := append([]int(nil), state...)
	for _, f := range op.Effects {
		out[f.Var] = f.Value
	}
	return out
}

func unsatisfiedGoalVars(task mscore.TaskView, state []int, blacklist map[int]bool) map[int]bool {
	out := make(map[int]bool)
	for _, g := range task.Goals() {
		if blacklist[g.Var] {
			continue
		}
		if state[g.Var] != g.Value {
			out[g.Var] = true
		}
	}
	return out
}

func pickUnsolved(patterns []PatternInfo) int {
	for i, p := range patterns {
		if len(p.Pattern) == 0 {
			continue // tombstoned by a merge
		}
		if !p.Solved {
			return i
		}
	}
	return -1
}

// sortedKeys returns m's keys in ascending order, so that flaw-variable
// selection (spec.md §4.11 step (iv): "choose one uniformly at random")
// draws from a reproducible ordering under a fixed RNG seed rather than Go's
// randomized map iteration.
func sortedKeys(m map[int]bool) []int {
	out := maps.Keys(m)
	sort.Ints(out)
	return out
}

// copyBlacklist clones in (x/exp/maps.Clone returns nil for a nil input, but
// callers mutate the result as the run blacklists further variables, so a
// nil in must still yield a writable empty map).
func copyBlacklist(in map[int]bool) map[int]bool {
	if in == nil {
		return make(map[int]bool)
	}
	return maps.Clone(in)
}
