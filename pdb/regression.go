// Package pdb implements PDB construction by regression shortest-path
// (spec.md §4.3): given a task and a pattern, build the abstract
// regression operators, run a goal-sourced Dijkstra/BFS over them via
// MatchTree, and expose the resulting distance table and (optionally) a
// wildcard plan.
//
// Grounded on the original source's pattern_database.h/.cc: the
// (pattern_index, post_value) regression precondition encoding, the
// hash_effect arithmetic, and the generator-operator bookkeeping used for
// plan extraction all mirror PatternDatabase::build_abstract_operators and
// PatternDatabase::create_pdb there.
package pdb

import (
	"sort"

	"github.com/aibasel/downward-sub002/matchtree"
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/pattern"
)

// abstractOperator is one regression step: applicable at abstract (post-)
// state s (per its Preconditions, matched through the regression
// MatchTree) moving to the predecessor s + HashEffect. forwardPreconditions
// is the same operator's ordinary forward view (pre-values instead of
// post-values), used only for wildcard-plan applicability checks — walking
// a plan forward needs to know what is actually true at the current
// concrete-projected state, not what will be true after the step.
// ConcreteOp is the originating task operator (spec.md §3 "AbstractOperator
// (PDB-internal)").
type abstractOperator struct {
	concreteOp           int
	cost                 int
	preconditions        []matchtree.Precond
	forwardPreconditions []matchtree.Precond
	hashEffect           int
}

// buildAbstractOperators computes every regression abstractOperator for
// task projected onto pattern's PerfectHash (spec.md §4.3 step 2).
// Operators that effect no pattern variable are skipped entirely: they
// cannot move any abstract state.
func buildAbstractOperators(task mscore.TaskView, h *pattern.PerfectHash) []abstractOperator {
	var out []abstractOperator
	for opID := 0; opID < task.NumOperators(); opID++ {
		op := task.Operator(opID)
		out = append(out, buildForOperator(task, opID, op, h)...)
	}
	return out
}

func buildForOperator(task mscore.TaskView, opID int, op mscore.Operator, h *pattern.PerfectHash) []abstractOperator {
	effByVar := make(map[int]int, len(op.Effects))
	for _, f := range op.Effects {
		effByVar[f.Var] = f.Value
	}
	preByVar := make(map[int]int, len(op.Preconditions))
	for _, f := range op.Preconditions {
		preByVar[f.Var] = f.Value
	}

	var fixedPrecond []matchtree.Precond        // regression (post-value) preconditions already pinned
	var fixedForwardPrecond []matchtree.Precond // forward (pre-value) preconditions already pinned
	var fixedHashBase int
	var free []freeVar

	touchesPattern := false
	for pi, v := range h.Pattern() {
		effValue, hasEff := effByVar[v]
		preValue, hasPre := preByVar[v]
		if hasEff {
			touchesPattern = true
			fixedPrecond = append(fixedPrecond, matchtree.Precond{PatternIndex: pi, Value: effValue})
			if hasPre {
				fixedForwardPrecond = append(fixedForwardPrecond, matchtree.Precond{PatternIndex: pi, Value: preValue})
				fixedHashBase += (preValue - effValue) * h.Multiplier(pi)
			} else {
				free = append(free, freeVar{patternIndex: pi, domainSize: domainOf(task, v), effValue: effValue, multiplier: h.Multiplier(pi)})
			}
		} else if hasPre {
			fixedPrecond = append(fixedPrecond, matchtree.Precond{PatternIndex: pi, Value: preValue})
			fixedForwardPrecond = append(fixedForwardPrecond, matchtree.Precond{PatternIndex: pi, Value: preValue})
		}
	}
	if !touchesPattern {
		return nil
	}
	sort.Slice(fixedPrecond, func(i, j int) bool { return fixedPrecond[i].PatternIndex < fixedPrecond[j].PatternIndex })

	var out []abstractOperator
	enumerateFree(free, 0, fixedHashBase, fixedForwardPrecond, func(hashEffect int, forwardPrecond []matchtree.Precond) {
		sort.Slice(forwardPrecond, func(i, j int) bool { return forwardPrecond[i].PatternIndex < forwardPrecond[j].PatternIndex })
		out = append(out, abstractOperator{
			concreteOp:           opID,
			cost:                 op.Cost,
			preconditions:        fixedPrecond,
			forwardPreconditions: forwardPrecond,
			hashEffect:           hashEffect,
		})
	})
	return out
}

// freeVar is a pattern variable a concrete operator effects but does not
// precondition; its pre-value must be multiplied out over its full domain
// (spec.md §4.3 "missing effect preconditions are multiplied out").
type freeVar struct {
	patternIndex int
	domainSize   int
	effValue     int
	multiplier   int
}

// enumerateFree multiplies out every free variable, emitting one
// hash_effect and one complete forward-precondition list per combination.
func enumerateFree(free []freeVar, i int, hashEffect int, forwardPrecond []matchtree.Precond, emit func(int, []matchtree.Precond)) {
	if i == len(free) {
		emit(hashEffect, append([]matchtree.Precond(nil), forwardPrecond...))
		return
	}
	fv := free[i]
	for pre := 0; pre < fv.domainSize; pre++ {
		next := append(append([]matchtree.Precond(nil), forwardPrecond...), matchtree.Precond{PatternIndex: fv.patternIndex, Value: pre})
		enumerateFree(free, i+1, hashEffect+(pre-fv.effValue)*fv.multiplier, next, emit)
	}
}

func domainOf(task mscore.TaskView, v int) int { return task.Domain(v) }
