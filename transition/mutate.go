package transition

import (
	"fmt"
	"sort"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mserr"
)

// Prune drops every state where drop[state] is true, renumbering the
// survivors consecutively and remapping every transition; transitions
// touching a dropped endpoint are removed (spec.md §4.4). Prune always
// discards the cached Distances; the next Distances() call recomputes them
// over the renumbered states.
func (t *TransitionSystem) Prune(drop []bool) error {
	if len(drop) != t.numStates {
		return mserr.InvariantViolation.New(fmt.Sprintf("prune mask length %d does not match %d states", len(drop), t.numStates))
	}

	newID := make([]int, t.numStates)
	next := 0
	for s := 0; s < t.numStates; s++ {
		if drop[s] {
			newID[s] = mscore.PRUNED
			continue
		}
		newID[s] = next
		next++
	}

	newGoals := newBitSet(next)
	for s := 0; s < t.numStates; s++ {
		if newID[s] != mscore.PRUNED && t.goals.get(s) {
			newGoals.set(newID[s], true)
		}
	}

	for _, g := range t.groups {
		if g == nil {
			continue
		}
		var remapped []Transition
		for _, tr := range g.Transitions {
			ns, nt := newID[tr.Src], newID[tr.Target]
			if ns == mscore.PRUNED || nt == mscore.PRUNED {
				continue
			}
			remapped = append(remapped, Transition{Src: ns, Target: nt})
		}
		g.Transitions = sortedUniqueTransitions(remapped)
	}

	t.numStates = next
	t.goals = newGoals
	if t.initState != mscore.PRUNED {
		t.initState = newID[t.initState]
	}
	t.recomputeLabelEquivalences()
	// Pure pruning drops states but never collapses two states of
	// differing distance into one, so an existing Distances cache is
	// still internally consistent modulo reindexing; the simplest correct
	// rule (and the one spec.md §4.4 allows) is to require recomputation.
	t.dist = nil
	return nil
}

// Shrink applies a partition of the current states into classes (class[s]
// is the target class of state s, in [0, numClasses)), producing the new
// state space (spec.md §4.4). Distances are invalidated iff the partition
// merges states with differing g or h (the caller, ShrinkStrategy, is
// responsible for guaranteeing this only when it intends it; Shrink
// itself conservatively invalidates whenever mergesDistinctDistances is
// true).
func (t *TransitionSystem) Shrink(class []int, numClasses int, mergesDistinctDistances bool) error {
	if len(class) != t.numStates {
		return mserr.InvariantViolation.New(fmt.Sprintf("partition length %d does not match %d states", len(class), t.numStates))
	}
	if numClasses > t.numStates {
		return mserr.InvariantViolation.New(fmt.Sprintf("shrink target %d exceeds %d states", numClasses, t.numStates))
	}

	newGoals := newBitSet(numClasses)
	for s := 0; s < t.numStates; s++ {
		if t.goals.get(s) {
			newGoals.set(class[s], true)
		}
	}

	for _, g := range t.groups {
		if g == nil {
			continue
		}
		remapped := make([]Transition, len(g.Transitions))
		for i, tr := range g.Transitions {
			remapped[i] = Transition{Src: class[tr.Src], Target: class[tr.Target]}
		}
		g.Transitions = sortedUniqueTransitions(remapped)
	}

	t.numStates = numClasses
	t.goals = newGoals
	if t.initState != mscore.PRUNED {
		t.initState = class[t.initState]
	}
	t.recomputeLabelEquivalences()
	if mergesDistinctDistances {
		t.dist = nil
	}
	return nil
}

// ApplyReductionEquivalent splices newLabel in place of oldLabels, all of
// which the caller asserts live in the single group groupIdx: the new
// label inherits that group's transitions and the old labels are removed
// from it (spec.md §4.4 mode (a)).
func (t *TransitionSystem) ApplyReductionEquivalent(groupIdx int, oldLabels []int, newLabel int) error {
	g := t.groups[groupIdx]
	if g == nil {
		return mserr.InvariantViolation.New(fmt.Sprintf("group %d is already tombstoned", groupIdx))
	}
	remaining := g.Labels[:0:0]
	removed := make(map[int]bool, len(oldLabels))
	for _, l := range oldLabels {
		removed[l] = true
	}
	for _, l := range g.Labels {
		if !removed[l] {
			remaining = append(remaining, l)
		}
	}
	remaining = append(remaining, newLabel)
	sort.Ints(remaining)
	g.Labels = remaining

	for _, l := range oldLabels {
		delete(t.labelToGroup, l)
	}
	for pos, l := range g.Labels {
		t.labelToGroup[l] = labelHandle{group: groupIdx, pos: pos}
	}
	return nil
}

// ApplyReductionGeneral unions the transitions of oldLabels into a fresh
// group carrying newLabel, removing oldLabels from wherever they lived
// (spec.md §4.4 mode (b)). The caller must follow up with
// RecomputeLabelEquivalences once all mappings in a batch are applied, to
// fold the fresh group into any existing identical one.
func (t *TransitionSystem) ApplyReductionGeneral(oldLabels []int, newLabel int, cost int) error {
	var union []Transition
	for _, l := range oldLabels {
		h, ok := t.labelToGroup[l]
		if !ok {
			continue
		}
		g := t.groups[h.group]
		union = append(union, g.Transitions...)

		remaining := g.Labels[:0:0]
		for _, gl := range g.Labels {
			if gl != l {
				remaining = append(remaining, gl)
			}
		}
		g.Labels = remaining
		delete(t.labelToGroup, l)
	}

	gi := len(t.groups)
	t.groups = append(t.groups, &LabelGroup{
		Labels:      []int{newLabel},
		Cost:        cost,
		Transitions: sortedUniqueTransitions(union),
	})
	t.labelToGroup[newLabel] = labelHandle{group: gi, pos: 0}
	return nil
}

// RecomputeLabelEquivalences re-exposes the construction-time pass for
// callers that apply a batch of general-mode reductions and then need to
// restore the local-equivalence normal form (spec.md invariants I1-I2).
func (t *TransitionSystem) RecomputeLabelEquivalences() { t.recomputeLabelEquivalences() }
