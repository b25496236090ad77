// Package transition implements TransitionSystem and Distances (spec.md
// §3, §4.4, §4.5): the central Merge-and-Shrink data object and its
// shortest-path cache.
//
// Grounded on the original source's merge_and_shrink abstraction classes
// (src/search/merge_and_shrink/abstraction.h: Abstraction/
// AtomicAbstraction/CompositeAbstraction, with their num_states,
// init_state, goal_states, transitions_by_label, max_f/max_g/max_h) and
// its companion distances.cc (compute_init_distances_unit_cost /
// compute_goal_distances_unit_cost BFS sweeps, generalised here to the
// AdaptivePriorityQueue-driven Dijkstra for non-unit costs). The source's
// per-label transition vector is replaced by the newer, flatter
// LabelGroup-of-transitions model spec.md §3 describes, matching label.h's
// eventual move to grouped labels.
//
// Per spec.md §9's re-architecture note on back-references and deletion
// order, groups are held in an arena (groups []*LabelGroup, tombstoned by
// nil) addressed by stable index, and labelToGroup records (group index,
// position within the group) rather than a raw pointer/iterator pair.
package transition

import (
	"fmt"
	"sort"

	"github.com/aibasel/downward-sub002/labels"
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mserr"
)

// Transition is one (source, target) abstract-state edge. TransitionSystem
// stores these in a LabelGroup's Transitions vector, sorted and
// deduplicated (spec.md §3 invariant I2).
type Transition struct {
	Src, Target int
}

func lessTransition(a, b Transition) bool {
	if a.Src != b.Src {
		return a.Src < b.Src
	}
	return a.Target < b.Target
}

// LabelGroup is the equivalence class of labels that are locally
// equivalent in one TransitionSystem: identical transition set and equal
// cost (spec.md §3). Dies (is tombstoned) when its Labels becomes empty.
type LabelGroup struct {
	Labels      []int
	Cost        int
	Transitions []Transition
}

type labelHandle struct {
	group int
	pos   int
}

// TransitionSystem is one factor of a FactoredSystem: a finite-state
// labelled transition graph plus a lazily computed Distances cache
// (spec.md §3).
type TransitionSystem struct {
	ls *labels.LabelSet

	numStates int
	initState int // mscore.PRUNED if none
	goals     bitSet

	groups       []*LabelGroup // arena; nil entries are tombstones
	labelToGroup map[int]labelHandle

	pattern []int // sorted task-variable ids this factor covers

	dist *Distances
}

// NumStates returns the number of abstract states.
func (t *TransitionSystem) NumStates() int { return t.numStates }

// InitState returns the initial abstract state, or mscore.PRUNED.
func (t *TransitionSystem) InitState() int { return t.initState }

// IsGoal reports whether state is marked as a goal state.
func (t *TransitionSystem) IsGoal(state int) bool { return t.goals.get(state) }

// Pattern returns the sorted task-variable ids this factor covers.
func (t *TransitionSystem) Pattern() []int { return t.pattern }

// Groups returns the live (non-tombstoned) label groups, in arena order.
func (t *TransitionSystem) Groups() []*LabelGroup {
	out := make([]*LabelGroup, 0, len(t.groups))
	for _, g := range t.groups {
		if g != nil {
			out = append(out, g)
		}
	}
	return out
}

// GroupOf returns the LabelGroup that label id currently belongs to, and
// whether it has one (inactive or unknown labels do not).
func (t *TransitionSystem) GroupOf(label int) (*LabelGroup, bool) {
	h, ok := t.labelToGroup[label]
	if !ok {
		return nil, false
	}
	return t.groups[h.group], true
}

// GroupIndexOf returns the arena index of the LabelGroup that label id
// currently belongs to, for callers (the label-reduction orchestrator)
// that need to compare group identity across labels cheaply.
func (t *TransitionSystem) GroupIndexOf(label int) (int, bool) {
	h, ok := t.labelToGroup[label]
	if !ok {
		return 0, false
	}
	return h.group, true
}

// NewAtomic builds the atomic factor for task variable v (spec.md §4.4).
func NewAtomic(task mscore.TaskView, v int, ls *labels.LabelSet) (*TransitionSystem, error) {
	domain := task.Domain(v)
	if domain < 1 {
		return nil, mserr.UnsupportedTask.New(fmt.Sprintf("variable %d has non-positive domain %d", v, domain))
	}
	t := &TransitionSystem{
		ls:           ls,
		numStates:    domain,
		initState:    task.InitialValue(v),
		goals:        newBitSet(domain),
		labelToGroup: make(map[int]labelHandle),
		pattern:      []int{v},
	}

	isGoalVar := false
	for _, f := range task.Goals() {
		if f.Var == v {
			isGoalVar = true
			t.goals.set(f.Value, true)
		}
	}
	if !isGoalVar {
		t.goals.setAll()
	}

	for opID := 0; opID < task.NumOperators(); opID++ {
		op := task.Operator(opID)
		var pre, post = -1, -1
		foundEffect := false
		for _, e := range op.Effects {
			if e.Var == v {
				post = e.Value
				foundEffect = true
				break
			}
		}
		for _, p := range op.Preconditions {
			if p.Var == v {
				pre = p.Value
				break
			}
		}

		var trans []Transition
		switch {
		case foundEffect && pre >= 0:
			trans = []Transition{{Src: pre, Target: post}}
		case foundEffect && pre < 0:
			trans = make([]Transition, domain)
			for s := 0; s < domain; s++ {
				trans[s] = Transition{Src: s, Target: post}
			}
		case !foundEffect && pre >= 0:
			trans = []Transition{{Src: pre, Target: pre}}
		default: // operator does not mention v at all: applicable everywhere, self-loop
			trans = make([]Transition, domain)
			for s := 0; s < domain; s++ {
				trans[s] = Transition{Src: s, Target: s}
			}
		}

		gi := len(t.groups)
		t.groups = append(t.groups, &LabelGroup{
			Labels:      []int{opID},
			Cost:        op.Cost,
			Transitions: sortedUniqueTransitions(trans),
		})
		t.labelToGroup[opID] = labelHandle{group: gi, pos: 0}
	}

	t.recomputeLabelEquivalences()
	return t, nil
}

func sortedUniqueTransitions(in []Transition) []Transition {
	if len(in) == 0 {
		return nil
	}
	out := append([]Transition(nil), in...)
	sort.Slice(out, func(i, j int) bool { return lessTransition(out[i], out[j]) })
	dedup := out[:1]
	for _, tr := range out[1:] {
		if tr != dedup[len(dedup)-1] {
			dedup = append(dedup, tr)
		}
	}
	return dedup
}

func transitionsEqual(a, b []Transition) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// recomputeLabelEquivalences merges groups with identical (cost,
// transitions) and drops empty groups (spec.md §4.4, invariants I1-I2).
func (t *TransitionSystem) recomputeLabelEquivalences() {
	live := t.Groups()
	merged := make([]*LabelGroup, 0, len(live))
outer:
	for _, g := range live {
		if len(g.Labels) == 0 {
			continue
		}
		for _, m := range merged {
			if m.Cost == g.Cost && transitionsEqual(m.Transitions, g.Transitions) {
				m.Labels = append(m.Labels, g.Labels...)
				continue outer
			}
		}
		merged = append(merged, &LabelGroup{
			Labels:      append([]int(nil), g.Labels...),
			Cost:        g.Cost,
			Transitions: g.Transitions,
		})
	}

	t.groups = merged
	t.labelToGroup = make(map[int]labelHandle, len(t.labelToGroup))
	for gi, g := range merged {
		sort.Ints(g.Labels)
		for pos, l := range g.Labels {
			t.labelToGroup[l] = labelHandle{group: gi, pos: pos}
		}
	}
}

// Product builds the synchronized-product factor of a and b over the
// shared label set (spec.md §4.4).
func Product(a, b *TransitionSystem, ls *labels.LabelSet) (*TransitionSystem, error) {
	nb := b.numStates
	t := &TransitionSystem{
		ls:           ls,
		numStates:    a.numStates * nb,
		labelToGroup: make(map[int]labelHandle),
		pattern:      mergePatterns(a.pattern, b.pattern),
	}

	if a.initState == mscore.PRUNED || b.initState == mscore.PRUNED {
		t.initState = mscore.PRUNED
	} else {
		t.initState = a.initState*nb + b.initState
	}

	t.goals = newBitSet(t.numStates)
	for sa := 0; sa < a.numStates; sa++ {
		if !a.IsGoal(sa) {
			continue
		}
		for sb := 0; sb < b.numStates; sb++ {
			if b.IsGoal(sb) {
				t.goals.set(sa*nb+sb, true)
			}
		}
	}

	// Relevance optimisation (spec.md §4.4): bucket each active label by
	// the (groupA, groupB) pair its label falls into, then build the
	// product transitions once per distinct pair.
	type pairKey struct{ ga, gb int }
	buckets := make(map[pairKey][]int)
	for _, l := range ls.ActiveLabels() {
		ga, okA := a.labelToGroup[l]
		gb, okB := b.labelToGroup[l]
		if !okA || !okB {
			continue
		}
		k := pairKey{ga.group, gb.group}
		buckets[k] = append(buckets[k], l)
	}

	for k, labelIDs := range buckets {
		groupA := a.groups[k.ga]
		groupB := b.groups[k.gb]
		var trans []Transition
		for _, ta := range groupA.Transitions {
			for _, tb := range groupB.Transitions {
				trans = append(trans, Transition{
					Src:    ta.Src*nb + tb.Src,
					Target: ta.Target*nb + tb.Target,
				})
			}
		}
		gi := len(t.groups)
		t.groups = append(t.groups, &LabelGroup{
			Labels:      append([]int(nil), labelIDs...),
			Cost:        ls.Cost(labelIDs[0]),
			Transitions: sortedUniqueTransitions(trans),
		})
		for pos, l := range t.groups[gi].Labels {
			t.labelToGroup[l] = labelHandle{group: gi, pos: pos}
		}
	}

	// Groups with identical (possibly empty) transitions collapse into a
	// shared group here, including the "dead" group for labels whose
	// product transitions came out empty (spec.md §4.4).
	t.recomputeLabelEquivalences()
	return t, nil
}

func mergePatterns(a, b []int) []int {
	out := append([]int(nil), a...)
	out = append(out, b...)
	sort.Ints(out)
	return out
}

