package factored

import (
	"github.com/aibasel/downward-sub002/labels"
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/transition"
)

// ReduceFor computes and applies one label-reduction step targeted at
// factor index target, w.r.t. every other active factor (spec.md §4.6):
// the outside-equivalence relation is the intersection, over every active
// factor other than target, of that factor's local-equivalence classes.
// Singleton classes are left untouched.
func (s *System) ReduceFor(target int) error {
	return s.reduceOutsideEquivalence(target, s.Active())
}

// ReduceAll runs one all-factors pass (spec.md §4.6 mode (b)): for every
// active factor in the given visiting order, reduce w.r.t. the rest.
// ReduceAllFixpoint repeats ReduceAll until a pass performs no reduction
// (mode (c)).
func (s *System) ReduceAll(order mscore.FactorOrder, rng mscore.RNG) error {
	active := s.Active()
	for _, target := range factorOrder(active, order, rng) {
		if s.Get(target) == nil {
			continue // removed by an earlier reduction's side effects (never happens today, defensive)
		}
		if err := s.reduceOutsideEquivalence(target, s.Active()); err != nil {
			return err
		}
	}
	return nil
}

func (s *System) ReduceAllFixpoint(order mscore.FactorOrder, rng mscore.RNG) error {
	for {
		before := s.LS.NumLabels()
		if err := s.ReduceAll(order, rng); err != nil {
			return err
		}
		if s.LS.NumLabels() == before {
			return nil
		}
	}
}

// reduceOutsideEquivalence implements spec.md §4.6's refinement algorithm:
// start from the all-labels-equivalent partition, then for every factor
// other than target, split each current class by intersection with that
// factor's local-equivalence classes (same group AND same cost).
func (s *System) reduceOutsideEquivalence(target int, active []int) error {
	allLabels := s.LS.ActiveLabels()
	if len(allLabels) == 0 {
		return nil
	}
	classes := [][]int{append([]int(nil), allLabels...)}

	for _, idx := range active {
		if idx == target {
			continue
		}
		ts := s.Get(idx)
		if ts == nil {
			continue
		}
		classes = refineByFactor(classes, ts)
	}

	var mappings []labels.Mapping
	for _, c := range classes {
		if len(c) > 1 {
			mappings = append(mappings, labels.Mapping{OldLabelIDs: c})
		}
	}
	if len(mappings) == 0 {
		return nil
	}

	newIDs, err := s.LS.Reduce(mappings)
	if err != nil {
		return err
	}

	for _, idx := range s.Active() {
		if err := applyMappingToFactor(s.Get(idx), mappings, newIDs); err != nil {
			return err
		}
	}
	return nil
}

// refineByFactor splits each class in classes by ts's local-equivalence
// key (group index) — two labels in the same group of ts already share
// cost and transitions by construction (spec.md invariant I1), so group
// identity alone is the right refinement key.
func refineByFactor(classes [][]int, ts *transition.TransitionSystem) [][]int {
	var out [][]int
	for _, c := range classes {
		buckets := make(map[int][]int)
		var order []int
		for _, l := range c {
			key, ok := ts.GroupIndexOf(l)
			if !ok {
				key = -1
			}
			if _, seen := buckets[key]; !seen {
				order = append(order, key)
			}
			buckets[key] = append(buckets[key], l)
		}
		for _, key := range order {
			out = append(out, buckets[key])
		}
	}
	return out
}

// applyMappingToFactor applies a batch of label mappings to one active
// factor: equivalent mode when every old-label in a mapping shares a
// single group in this factor (spec.md §4.4 mode (a)), general mode
// otherwise (mode (b)).
func applyMappingToFactor(ts *transition.TransitionSystem, mappings []labels.Mapping, newIDs []int) error {
	needsRecompute := false
	for i, m := range mappings {
		groupIdx := -1
		sameGroup := true
		for _, old := range m.OldLabelIDs {
			idx, ok := ts.GroupIndexOf(old)
			if !ok {
				sameGroup = false
				break
			}
			if groupIdx == -1 {
				groupIdx = idx
			} else if idx != groupIdx {
				sameGroup = false
				break
			}
		}
		if sameGroup && groupIdx != -1 {
			if err := ts.ApplyReductionEquivalent(groupIdx, m.OldLabelIDs, newIDs[i]); err != nil {
				return err
			}
		} else {
			cost := minCost(ts, m.OldLabelIDs)
			if err := ts.ApplyReductionGeneral(m.OldLabelIDs, newIDs[i], cost); err != nil {
				return err
			}
			needsRecompute = true
		}
	}
	if needsRecompute {
		ts.RecomputeLabelEquivalences()
	}
	return nil
}

func minCost(ts *transition.TransitionSystem, labelIDs []int) int {
	min := -1
	for _, l := range labelIDs {
		if g, ok := ts.GroupOf(l); ok {
			if min == -1 || g.Cost < min {
				min = g.Cost
			}
		}
	}
	return min
}
