// Package factored implements FactoredSystem (spec.md §3, §4.9's
// create_factored_system) and the label-reduction orchestrator (spec.md
// §4.6): the collection of active TransitionSystems sharing one LabelSet,
// and the outside-equivalence computation that runs across them.
//
// Grounded on the original source's label_reduction.h/.cc (two-factor,
// all-factors, all-factors-with-fixpoint orchestration; regular/reverse/
// random factor order) and the FactoredTransitionSystem it operates over
// in merge_and_shrink/factored_transition_system.h. The index-stable,
// tombstone-on-remove arena mirrors transition.TransitionSystem's own
// groups arena (spec.md §9's re-architecture note applied consistently).
package factored

import (
	"fmt"
	"sort"

	"github.com/aibasel/downward-sub002/labels"
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mserr"
	"github.com/aibasel/downward-sub002/transition"
)

// System is the collection {0..K-1} of TransitionSystems, each active or
// removed, sharing one LabelSet (spec.md §3 "FactoredSystem").
type System struct {
	LS    *labels.LabelSet
	slots []*transition.TransitionSystem // nil means removed
}

// New returns an empty FactoredSystem over a fresh LabelSet.
func New() *System {
	return &System{LS: labels.New()}
}

// CreateAtomic builds one atomic factor per task variable, registering one
// label per concrete operator (spec.md §4.9 step 1). tick is called after
// each variable so the caller can apply the cooperative timer check named
// in spec.md §5(c); a non-nil error from tick stops construction early.
func CreateAtomic(task mscore.TaskView, tick func() error) (*System, error) {
	sys := New()
	for opID := 0; opID < task.NumOperators(); opID++ {
		if _, err := sys.LS.Add(task.Operator(opID).Cost); err != nil {
			return nil, err
		}
	}
	for v := 0; v < task.NumVariables(); v++ {
		ts, err := transition.NewAtomic(task, v, sys.LS)
		if err != nil {
			return nil, err
		}
		sys.slots = append(sys.slots, ts)
		if tick != nil {
			if err := tick(); err != nil {
				return sys, err
			}
		}
	}
	return sys, nil
}

// NumSlots returns the highest assigned index + 1 (active or removed).
func (s *System) NumSlots() int { return len(s.slots) }

// Get returns the TransitionSystem at index, or nil if removed/out of
// range.
func (s *System) Get(index int) *transition.TransitionSystem {
	if index < 0 || index >= len(s.slots) {
		return nil
	}
	return s.slots[index]
}

// Active returns the indices of every active factor, ascending.
func (s *System) Active() []int {
	out := make([]int, 0, len(s.slots))
	for i, ts := range s.slots {
		if ts != nil {
			out = append(out, i)
		}
	}
	return out
}

// NumActive returns the number of active factors.
func (s *System) NumActive() int {
	n := 0
	for _, ts := range s.slots {
		if ts != nil {
			n++
		}
	}
	return n
}

// Merge consumes the active factors at i and j, appends their product as a
// new active slot, and returns its index (spec.md §3.65: "exactly one
// product exists per merge; the number of active entries decreases by
// exactly one per merge").
func (s *System) Merge(i, j int) (int, error) {
	a, b := s.Get(i), s.Get(j)
	if a == nil || b == nil {
		return 0, mserr.InvariantViolation.New(fmt.Sprintf("merge of removed or out-of-range factors %d, %d", i, j))
	}
	prod, err := transition.Product(a, b, s.LS)
	if err != nil {
		return 0, err
	}
	s.slots[i] = nil
	s.slots[j] = nil
	newIndex := len(s.slots)
	s.slots = append(s.slots, prod)
	return newIndex, nil
}

// factorOrder returns the active indices in the order a label-reduction
// pass should visit them (spec.md §4.6).
func factorOrder(active []int, order mscore.FactorOrder, rng mscore.RNG) []int {
	out := append([]int(nil), active...)
	switch order {
	case mscore.FactorOrderReverse:
		sort.Sort(sort.Reverse(sort.IntSlice(out)))
	case mscore.FactorOrderRandom:
		if rng != nil {
			rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		}
	default: // regular
		sort.Ints(out)
	}
	return out
}
