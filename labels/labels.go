// Package labels implements LabelSet (spec.md §3, §4.6): the evolving
// operator alphabet shared by every TransitionSystem in one FactoredSystem.
// Grounded on the original source's Labels/Label classes
// (src/search/merge_and_shrink/labels.h, label.h) and the newer
// LabelReduction orchestrator (label_reduction.h), whose
// two/all/all-with-fixpoint method and regular/reverse/random order enums
// are exactly mscore.LabelReductionMethod and mscore.FactorOrder.
//
// Per spec.md §9 ("Global state" / "Cycles"), a LabelSet is owned by
// exactly one FactoredSystem and is the only mutable shared state in this
// module; every TransitionSystem holds a read reference to it, and only
// MSAlgorithm calls the mutating methods, never mid-iteration through a
// TransitionSystem's own API.
package labels

import (
	"fmt"

	"github.com/aibasel/downward-sub002/mserr"
)

// Label is one entry in a LabelSet: a nonnegative cost and an active flag.
// Reductions are irreversible within a run (spec.md §3): once Active is
// false it never becomes true again.
type Label struct {
	Cost   int
	Active bool
}

// LabelSet owns the vector of labels that make up the current M&S
// pipeline's operator alphabet (spec.md §3).
type LabelSet struct {
	labels []Label
}

// New returns an empty LabelSet.
func New() *LabelSet {
	return &LabelSet{}
}

// NumLabels returns the total number of labels ever created (active and
// inactive).
func (s *LabelSet) NumLabels() int { return len(s.labels) }

// Add appends a new active label with the given nonnegative cost and
// returns its id. Used when constructing the initial LabelSet, one label
// per concrete operator.
func (s *LabelSet) Add(cost int) (int, error) {
	if cost < 0 {
		return 0, mserr.UnsupportedTask.New(fmt.Sprintf("operator label cost %d is negative", cost))
	}
	id := len(s.labels)
	s.labels = append(s.labels, Label{Cost: cost, Active: true})
	return id, nil
}

// Cost returns the cost of label id. Inactive labels keep their cost for
// historical lookups (spec.md §3 invariant), so this never errors for a
// valid id regardless of Active.
func (s *LabelSet) Cost(id int) int { return s.labels[id].Cost }

// Active reports whether label id is still part of the live alphabet.
func (s *LabelSet) Active(id int) bool { return s.labels[id].Active }

// ActiveLabels returns the ids of every currently active label, in
// ascending order.
func (s *LabelSet) ActiveLabels() []int {
	out := make([]int, 0, len(s.labels))
	for id, l := range s.labels {
		if l.Active {
			out = append(out, id)
		}
	}
	return out
}

// Mapping describes one label-reduction step: the constituent old label ids
// (from the same outside-equivalence class, spec.md §4.6) are replaced by a
// single fresh composite label whose cost is the minimum of theirs. A
// singleton OldLabelIDs leaves that label untouched (spec.md §4.6:
// "classes of size 1 are unchanged") and is rejected by Reduce — callers
// should only submit classes of size > 1.
type Mapping struct {
	OldLabelIDs []int
}

// Reduce applies a batch of label-reduction mappings: for each Mapping, a
// fresh composite label is appended (cost = min over constituents) and
// every constituent is marked inactive. Returns the new label ids in the
// same order as mappings. This is the only way labels become inactive.
func (s *LabelSet) Reduce(mappings []Mapping) ([]int, error) {
	newIDs := make([]int, len(mappings))
	for i, m := range mappings {
		if len(m.OldLabelIDs) < 2 {
			return nil, mserr.InvariantViolation.New(fmt.Sprintf("label reduction mapping %d has fewer than two constituents", i))
		}
		minCost := s.labels[m.OldLabelIDs[0]].Cost
		for _, old := range m.OldLabelIDs {
			if !s.labels[old].Active {
				return nil, mserr.InvariantViolation.New(fmt.Sprintf("label %d is already inactive", old))
			}
			if c := s.labels[old].Cost; c < minCost {
				minCost = c
			}
		}
		newID := len(s.labels)
		s.labels = append(s.labels, Label{Cost: minCost, Active: true})
		for _, old := range m.OldLabelIDs {
			s.labels[old] = Label{Cost: s.labels[old].Cost, Active: false}
		}
		newIDs[i] = newID
	}
	return newIDs, nil
}
