// Package pattern implements PerfectHash (spec.md §4.1): a bijection between
// assignments over an ordered variable subset (a Pattern) and integers in
// [0, N) via mixed-radix multipliers. Grounded on the original source's
// PerfectHashFunction (src/search/pdbs/pattern_database.h): a pattern, its
// per-variable multipliers, and the total state count.
package pattern

import (
	"fmt"
	"sort"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mserr"
	"golang.org/x/exp/slices"
)

// Pattern is a strictly increasing sequence of variable ids (spec.md §3).
type Pattern []int

// Validate checks the Pattern invariants: strictly increasing, no
// duplicates, every id within [0, numVariables).
func (p Pattern) Validate(numVariables int) error {
	for i, v := range p {
		if v < 0 || v >= numVariables {
			return mserr.InvariantViolation.New(fmt.Sprintf("pattern variable %d out of range [0, %d)", v, numVariables))
		}
		if i > 0 && p[i-1] >= v {
			return mserr.InvariantViolation.New(fmt.Sprintf("pattern is not strictly increasing at index %d", i))
		}
	}
	return nil
}

// Sorted returns a copy of vars sorted and de-duplicated, for callers (CEGAR
// pattern growth, merge) that build a pattern incrementally and only need
// the canonical form at the end.
func Sorted(vars []int) Pattern {
	out := append(Pattern(nil), vars...)
	slices.Sort(out)
	out = slices.Compact(out)
	return out
}

// maxHashSize bounds the mixed-radix product accepted by New, used as a
// pruning test by pattern generators (spec.md §4.1 "Fails with TooLarge").
// 1e9 comfortably exceeds any PDB this module is configured to build while
// still fitting in a machine int on 32-bit platforms.
const maxHashSize = 1_000_000_000

// PerfectHash is the immutable bijection between pattern assignments and
// [0, N) (spec.md Data Model: "Lifecycle: immutable after construction").
type PerfectHash struct {
	pattern     Pattern
	multipliers []int // multipliers[i] = product of domain(pattern[j]) for j < i
	size        int
}

// New builds a PerfectHash for pattern given the domain sizes of every task
// variable. Returns a SizeLimitExceeded error (mserr.SizeLimitExceeded) if
// the mixed-radix product would exceed the configured bound.
func New(p Pattern, domains func(variable int) int) (*PerfectHash, error) {
	multipliers := make([]int, len(p))
	size := 1
	for i, v := range p {
		multipliers[i] = size
		d := domains(v)
		if d <= 0 {
			return nil, mserr.InvariantViolation.New(fmt.Sprintf("variable %d has non-positive domain %d", v, d))
		}
		if size > maxHashSize/d {
			return nil, mserr.SizeLimitExceeded.New(fmt.Sprintf("pattern %v would require more than %d abstract states", []int(p), maxHashSize))
		}
		size *= d
	}
	return &PerfectHash{pattern: append(Pattern(nil), p...), multipliers: multipliers, size: size}, nil
}

// Pattern returns the pattern this hash function was built for.
func (h *PerfectHash) Pattern() Pattern { return h.pattern }

// Size returns N, the number of abstract states.
func (h *PerfectHash) Size() int { return h.size }

// Multiplier returns the multiplier for the i-th pattern variable.
func (h *PerfectHash) Multiplier(i int) int { return h.multipliers[i] }

// Rank computes the abstract state index for an assignment given as
// value(variable). value is called once per pattern variable, in
// pattern order.
func (h *PerfectHash) Rank(value func(variable int) int) int {
	rank := 0
	for i, v := range h.pattern {
		rank += h.multipliers[i] * value(v)
	}
	return rank
}

// RankFacts is a convenience wrapper over Rank for a concrete state slice
// indexed by variable id.
func (h *PerfectHash) RankFacts(state []int) int {
	return h.Rank(func(v int) int { return state[v] })
}

// UnrankVar recovers the value of the i-th pattern variable (pattern index,
// not task variable id) within abstract state index.
func (h *PerfectHash) UnrankVar(index, i int, domain func(variable int) int) int {
	return (index / h.multipliers[i]) % domain(h.pattern[i])
}

// Unrank recovers the full assignment for index as a Fact slice in pattern
// order.
func (h *PerfectHash) Unrank(index int, domain func(variable int) int) []mscore.Fact {
	facts := make([]mscore.Fact, len(h.pattern))
	for i, v := range h.pattern {
		facts[i] = mscore.Fact{Var: v, Value: h.UnrankVar(index, i, domain)}
	}
	return facts
}

// IndexOf returns the pattern index of variable, or -1 if variable is not
// in the pattern. Pattern is sorted, so this is a binary search.
func (h *PerfectHash) IndexOf(variable int) int {
	i := sort.SearchInts(h.pattern, variable)
	if i < len(h.pattern) && h.pattern[i] == variable {
		return i
	}
	return -1
}

func (h *PerfectHash) String() string {
	return fmt.Sprintf("PerfectHash(pattern=%v, size=%d)", []int(h.pattern), h.size)
}
