// Package shrink implements ShrinkStrategy (spec.md §4.7): given a
// TransitionSystem, a target size, and a soft threshold, compute a
// state-equivalence partition with at most target classes.
//
// Grounded on the original source's merge_and_shrink shrink strategy
// hierarchy (shrink_bucket_based.h for the shared bucket-merging
// algorithm; shrink_bisimulation.h for the signature-refinement
// variant) and equivalence_relation.h for the union-find-style class
// representation reused here as a plain parent array.
package shrink

import (
	"sort"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/transition"
)

// Strategy computes a shrink partition for a TransitionSystem.
type Strategy interface {
	// ComputePartition returns class (class[state] is its new class id) and
	// the number of classes, or ok=false if the shared "do nothing unless
	// num_states > min(target, threshold)" contract means no shrink is
	// needed.
	ComputePartition(ts *transition.TransitionSystem, target int, threshold int, rng mscore.RNG) (class []int, numClasses int, ok bool)
}

// New constructs the ShrinkStrategy named by cfg (spec.md §6, §4.7).
func New(cfg mscore.ShrinkConfig) Strategy {
	switch cfg.Kind {
	case mscore.ShrinkRandom:
		return randomStrategy{}
	case mscore.ShrinkBisimulation:
		return bisimulationStrategy{greedy: cfg.Greedy, atLimit: cfg.AtLimit}
	default:
		return fPreservingStrategy{preferF: cfg.PreferF, preferH: cfg.PreferH}
	}
}

// needsShrink applies the shared contract: do nothing unless
// num_states > min(target, threshold).
func needsShrink(numStates, target, threshold int) bool {
	bound := target
	if threshold < bound {
		bound = threshold
	}
	return numStates > bound
}

func sortKeys[K comparable](m map[K][]int, less func(a, b K) bool) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
	return keys
}
