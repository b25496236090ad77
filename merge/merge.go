// Package merge implements MergeStrategy (spec.md §4.8): given a
// FactoredSystem, choose the next pair of active factor indices to merge.
//
// Grounded on the original source's merge_strategy.h/merge_tree.*
// (precomputed-tree variant, a caterpillar binary tree built once from a
// linear variable order) and merge_scoring_function*.h /
// merge_selector_score_based_filtering.h (stateless, scorer-list variant).
package merge

import (
	"github.com/aibasel/downward-sub002/factored"
	"github.com/aibasel/downward-sub002/mscore"
)

// Strategy selects the next factor pair to merge (spec.md §4.8). Applied is
// called once the caller has actually performed the merge, so a stateful
// strategy (the precomputed tree) can update its bookkeeping; stateless
// strategies ignore it.
type Strategy interface {
	Next(sys *factored.System) (i, j int, err error)
	Applied(i, j, newIndex int)
}

// New constructs the MergeStrategy named by cfg (spec.md §4.8, §6).
func New(cfg mscore.MergeConfig, task mscore.TaskView, rng mscore.RNG) Strategy {
	if cfg.Kind == mscore.MergeStateless {
		return newStatelessStrategy(cfg.Scorers, rng)
	}
	return newPrecomputedTreeStrategy(task, cfg.LinearOrder, rng)
}
