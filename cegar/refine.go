package cegar

import (
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mserr"
	"github.com/aibasel/downward-sub002/pattern"
	"github.com/aibasel/downward-sub002/pdb"
)

// refineResult is the outcome of a successful grow or merge step.
type refineResult struct {
	patterns    []PatternInfo
	varToPattern map[int]int
	resultIdx   int
}

// refine implements spec.md §4.11 step (iv): try to grow the current
// pattern with chosen, else try to merge it with chosen's existing
// pattern, else report that neither fits (the caller blacklists chosen).
// A nil, nil return means "neither fits".
func refine(task mscore.TaskView, patterns []PatternInfo, varToPattern map[int]int, curIdx, chosen int, cfg mscore.CEGARConfig, blacklist map[int]bool) (*refineResult, error) {
	otherIdx, inAnotherPattern := varToPattern[chosen]

	if !inAnotherPattern {
		grown := pattern.Sorted(append(append(pattern.Pattern(nil), patterns[curIdx].Pattern...), chosen))
		return tryApply(task, patterns, varToPattern, cfg, grown, []int{curIdx}, curIdx)
	}

	if otherIdx == curIdx {
		return nil, nil // already covered by this pattern; nothing to refine
	}

	merged := pattern.Sorted(append(append(pattern.Pattern(nil), patterns[curIdx].Pattern...), patterns[otherIdx].Pattern...))
	return tryApply(task, patterns, varToPattern, cfg, merged, []int{curIdx, otherIdx}, curIdx)
}

// tryApply checks merged against the per-PDB and collection size bounds
// (spec.md §4.11 step (iv)), and if it fits, rebuilds its PDB and installs
// it at resultIdx, tombstoning every other replaced index.
func tryApply(task mscore.TaskView, patterns []PatternInfo, varToPattern map[int]int, cfg mscore.CEGARConfig, merged pattern.Pattern, replaced []int, resultIdx int) (*refineResult, error) {
	size, err := patternSize(merged, task)
	if err != nil {
		if mserr.IsSizeLimitExceeded(err) {
			return nil, nil
		}
		return nil, err
	}
	if cfg.MaxPDBSize > 0 && size > cfg.MaxPDBSize {
		return nil, nil
	}

	total := size
	for i, p := range patterns {
		if len(p.Pattern) == 0 || contains(replaced, i) {
			continue
		}
		total += p.PDB.Hash().Size()
	}
	if cfg.MaxCollectionSize > 0 && total > cfg.MaxCollectionSize {
		return nil, nil
	}

	built, err := pdb.Build(task, merged, nil, true, cfg.UseWildcardPlans)
	if err != nil {
		if mserr.IsSizeLimitExceeded(err) {
			return nil, nil
		}
		return nil, err
	}

	newPatterns := append([]PatternInfo(nil), patterns...)
	for _, i := range replaced {
		if i != resultIdx {
			newPatterns[i] = PatternInfo{} // tombstone
		}
	}
	newPatterns[resultIdx] = PatternInfo{Pattern: merged, PDB: built}

	newVarToPattern := make(map[int]int, len(varToPattern))
	for v, i := range varToPattern {
		newVarToPattern[v] = i
	}
	for _, v := range merged {
		newVarToPattern[v] = resultIdx
	}

	return &refineResult{patterns: newPatterns, varToPattern: newVarToPattern, resultIdx: resultIdx}, nil
}

func patternSize(p pattern.Pattern, task mscore.TaskView) (int, error) {
	h, err := pattern.New(p, task.Domain)
	if err != nil {
		return 0, err
	}
	return h.Size(), nil
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
