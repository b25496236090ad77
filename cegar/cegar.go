// Package cegar implements Single-CEGAR and Multiple-CEGAR pattern
// collection growing (spec.md §4.11, §4.12): starting from one singleton
// pattern per goal variable, repeatedly execute each pattern's wildcard plan
// against the concrete task, diagnose the variables responsible when
// execution goes wrong, and grow or merge patterns to fix the flaw.
//
// Grounded on the original source's cegar.h/.cc (PatternCollectionGeneratorCegar):
// the flaw-collection/random-choice/grow-or-merge-or-blacklist refinement
// step and the goal-variable-ordered outer loop both mirror CegarStrategy::
// run_cegar there; this module replaces its in-place mutable PDB rebuild
// with a fresh pdb.Build call per refinement, consistent with this module's
// immutable-PDB design (spec.md §3 "PDBs are shared-immutable once built").
package cegar

import (
	"time"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mslog"
	"github.com/aibasel/downward-sub002/pattern"
	"github.com/aibasel/downward-sub002/pdb"
)

// PatternInfo is one entry in the growing collection (spec.md §4.11
// "a growing vector of pattern infos").
type PatternInfo struct {
	Pattern pattern.Pattern
	PDB     *pdb.PDB
	Solved  bool
}

// Collection is the Single-CEGAR output: the grown patterns and, if
// execution of some pattern's plan happened to solve the concrete task
// outright, that concrete plan.
type Collection struct {
	Patterns []PatternInfo
	Plan     [][]int
	HasPlan  bool
}

// Run executes Single-CEGAR (spec.md §4.11) over task, starting one
// singleton pattern per variable in goalOrder. clock backs the cooperative
// timer (nil means unbounded); rng drives every random choice, including
// flaw selection — it must be non-nil, since every flaw choice draws from it.
func Run(task mscore.TaskView, goalOrder []int, cfg mscore.CEGARConfig, clock mscore.Clock, rng mscore.RNG, log *mslog.Logger) (Collection, error) {
	if log == nil {
		log = mslog.Nop()
	}
	log = log.WithField("run_id", mscore.NewRunID())
	var started time.Duration
	if clock != nil {
		started = clock.Now()
	}
	timedOut := func() bool {
		return clock != nil && cfg.MaxTime > 0 && clock.Now()-started >= cfg.MaxTime
	}

	blacklist := copyBlacklist(cfg.BlacklistVariable)

	var patterns []PatternInfo
	varToPattern := make(map[int]int)
	for _, v := range goalOrder {
		if _, ok := varToPattern[v]; ok {
			continue
		}
		p := pattern.Pattern{v}
		built, err := pdb.Build(task, p, nil, true, cfg.UseWildcardPlans)
		if err != nil {
			return Collection{}, err
		}
		idx := len(patterns)
		patterns = append(patterns, PatternInfo{Pattern: p, PDB: built})
		varToPattern[v] = idx
	}

	initState := concreteInitialState(task)

	for {
		if timedOut() {
			log.Normalf("CEGAR timer expired with %d patterns", len(patterns))
			return Collection{Patterns: patterns}, nil
		}

		curIdx := pickUnsolved(patterns)
		if curIdx == -1 {
			log.Normalf("CEGAR finished: no unsolved pattern remains")
			return Collection{Patterns: patterns}, nil
		}

		outcome := executePlan(task, patterns[curIdx].PDB, initState, blacklist)

		if outcome.solved && len(blacklist) == 0 {
			log.Normalf("pattern %v solves the concrete task", []int(patterns[curIdx].Pattern))
			return Collection{Patterns: patterns, Plan: outcome.plan, HasPlan: true}, nil
		}
		if outcome.solved {
			// The abstract plan reached a concrete goal state, but only
			// because some variables are blacklisted (so not actually
			// accounted for); this pattern has no further flaws to offer.
			patterns[curIdx].Solved = true
			continue
		}
		if len(outcome.flaws) == 0 {
			// Defensive: executePlan only returns solved=false with no
			// flaws if the PDB carries no plan or a plan step is empty.
			patterns[curIdx].Solved = true
			continue
		}

		flawVars := sortedKeys(outcome.flaws)
		chosen := flawVars[rng.NextUint(len(flawVars))]

		result, err := refine(task, patterns, varToPattern, curIdx, chosen, cfg, blacklist)
		if err != nil {
			return Collection{}, err
		}
		if result == nil {
			blacklist[chosen] = true
			log.Verbosef("blacklisting variable %d", chosen)
			continue
		}
		patterns, varToPattern = result.patterns, result.varToPattern
		log.Verbosef("refined pattern to %v", []int(patterns[result.resultIdx].Pattern))
	}
}
