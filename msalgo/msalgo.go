// Package msalgo implements MSAlgorithm (spec.md §4.9): the Merge-and-Shrink
// main loop tying together label reduction, shrinking, merging, and pruning
// over a FactoredSystem until it has collapsed (or the configured limits
// stop it first).
//
// Grounded on the original source's merge_and_shrink.cc main_loop: the
// per-iteration sequence (reduce before shrinking, compute shrink targets,
// shrink, reduce before merging, merge, prune, check solvability) mirrors
// MergeAndShrinkAlgorithm::main_loop there, adapted to this module's
// factored.System/shrink.Strategy/merge.Strategy collaborators.
package msalgo

import (
	"math"
	"time"

	"github.com/aibasel/downward-sub002/factored"
	"github.com/aibasel/downward-sub002/merge"
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mserr"
	"github.com/aibasel/downward-sub002/mslog"
	"github.com/aibasel/downward-sub002/shrink"
)

// Result is what Run returns: the final FactoredSystem, whether the task was
// proven unsolvable along the way, and whether the wall-clock timer cut the
// main loop short (spec.md §4.9 "Failure semantics").
type Result struct {
	System     *factored.System
	Unsolvable bool
	TimedOut   bool
}

// Run executes the MSAlgorithm main loop (spec.md §4.9) over task with cfg.
// clock and rng back the cooperative timer and every non-deterministic
// choice (spec.md §5); log receives human-readable progress only. Passing a
// nil clock means "no timer": cfg.MainLoopMaxTime is ignored.
func Run(task mscore.TaskView, cfg mscore.Config, clock mscore.Clock, rng mscore.RNG, log *mslog.Logger) (Result, error) {
	if log == nil {
		log = mslog.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	log = log.WithField("run_id", mscore.NewRunID())

	var started time.Duration
	if clock != nil {
		started = clock.Now()
	}
	timedOut := func() bool {
		return clock != nil && cfg.MainLoopMaxTime > 0 && clock.Now()-started >= cfg.MainLoopMaxTime
	}

	sys, err := factored.CreateAtomic(task, func() error {
		if timedOut() {
			return mserr.TimedOut.New("atomic factor construction")
		}
		return nil
	})
	if err != nil {
		if mserr.IsTimedOut(err) {
			return Result{System: sys, TimedOut: true}, nil
		}
		return Result{}, err
	}
	log.Normalf("built %d atomic factors", sys.NumActive())

	if unsolvable, err := pruneAndCheck(sys, cfg); err != nil {
		return Result{}, err
	} else if unsolvable {
		log.Normalf("atomic factor unsolvable")
		return Result{System: sys, Unsolvable: true}, nil
	}

	strat := merge.New(cfg.Merge, task, rng)
	shrinkStrat := shrink.New(cfg.Shrink)

	for sys.NumActive() > 1 {
		if timedOut() {
			log.Normalf("main loop timer expired with %d active factors", sys.NumActive())
			return Result{System: sys, TimedOut: true}, nil
		}

		i, j, err := strat.Next(sys)
		if err != nil {
			return Result{}, err
		}
		log.Verbosef("merging factors %d, %d", i, j)

		if cfg.LabelReduction.Enabled && cfg.LabelReduction.BeforeShrinking {
			if err := reduce(sys, cfg.LabelReduction, i, j, rng); err != nil {
				return Result{}, err
			}
		}

		targetI, targetJ := shrinkTargets(sys.Get(i).NumStates(), sys.Get(j).NumStates(), cfg.MaxStatesBeforeMerge, cfg.MaxStatesAfterMerge)
		if err := shrinkFactor(sys, shrinkStrat, i, targetI, cfg.ShrinkThreshold, rng, log); err != nil {
			return Result{}, err
		}
		if err := shrinkFactor(sys, shrinkStrat, j, targetJ, cfg.ShrinkThreshold, rng, log); err != nil {
			return Result{}, err
		}

		if cfg.LabelReduction.Enabled && cfg.LabelReduction.BeforeMerging {
			if err := reduce(sys, cfg.LabelReduction, i, j, rng); err != nil {
				return Result{}, err
			}
		}

		newIndex, err := sys.Merge(i, j)
		if err != nil {
			return Result{}, err
		}
		strat.Applied(i, j, newIndex)
		log.Verbosef("merged into factor %d with %d states", newIndex, sys.Get(newIndex).NumStates())

		if unsolvable, err := pruneAndCheck(sys, cfg); err != nil {
			return Result{}, err
		} else if unsolvable {
			log.Normalf("product %d is unsolvable", newIndex)
			return Result{System: sys, Unsolvable: true}, nil
		}
	}

	log.Normalf("main loop finished with %d active factor(s)", sys.NumActive())
	return Result{System: sys}, nil
}

// reduce dispatches to the configured label-reduction mode (spec.md §4.6).
// The default two-factor mode reduces w.r.t. i and then w.r.t. j,
// successively (spec.md §4.6(a): "the two factors about to be merged"):
// ReduceFor(i)'s outside-equivalence is computed excluding i, so it
// combines labels that only i's local-equivalence tells apart but still
// distinguishes labels that j's local-equivalence tells apart; that pass
// alone never runs the symmetric computation excluding j, so a
// second ReduceFor(j) pass is needed to also combine labels distinguished
// only by j's local-equivalence. Skip the repeat when i == j.
func reduce(sys *factored.System, cfg mscore.LabelReductionConfig, i, j int, rng mscore.RNG) error {
	switch cfg.Method {
	case mscore.ReduceAllFactors:
		return sys.ReduceAll(cfg.Order, rng)
	case mscore.ReduceAllFactorsFixpoint:
		return sys.ReduceAllFixpoint(cfg.Order, rng)
	default:
		if err := sys.ReduceFor(i); err != nil {
			return err
		}
		if j == i {
			return nil
		}
		return sys.ReduceFor(j)
	}
}

// shrinkTargets computes the per-factor target sizes a merge of two factors
// of sizes a, b should shrink to before the product is built (spec.md §4.9
// step 2c): first clamp each to maxBefore, then if their product would
// still exceed maxAfter, redistribute toward a balanced split.
func shrinkTargets(a, b int, maxBefore, maxAfter uint64) (int, int) {
	ta, tb := clampUint(a, maxBefore), clampUint(b, maxBefore)

	if uint64(ta)*uint64(tb) <= maxAfter {
		return ta, tb
	}

	balanced := int(math.Sqrt(float64(maxAfter)))
	if balanced < 1 {
		balanced = 1
	}
	switch {
	case ta <= balanced:
		tb = clampUint(tb, maxAfter/uint64(maxInt(ta, 1)))
	case tb <= balanced:
		ta = clampUint(ta, maxAfter/uint64(maxInt(tb, 1)))
	default:
		ta, tb = balanced, balanced
	}
	return ta, tb
}

func clampUint(v int, bound uint64) int {
	if bound == 0 {
		return 0
	}
	if uint64(v) > bound {
		if bound > math.MaxInt32 {
			return math.MaxInt32
		}
		return int(bound)
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// shrinkFactor shrinks the active factor at index (spec.md §4.9 step 2c: "shrink
// each if it exceeds min(target, shrink_threshold)").
func shrinkFactor(sys *factored.System, strat shrink.Strategy, index, target int, threshold uint64, rng mscore.RNG, log *mslog.Logger) error {
	ts := sys.Get(index)
	bound := target
	if int(threshold) < bound {
		bound = int(threshold)
	}
	if ts.NumStates() <= bound {
		return nil
	}
	class, numClasses, ok := strat.ComputePartition(ts, target, int(threshold), rng)
	if !ok {
		return nil
	}
	mergesDistinct := numClasses < ts.NumStates()
	log.Verbosef("shrinking factor %d from %d to %d states", index, ts.NumStates(), numClasses)
	return ts.Shrink(class, numClasses, mergesDistinct)
}

// pruneAndCheck applies configured pruning to every active factor, then
// reports whether any active factor's init state is now dead (spec.md §4.9
// step 1, step 2f: "if the product is unsolvable, stop").
func pruneAndCheck(sys *factored.System, cfg mscore.Config) (bool, error) {
	for _, idx := range sys.Active() {
		ts := sys.Get(idx)
		if !cfg.PruneUnreachable && !cfg.PruneIrrelevant {
			if ts.InitState() == mscore.PRUNED || ts.Distances().InitD(ts.InitState()) == mscore.INF || ts.Distances().GoalD(ts.InitState()) == mscore.INF {
				return true, nil
			}
			continue
		}
		dist := ts.Distances()
		if ts.InitState() != mscore.PRUNED && (dist.InitD(ts.InitState()) == mscore.INF || dist.GoalD(ts.InitState()) == mscore.INF) {
			return true, nil
		}
		drop := make([]bool, ts.NumStates())
		toPrune := dist.ToBePruned()
		for s, dead := range toPrune {
			if !dead {
				continue
			}
			if cfg.PruneUnreachable && dist.InitD(s) == mscore.INF {
				drop[s] = true
			}
			if cfg.PruneIrrelevant && dist.GoalD(s) == mscore.INF {
				drop[s] = true
			}
		}
		if err := ts.Prune(drop); err != nil {
			return false, err
		}
	}
	return false, nil
}
