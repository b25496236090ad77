package cegar

import (
	"sort"
	"time"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mslog"
)

// MultipleRun wraps Single-CEGAR in an outer loop over randomised goal
// orderings (spec.md §4.12): each pass draws a fresh shuffle of the task's
// goal variables, runs Single-CEGAR, and folds any pattern covering a
// variable not yet in the accumulated collection into it. A pass that adds
// nothing is "stagnant"; once stagnant time accumulates past
// cfg.StagnationLimit, one further goal variable is blacklisted to force a
// different pattern shape on the next pass. Stops when the total time
// budget (cfg.MaxTime) or collection-size budget (cfg.MaxCollectionSize) is
// exhausted, or every goal variable is either covered or blacklisted.
func MultipleRun(task mscore.TaskView, cfg mscore.CEGARConfig, clock mscore.Clock, rng mscore.RNG, log *mslog.Logger) (Collection, error) {
	if log == nil {
		log = mslog.Nop()
	}
	log = log.WithField("multi_run_id", mscore.NewRunID())
	var started time.Duration
	if clock != nil {
		started = clock.Now()
	}
	timeLeft := func() bool {
		return clock == nil || cfg.MaxTime <= 0 || clock.Now()-started < cfg.MaxTime
	}

	goalVars := allGoalVars(task)
	blacklist := copyBlacklist(cfg.BlacklistVariable)

	var accumulated []PatternInfo
	covered := make(map[int]bool)
	var stagnantSince time.Duration
	stagnating := false

	for timeLeft() {
		if cfg.MaxCollectionSize > 0 && totalSize(accumulated) >= cfg.MaxCollectionSize {
			break
		}
		pending := goalVarsPending(goalVars, covered, blacklist)
		if len(pending) == 0 {
			break
		}

		order := append([]int(nil), pending...)
		if rng != nil {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		passCfg := cfg
		passCfg.BlacklistVariable = blacklist
		if cfg.MaxTime > 0 {
			passCfg.MaxTime = cfg.MaxTime - elapsedSince(clock, started)
		}
		result, err := Run(task, order, passCfg, clock, rng, log)
		if err != nil {
			return Collection{}, err
		}
		if result.HasPlan {
			return result, nil
		}

		addedAny := false
		for _, p := range result.Patterns {
			if len(p.Pattern) == 0 || overlapsCovered(p.Pattern, covered) {
				continue
			}
			if cfg.MaxCollectionSize > 0 && totalSize(accumulated)+p.PDB.Hash().Size() > cfg.MaxCollectionSize {
				continue
			}
			accumulated = append(accumulated, p)
			for _, v := range p.Pattern {
				covered[v] = true
			}
			addedAny = true
		}

		if addedAny {
			stagnating = false
			continue
		}

		if !stagnating {
			stagnating = true
			stagnantSince = elapsedSince(clock, started)
		} else if cfg.StagnationLimit > 0 && elapsedSince(clock, started)-stagnantSince >= cfg.StagnationLimit {
			victim := pickBlacklistVictim(pending, rng)
			if victim == -1 {
				break
			}
			blacklist[victim] = true
			log.Verbosef("stagnation: blacklisting goal variable %d", victim)
			stagnating = false
		}
	}

	return Collection{Patterns: accumulated}, nil
}

func allGoalVars(task mscore.TaskView) []int {
	seen := make(map[int]bool)
	var out []int
	for _, g := range task.Goals() {
		if !seen[g.Var] {
			seen[g.Var] = true
			out = append(out, g.Var)
		}
	}
	sort.Ints(out)
	return out
}

func goalVarsPending(goalVars []int, covered, blacklist map[int]bool) []int {
	var out []int
	for _, v := range goalVars {
		if !covered[v] && !blacklist[v] {
			out = append(out, v)
		}
	}
	return out
}

func overlapsCovered(p []int, covered map[int]bool) bool {
	for _, v := range p {
		if covered[v] {
			return true
		}
	}
	return false
}

func totalSize(patterns []PatternInfo) int {
	total := 0
	for _, p := range patterns {
		total += p.PDB.Hash().Size()
	}
	return total
}

func pickBlacklistVictim(pending []int, rng mscore.RNG) int {
	if len(pending) == 0 {
		return -1
	}
	if rng == nil {
		return pending[0]
	}
	return pending[rng.NextUint(len(pending))]
}

func elapsedSince(clock mscore.Clock, started time.Duration) time.Duration {
	if clock == nil {
		return 0
	}
	return clock.Now() - started
}
