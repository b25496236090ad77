package merge

import (
	"fmt"
	"math"

	"github.com/aibasel/downward-sub002/factored"
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mserr"
	"github.com/aibasel/downward-sub002/transition"
)

// pair is a candidate factor index pair.
type pair struct{ i, j int }

// statelessStrategy enumerates all active pairs and filters them down by
// applying each configured scoring function in order, keeping only the
// minimum-scoring pairs after each (spec.md §4.8 "Stateless score-based
// selector"). It carries no state across calls.
type statelessStrategy struct {
	scorers []mscore.ScorerKind
	rng     mscore.RNG
}

func newStatelessStrategy(scorers []mscore.ScorerKind, rng mscore.RNG) *statelessStrategy {
	if len(scorers) == 0 {
		scorers = []mscore.ScorerKind{mscore.ScoreGoalRelevance, mscore.ScoreDFP, mscore.ScoreTiebreakingRandom}
	}
	return &statelessStrategy{scorers: scorers, rng: rng}
}

func (s *statelessStrategy) Applied(i, j, newIndex int) {} // stateless: nothing to update

func (s *statelessStrategy) Next(sys *factored.System) (int, int, error) {
	active := sys.Active()
	if len(active) < 2 {
		return 0, 0, mserr.InvariantViolation.New(fmt.Sprintf("stateless merge strategy needs at least two active factors, got %d", len(active)))
	}

	candidates := make([]pair, 0, len(active)*(len(active)-1)/2)
	for a := 0; a < len(active); a++ {
		for b := a + 1; b < len(active); b++ {
			candidates = append(candidates, pair{active[a], active[b]})
		}
	}

	for si, kind := range s.scorers {
		scores := make([]float64, len(candidates))
		for ci, p := range candidates {
			scores[ci] = s.score(sys, kind, p.i, p.j, ci)
		}
		min := scores[0]
		for _, sc := range scores[1:] {
			if sc < min {
				min = sc
			}
		}
		var kept []pair
		for ci, p := range candidates {
			if scores[ci] == min {
				kept = append(kept, p)
			}
		}
		candidates = kept
		if len(candidates) == 1 {
			break
		}
		if si == len(s.scorers)-1 && len(candidates) > 1 {
			// The last scorer must break ties uniquely (spec.md §4.8); a
			// misconfigured scorer list (e.g. missing a random tiebreaker)
			// falls back to the first remaining candidate in enumeration
			// order rather than leaving the choice ambiguous.
			candidates = candidates[:1]
		}
	}

	return candidates[0].i, candidates[0].j, nil
}

func (s *statelessStrategy) score(sys *factored.System, kind mscore.ScorerKind, i, j, candidateIndex int) float64 {
	switch kind {
	case mscore.ScoreGoalRelevance:
		return scoreGoalRelevance(sys.Get(i), sys.Get(j))
	case mscore.ScoreDFP:
		return scoreDFP(sys.Get(i), sys.Get(j))
	case mscore.ScoreMIASM:
		return scoreMIASM(sys, i, j)
	case mscore.ScoreTotalOrder:
		return float64(i)*1e6 + float64(j)
	case mscore.ScoreSingleRandom:
		if s.rng == nil {
			return float64(candidateIndex)
		}
		return float64(s.rng.NextUint(1 << 30))
	case mscore.ScoreTiebreakingRandom:
		if s.rng == nil {
			return float64(candidateIndex)
		}
		return float64(s.rng.NextUint(1 << 30))
	default:
		return 0
	}
}

// scoreGoalRelevance: 0 if at least one factor has a non-goal state, else
// +Inf (spec.md §4.8 "goal-relevance") — a pair where both factors are
// entirely goal states can never help distinguish goal from non-goal, so
// it is deprioritized maximally.
func scoreGoalRelevance(a, b *transition.TransitionSystem) float64 {
	if hasNonGoalState(a) || hasNonGoalState(b) {
		return 0
	}
	return math.Inf(1)
}

func hasNonGoalState(ts *transition.TransitionSystem) bool {
	for s := 0; s < ts.NumStates(); s++ {
		if !ts.IsGoal(s) {
			return true
		}
	}
	return false
}

// scoreDFP computes label-rank-minimax (spec.md §4.8 "DFP"): a label's
// rank in a factor is min{goal_d(target)} over its group's transitions, or
// -1 if the group only contains self-loops ("irrelevant"). The pair score
// is min over labels active in both factors of max(rank_A, rank_B).
func scoreDFP(a, b *transition.TransitionSystem) float64 {
	ranksA := labelRanks(a)
	ranksB := labelRanks(b)

	best := math.Inf(1)
	found := false
	for label, rankA := range ranksA {
		rankB, ok := ranksB[label]
		if !ok {
			continue
		}
		found = true
		m := rankA
		if rankB > m {
			m = rankB
		}
		if float64(m) < best {
			best = float64(m)
		}
	}
	if !found {
		return math.Inf(1)
	}
	return best
}

// labelRanks maps every label active in ts to its rank.
func labelRanks(ts *transition.TransitionSystem) map[int]int {
	dist := ts.Distances()
	out := make(map[int]int)
	for _, g := range ts.Groups() {
		rank := -1
		for _, tr := range g.Transitions {
			if tr.Src == tr.Target {
				continue
			}
			d := dist.GoalD(tr.Target)
			if rank == -1 || d < rank {
				rank = d
			}
		}
		for _, l := range g.Labels {
			out[l] = rank
		}
	}
	return out
}

// scoreMIASM builds the trial product of the two factors and scores it by
// the fraction of its states that are actually reachable and relevant
// (neither forward- nor backward-dead), |live product| / (|A|*|B|) —
// lower is better, more pruning potential (spec.md §4.8 "MIASM"). The
// original computes this after applying the configured shrink rules to the
// trial merge; this module approximates that by reading the trial
// product's own Distances-derived dead-state bitmap directly, since the
// dead states a post-shrink pass would remove are exactly the states
// Distances already marks ToBePruned.
func scoreMIASM(sys *factored.System, i, j int) float64 {
	a, b := sys.Get(i), sys.Get(j)
	total := float64(a.NumStates()) * float64(b.NumStates())
	if total == 0 {
		return 0
	}
	trial, err := transition.Product(a, b, sys.LS)
	if err != nil {
		return math.Inf(1)
	}
	dead := trial.Distances().ToBePruned()
	live := 0
	for _, d := range dead {
		if !d {
			live++
		}
	}
	return float64(live) / total
}
