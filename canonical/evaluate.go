package canonical

import (
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/pattern"
)

// Patterns returns the patterns this Collection was built over.
func (c *Collection) Patterns() []pattern.Pattern { return c.patterns }

// Cliques returns every maximal additive clique, as indices into Patterns().
func (c *Collection) Cliques() [][]int { return c.cliques }

// Evaluate returns the canonical heuristic value at state (indexed by task
// variable id): max over cliques of the summed per-pattern PDB values
// (spec.md §4.10). Returns mscore.INF as soon as any single pattern already
// proves state is a dead end — an abstraction's distance never exceeds the
// concrete distance, so one infinite h_k is proof enough.
func (c *Collection) Evaluate(state []int) int {
	h := make([]int, len(c.pdbs))
	for i, p := range c.pdbs {
		rank := p.Hash().RankFacts(state)
		v := p.Value(rank)
		if v == mscore.INF {
			return mscore.INF
		}
		h[i] = v
	}

	if len(c.cliques) == 0 {
		return 0
	}
	best := 0
	for ci, clique := range c.cliques {
		sum := 0
		for _, idx := range clique {
			sum += h[idx]
		}
		if ci == 0 || sum > best {
			best = sum
		}
	}
	return best
}
