package canonical

import (
	"testing"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mscore/mstest"
	"github.com/aibasel/downward-sub002/pattern"
	"github.com/aibasel/downward-sub002/pdb"
	"github.com/stretchr/testify/require"
)

// additivityTask is spec.md §8 scenario S6: op0 effects both var0 and var1,
// so singleton patterns {0} and {1} are not additive; op1 effects only
// var2, so {2} is additive with both.
func additivityTask() *mstest.Task {
	return &mstest.Task{
		Domains: []int{2, 2, 2},
		Init:    []int{0, 0, 0},
		Goal:    []mscore.Fact{{Var: 0, Value: 1}, {Var: 1, Value: 1}, {Var: 2, Value: 1}},
		Operators: []mscore.Operator{
			{Effects: []mscore.Fact{{Var: 0, Value: 1}, {Var: 1, Value: 1}}, Cost: 1},
			{Effects: []mscore.Fact{{Var: 2, Value: 1}}, Cost: 1},
		},
	}
}

func buildAll(t *testing.T, task mscore.TaskView, patterns []pattern.Pattern) []*pdb.PDB {
	t.Helper()
	pdbs := make([]*pdb.PDB, len(patterns))
	for i, p := range patterns {
		built, err := pdb.Build(task, p, nil, false, false)
		require.NoError(t, err)
		pdbs[i] = built
	}
	return pdbs
}

func TestBuildSeparatesNonAdditivePatterns(t *testing.T) {
	task := additivityTask()
	patterns := []pattern.Pattern{{0}, {1}, {2}}
	pdbs := buildAll(t, task, patterns)

	c := Build(task, patterns, pdbs)

	for _, clique := range c.Cliques() {
		hasP, hasQ := false, false
		for _, idx := range clique {
			if idx == 0 {
				hasP = true
			}
			if idx == 1 {
				hasQ = true
			}
		}
		require.False(t, hasP && hasQ, "patterns {0} and {1} share an effect variable and must never share a clique")
	}

	foundPR, foundQR := false, false
	for _, clique := range c.Cliques() {
		set := map[int]bool{}
		for _, idx := range clique {
			set[idx] = true
		}
		if set[0] && set[2] {
			foundPR = true
		}
		if set[1] && set[2] {
			foundQR = true
		}
	}
	require.True(t, foundPR, "{0} and {2} share no effect variable and must appear together in some clique")
	require.True(t, foundQR, "{1} and {2} share no effect variable and must appear together in some clique")
}

func TestEvaluateTakesMaxOverCliquesNotSum(t *testing.T) {
	task := additivityTask()
	patterns := []pattern.Pattern{{0}, {1}, {2}}
	pdbs := buildAll(t, task, patterns)
	c := Build(task, patterns, pdbs)

	state := []int{0, 0, 0}
	// h_{0}=1, h_{1}=1, h_{2}=1. Cliques are {0,2} and {1,2}, each summing to
	// 2; summing all three non-additively would wrongly give 3.
	require.Equal(t, 2, c.Evaluate(state))
}
