package merge

import (
	"testing"

	"github.com/aibasel/downward-sub002/factored"
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mscore/mstest"
	"github.com/stretchr/testify/require"
)

func threeVarTask() *mstest.Task {
	return &mstest.Task{
		Domains: []int{2, 2, 2},
		Init:    []int{0, 0, 0},
		Goal:    []mscore.Fact{{Var: 0, Value: 1}, {Var: 1, Value: 1}, {Var: 2, Value: 1}},
		Operators: []mscore.Operator{
			{Preconditions: []mscore.Fact{{Var: 0, Value: 0}}, Effects: []mscore.Fact{{Var: 0, Value: 1}}, Cost: 1},
			{Preconditions: []mscore.Fact{{Var: 1, Value: 0}}, Effects: []mscore.Fact{{Var: 1, Value: 1}}, Cost: 1},
			{Preconditions: []mscore.Fact{{Var: 2, Value: 0}}, Effects: []mscore.Fact{{Var: 2, Value: 1}}, Cost: 1},
		},
	}
}

func TestPrecomputedTreeMergesDeepestLeftPairFirst(t *testing.T) {
	task := threeVarTask()
	sys, err := factored.CreateAtomic(task, nil)
	require.NoError(t, err)

	strat := New(mscore.MergeConfig{Kind: mscore.MergePrecomputedTree, LinearOrder: mscore.OrderRegular}, task, nil)

	i, j, err := strat.Next(sys)
	require.NoError(t, err)
	require.Equal(t, 0, i)
	require.Equal(t, 1, j)

	newIdx, err := sys.Merge(i, j)
	require.NoError(t, err)
	strat.Applied(i, j, newIdx)

	i2, j2, err := strat.Next(sys)
	require.NoError(t, err)
	require.ElementsMatch(t, []int{newIdx, 2}, []int{i2, j2})
}

func TestPrecomputedTreeReverseOrderStartsFromLastVariable(t *testing.T) {
	task := threeVarTask()
	strat := New(mscore.MergeConfig{Kind: mscore.MergePrecomputedTree, LinearOrder: mscore.OrderReverseLevel}, task, nil)
	sys, err := factored.CreateAtomic(task, nil)
	require.NoError(t, err)

	i, j, err := strat.Next(sys)
	require.NoError(t, err)
	require.ElementsMatch(t, []int{2, 1}, []int{i, j})
}

func TestStatelessGoalRelevanceReturnsValidActivePair(t *testing.T) {
	task := threeVarTask()
	sys, err := factored.CreateAtomic(task, nil)
	require.NoError(t, err)

	// Every atomic factor here has a non-goal state (value 0), so
	// goal-relevance alone never filters any pair down —
	// confirm it does not error and returns a valid pair.
	strat := New(mscore.MergeConfig{Kind: mscore.MergeStateless, Scorers: []mscore.ScorerKind{mscore.ScoreGoalRelevance, mscore.ScoreTotalOrder}}, task, nil)
	i, j, err := strat.Next(sys)
	require.NoError(t, err)
	require.NotEqual(t, i, j)
	require.Contains(t, sys.Active(), i)
	require.Contains(t, sys.Active(), j)
}

func TestStatelessDFPScoresIdenticalAtomicFactorsEqually(t *testing.T) {
	task := threeVarTask()
	sys, err := factored.CreateAtomic(task, nil)
	require.NoError(t, err)

	strat := newStatelessStrategy([]mscore.ScorerKind{mscore.ScoreDFP, mscore.ScoreTotalOrder}, nil)
	i, j, err := strat.Next(sys)
	require.NoError(t, err)
	// All three atomic factors are structurally identical single-variable
	// chains, so DFP cannot distinguish any pair; total-order must break
	// the tie deterministically to the lexicographically-first pair.
	require.Equal(t, 0, i)
	require.Equal(t, 1, j)
}

func TestStatelessRequiresAtLeastTwoActiveFactors(t *testing.T) {
	task := threeVarTask()
	sys, err := factored.CreateAtomic(task, nil)
	require.NoError(t, err)

	_, err = sys.Merge(0, 1)
	require.NoError(t, err)
	_, err = sys.Merge(sys.Active()[0], sys.Active()[1])
	require.NoError(t, err)

	strat := newStatelessStrategy([]mscore.ScorerKind{mscore.ScoreTotalOrder}, nil)
	_, _, err = strat.Next(sys)
	require.Error(t, err)
}
