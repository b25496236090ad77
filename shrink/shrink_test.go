package shrink

import (
	"testing"

	"github.com/aibasel/downward-sub002/labels"
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mscore/mstest"
	"github.com/aibasel/downward-sub002/transition"
	"github.com/stretchr/testify/require"
)

// chainTask builds a 4-value variable with a simple forward chain
// 0->1->2->3, each transition unit cost, goal at value 3.
func chainTask() *mstest.Task {
	return &mstest.Task{
		Domains: []int{4},
		Init:    []int{0},
		Goal:    []mscore.Fact{{Var: 0, Value: 3}},
		Operators: []mscore.Operator{
			{Preconditions: []mscore.Fact{{Var: 0, Value: 0}}, Effects: []mscore.Fact{{Var: 0, Value: 1}}, Cost: 1},
			{Preconditions: []mscore.Fact{{Var: 0, Value: 1}}, Effects: []mscore.Fact{{Var: 0, Value: 2}}, Cost: 1},
			{Preconditions: []mscore.Fact{{Var: 0, Value: 2}}, Effects: []mscore.Fact{{Var: 0, Value: 3}}, Cost: 1},
		},
	}
}

func buildChainTS(t *testing.T) *transition.TransitionSystem {
	task := chainTask()
	ls := labels.New()
	for i := 0; i < task.NumOperators(); i++ {
		_, err := ls.Add(task.Operator(i).Cost)
		require.NoError(t, err)
	}
	ts, err := transition.NewAtomic(task, 0, ls)
	require.NoError(t, err)
	return ts
}

func TestSharedContractSkipsWhenBelowThreshold(t *testing.T) {
	ts := buildChainTS(t)
	strat := New(mscore.ShrinkConfig{Kind: mscore.ShrinkRandom})
	_, _, ok := strat.ComputePartition(ts, 10, 10, mstest.NewSeededRNG(1))
	require.False(t, ok)
}

func TestRandomStrategyShrinksToTarget(t *testing.T) {
	ts := buildChainTS(t)
	strat := New(mscore.ShrinkConfig{Kind: mscore.ShrinkRandom})
	class, numClasses, ok := strat.ComputePartition(ts, 2, 2, mstest.NewSeededRNG(42))
	require.True(t, ok)
	require.Equal(t, 2, numClasses)
	require.Len(t, class, 4)
}

func TestFPreservingIsNoOpWhenTargetCoversAllStates(t *testing.T) {
	ts := buildChainTS(t)
	strat := New(mscore.ShrinkConfig{Kind: mscore.ShrinkFPreserving})
	_, _, ok := strat.ComputePartition(ts, 4, 4, mstest.NewSeededRNG(1))
	require.False(t, ok)
}

func TestFPreservingShrinksDistinctFHBuckets(t *testing.T) {
	ts := buildChainTS(t)
	strat := New(mscore.ShrinkConfig{Kind: mscore.ShrinkFPreserving})
	class, numClasses, ok := strat.ComputePartition(ts, 2, 2, mstest.NewSeededRNG(7))
	require.True(t, ok)
	require.LessOrEqual(t, numClasses, 2)
	require.Len(t, class, 4)
}

func TestBisimulationNeverMergesGoalWithNonGoal(t *testing.T) {
	ts := buildChainTS(t)
	strat := New(mscore.ShrinkConfig{Kind: mscore.ShrinkBisimulation, AtLimit: mscore.AtLimitReturn})
	class, _, ok := strat.ComputePartition(ts, 1, 1, mstest.NewSeededRNG(1))
	require.True(t, ok)
	require.NotEqual(t, class[3], class[0]) // state 3 is the only goal
	require.NotEqual(t, class[3], class[1])
	require.NotEqual(t, class[3], class[2])
}

func TestBisimulationUseUpReachesExactBudget(t *testing.T) {
	ts := buildChainTS(t)
	strat := New(mscore.ShrinkConfig{Kind: mscore.ShrinkBisimulation, AtLimit: mscore.AtLimitUseUp})
	_, numClasses, ok := strat.ComputePartition(ts, 3, 3, mstest.NewSeededRNG(1))
	require.True(t, ok)
	require.Equal(t, 3, numClasses)
}
