package msalgo

import (
	"testing"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mscore/mstest"
	"github.com/stretchr/testify/require"
)

func twoVarTask() *mstest.Task {
	return &mstest.Task{
		Domains: []int{2, 2},
		Init:    []int{0, 0},
		Goal:    []mscore.Fact{{Var: 0, Value: 1}, {Var: 1, Value: 1}},
		Operators: []mscore.Operator{
			{Preconditions: []mscore.Fact{{Var: 0, Value: 0}}, Effects: []mscore.Fact{{Var: 0, Value: 1}}, Cost: 1},
			{Preconditions: []mscore.Fact{{Var: 1, Value: 0}}, Effects: []mscore.Fact{{Var: 1, Value: 1}}, Cost: 1},
		},
	}
}

func baseConfig() mscore.Config {
	return mscore.Config{
		MaxStatesAfterMerge:  100,
		MaxStatesBeforeMerge: 100,
		ShrinkThreshold:      100,
		PruneUnreachable:     true,
		PruneIrrelevant:      true,
		Shrink:               mscore.ShrinkConfig{Kind: mscore.ShrinkFPreserving},
		Merge:                mscore.MergeConfig{Kind: mscore.MergePrecomputedTree, LinearOrder: mscore.OrderRegular},
	}
}

func TestRunMergesDownToOneFactor(t *testing.T) {
	task := twoVarTask()
	result, err := Run(task, baseConfig(), nil, nil, nil)
	require.NoError(t, err)
	require.False(t, result.Unsolvable)
	require.False(t, result.TimedOut)
	require.Equal(t, 1, result.System.NumActive())

	final := result.System.Get(result.System.Active()[0])
	require.Equal(t, 2, final.Distances().GoalD(final.InitState()))
}

func TestRunDetectsUnsolvableAtomicFactor(t *testing.T) {
	task := &mstest.Task{
		Domains: []int{2},
		Init:    []int{0},
		Goal:    []mscore.Fact{{Var: 0, Value: 1}},
		Operators: []mscore.Operator{
			{Preconditions: []mscore.Fact{{Var: 0, Value: 1}}, Effects: []mscore.Fact{{Var: 0, Value: 0}}, Cost: 1},
		},
	}
	cfg := baseConfig()
	result, err := Run(task, cfg, nil, nil, nil)
	require.NoError(t, err)
	require.True(t, result.Unsolvable)
}

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

// TestRunTwoFactorLabelReductionReducesBothMergedFactors exercises the
// default (ReduceTwoFactor) label-reduction mode end to end: reduce() must
// run a ReduceFor pass against both factors about to be merged, not just
// the first, and the main loop must still reach a correct solution.
func TestRunTwoFactorLabelReductionReducesBothMergedFactors(t *testing.T) {
	task := threeVarTask()
	cfg := baseConfig()
	cfg.LabelReduction = mscore.LabelReductionConfig{
		Enabled:         true,
		BeforeShrinking: true,
		BeforeMerging:   true,
		Method:          mscore.ReduceTwoFactor,
	}
	rng := mstest.NewSeededRNG(1)

	result, err := Run(task, cfg, nil, rng, nil)
	require.NoError(t, err)
	require.False(t, result.Unsolvable)
	require.Equal(t, 1, result.System.NumActive())

	final := result.System.Get(result.System.Active()[0])
	require.Equal(t, 3, final.Distances().GoalD(final.InitState()))
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	task := twoVarTask()
	cfg := baseConfig()
	cfg.ShrinkThreshold = 0
	_, err := Run(task, cfg, nil, nil, nil)
	require.Error(t, err)
}
