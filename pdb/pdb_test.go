package pdb

import (
	"testing"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mscore/mstest"
	"github.com/aibasel/downward-sub002/pattern"
	"github.com/stretchr/testify/require"
)

// twoVarTask has two independent binary variables, each flipped 0->1 by its
// own unit-cost operator, with both required at the goal. Over pattern
// [0,1] the abstract ranks are var0 + 2*var1, so rank 0 = (0,0), rank 1 =
// (1,0), rank 2 = (0,1), rank 3 = (1,1). Shortest abstract distances are
// therefore [2,1,1,0].
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

func TestBuildComputesAbstractDistances(t *testing.T) {
	task := twoVarTask()
	p, err := Build(task, pattern.Pattern{0, 1}, nil, false, true)
	require.NoError(t, err)

	require.Equal(t, 2, p.Value(0))
	require.Equal(t, 1, p.Value(1))
	require.Equal(t, 1, p.Value(2))
	require.Equal(t, 0, p.Value(3))
}

func TestBuildExtractsWildcardPlanToGoal(t *testing.T) {
	task := twoVarTask()
	p, err := Build(task, pattern.Pattern{0, 1}, nil, true, true)
	require.NoError(t, err)

	plan, ok := p.Plan()
	require.True(t, ok)
	require.Len(t, plan, 2)

	seen := make(map[int]bool)
	for _, step := range plan {
		require.Len(t, step, 1)
		seen[step[0]] = true
	}
	require.Len(t, seen, 2)
	require.Contains(t, seen, 0)
	require.Contains(t, seen, 1)
}

// siblingOpTask has two cost-1 operators that both flip var0 0->1 and are
// therefore indistinguishable over pattern [0]: op0 additionally
// preconditions var1 (left at its initial value, so op0 is concretely
// inapplicable), op1 has no precondition at all.
func siblingOpTask() *mstest.Task {
	return &mstest.Task{
		Domains: []int{2, 2},
		Init:    []int{0, 0},
		Goal:    []mscore.Fact{{Var: 0, Value: 1}},
		Operators: []mscore.Operator{
			{Preconditions: []mscore.Fact{{Var: 1, Value: 1}}, Effects: []mscore.Fact{{Var: 0, Value: 1}}, Cost: 1},
			{Effects: []mscore.Fact{{Var: 0, Value: 1}}, Cost: 1},
		},
	}
}

func TestBuildWildcardPlanGroupsInterchangeableOperators(t *testing.T) {
	task := siblingOpTask()
	p, err := Build(task, pattern.Pattern{0}, nil, true, true)
	require.NoError(t, err)

	plan, ok := p.Plan()
	require.True(t, ok)
	require.Len(t, plan, 1)
	require.ElementsMatch(t, []int{0, 1}, plan[0])
}

func TestBuildNonWildcardPlanCommitsToGeneratorOnly(t *testing.T) {
	task := siblingOpTask()
	p, err := Build(task, pattern.Pattern{0}, nil, true, false)
	require.NoError(t, err)

	plan, ok := p.Plan()
	require.True(t, ok)
	require.Len(t, plan, 1)
	require.Len(t, plan[0], 1)
}

func TestBuildUnsolvablePatternReturnsError(t *testing.T) {
	task := &mstest.Task{
		Domains: []int{2},
		Init:    []int{0},
		Goal:    []mscore.Fact{{Var: 0, Value: 1}},
		Operators: []mscore.Operator{
			{Preconditions: []mscore.Fact{{Var: 0, Value: 1}}, Effects: []mscore.Fact{{Var: 0, Value: 0}}, Cost: 1},
		},
	}
	_, err := Build(task, pattern.Pattern{0}, nil, false, true)
	require.Error(t, err)
}

func TestBuildRespectsCostOverride(t *testing.T) {
	task := twoVarTask()
	p, err := Build(task, pattern.Pattern{0, 1}, func(opID int) int { return 5 }, false, true)
	require.NoError(t, err)
	require.Equal(t, 10, p.Value(0))
}
