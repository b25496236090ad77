package cegar

import (
	"testing"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mscore/mstest"
	"github.com/stretchr/testify/require"
)

// flawTask is spec.md §8 scenario S5: 3 variables, singleton pattern
// {goal_var} admits a plan whose first step is inapplicable concretely
// because of a precondition on var_other (var 1); var 2 is inert, present
// only to keep the task at 3 variables.
func flawTask() *mstest.Task {
	return &mstest.Task{
		Domains: []int{2, 2, 2},
		Init:    []int{0, 0, 0},
		Goal:    []mscore.Fact{{Var: 0, Value: 1}},
		Operators: []mscore.Operator{
			{Preconditions: []mscore.Fact{{Var: 0, Value: 0}, {Var: 1, Value: 1}}, Effects: []mscore.Fact{{Var: 0, Value: 1}}, Cost: 1},
			{Preconditions: []mscore.Fact{{Var: 1, Value: 0}}, Effects: []mscore.Fact{{Var: 1, Value: 1}}, Cost: 1},
		},
	}
}

func TestRunGrowsPatternOnConcreteFlaw(t *testing.T) {
	task := flawTask()
	cfg := mscore.CEGARConfig{MaxPDBSize: 100, MaxCollectionSize: 100}
	rng := mstest.NewSeededRNG(1)

	result, err := Run(task, []int{0}, cfg, nil, rng, nil)
	require.NoError(t, err)
	require.True(t, result.HasPlan)
	require.Equal(t, [][]int{{1}, {0}}, result.Plan)
	require.Len(t, result.Patterns, 1)
	require.Equal(t, []int{0, 1}, []int(result.Patterns[0].Pattern))
}

// siblingOpTask mirrors pdb's fixture of the same name: op0 and op1 both
// flip var0 0->1 at cost 1 and so look interchangeable over singleton
// pattern {0}, but only op1 is concretely applicable from the initial
// state (op0 additionally preconditions var1, never set).
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

func TestRunWildcardPlanSkipsInapplicableGenerator(t *testing.T) {
	task := siblingOpTask()
	cfg := mscore.CEGARConfig{MaxPDBSize: 100, MaxCollectionSize: 100, UseWildcardPlans: true}
	rng := mstest.NewSeededRNG(1)

	result, err := Run(task, []int{0}, cfg, nil, rng, nil)
	require.NoError(t, err)
	// The wildcard step offers both op0 (generator, concretely inapplicable)
	// and op1 (sibling, applicable); execution falls through to op1 and
	// solves directly without ever growing the pattern.
	require.True(t, result.HasPlan)
	require.Equal(t, [][]int{{1}}, result.Plan)
	require.Len(t, result.Patterns, 1)
	require.Equal(t, []int{0}, []int(result.Patterns[0].Pattern))
}

func TestRunNonWildcardPlanFlawsOnGeneratorAlone(t *testing.T) {
	task := siblingOpTask()
	cfg := mscore.CEGARConfig{MaxPDBSize: 100, MaxCollectionSize: 100, UseWildcardPlans: false}
	rng := mstest.NewSeededRNG(1)

	result, err := Run(task, []int{0}, cfg, nil, rng, nil)
	require.NoError(t, err)
	// With no sibling to fall through to, op0's own violated precondition on
	// var1 is a genuine flaw, so the pattern grows to cover var1 instead of
	// solving in one step.
	require.Len(t, result.Patterns, 1)
	require.Equal(t, []int{0, 1}, []int(result.Patterns[0].Pattern))
}

func TestRunPreBlacklistedVariableYieldsNoPlan(t *testing.T) {
	task := flawTask()
	cfg := mscore.CEGARConfig{MaxPDBSize: 100, MaxCollectionSize: 100, BlacklistVariable: map[int]bool{1: true}}
	rng := mstest.NewSeededRNG(1)

	result, err := Run(task, []int{0}, cfg, nil, rng, nil)
	require.NoError(t, err)
	// With var 1 blacklisted from the start, its precondition on op0 is
	// never checked, so the single-step plan applies cleanly and reaches a
	// concrete goal state; but reaching that state relied on ignoring a
	// blacklisted variable, so it is not a genuine concrete solution — the
	// pattern is marked solved without a usable plan.
	require.False(t, result.HasPlan)
	require.Len(t, result.Patterns, 1)
	require.True(t, result.Patterns[0].Solved)
}
