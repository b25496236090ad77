package factored

import (
	"testing"

	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/mscore/mstest"
	"github.com/stretchr/testify/require"
)

func threeOpTask() *mstest.Task {
	return &mstest.Task{
		Domains: []int{2, 2},
		Init:    []int{0, 0},
		Goal:    []mscore.Fact{{Var: 0, Value: 1}, {Var: 1, Value: 1}},
		Operators: []mscore.Operator{
			{Preconditions: []mscore.Fact{{Var: 0, Value: 0}}, Effects: []mscore.Fact{{Var: 0, Value: 1}}, Cost: 1},
			{Preconditions: []mscore.Fact{{Var: 1, Value: 0}}, Effects: []mscore.Fact{{Var: 1, Value: 1}}, Cost: 1},
			{Preconditions: []mscore.Fact{{Var: 0, Value: 0}}, Effects: []mscore.Fact{{Var: 0, Value: 1}}, Cost: 1},
		},
	}
}

func TestCreateAtomicBuildsOneFactorPerVariable(t *testing.T) {
	task := threeOpTask()
	sys, err := CreateAtomic(task, nil)
	require.NoError(t, err)
	require.Equal(t, 2, sys.NumActive())
	require.Equal(t, 3, sys.LS.NumLabels())
}

func TestMergeRemovesInputsAndAddsProduct(t *testing.T) {
	task := threeOpTask()
	sys, err := CreateAtomic(task, nil)
	require.NoError(t, err)

	newIdx, err := sys.Merge(0, 1)
	require.NoError(t, err)
	require.Equal(t, 2, newIdx)
	require.Equal(t, []int{2}, sys.Active())
	require.Nil(t, sys.Get(0))
	require.Nil(t, sys.Get(1))
	require.Equal(t, 4, sys.Get(2).NumStates())
}

func TestReduceAllMergesOutsideEquivalentLabels(t *testing.T) {
	task := threeOpTask()
	sys, err := CreateAtomic(task, nil)
	require.NoError(t, err)

	before := sys.LS.NumLabels()
	err = sys.ReduceAll(mscore.FactorOrderRegular, nil)
	require.NoError(t, err)
	require.Greater(t, sys.LS.NumLabels(), before)

	active := sys.LS.ActiveLabels()
	require.Len(t, active, 2) // labels 0 and 2 (identical everywhere) collapse; label 1 stays distinct
}

func TestCreateAtomicTickErrorStopsEarly(t *testing.T) {
	task := threeOpTask()
	calls := 0
	sys, err := CreateAtomic(task, func() error {
		calls++
		if calls == 1 {
			return require.AnError
		}
		return nil
	})
	require.Error(t, err)
	require.Equal(t, 1, sys.NumActive())
}
