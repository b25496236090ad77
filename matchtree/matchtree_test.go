package matchtree

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplicableMatchesExactAndWildcard(t *testing.T) {
	ops := []Operator{
		{ID: 0, Preconditions: []Precond{{PatternIndex: 0, Value: 1}}},
		{ID: 1, Preconditions: []Precond{{PatternIndex: 1, Value: 2}}},
		{ID: 2, Preconditions: nil}, // matches every state (all wildcard)
		{ID: 3, Preconditions: []Precond{{PatternIndex: 0, Value: 1}, {PatternIndex: 1, Value: 2}}},
	}
	tree := Build(2, ops)

	state := map[int]int{0: 1, 1: 2}
	got := tree.Applicable(func(i int) int { return state[i] })
	sort.Ints(got)
	require.Equal(t, []int{0, 1, 2, 3}, got)

	state2 := map[int]int{0: 0, 1: 2}
	got2 := tree.Applicable(func(i int) int { return state2[i] })
	sort.Ints(got2)
	require.Equal(t, []int{1, 2}, got2)
}

func TestEmptyPatternMatchesEverythingAgainstUnconditionalOps(t *testing.T) {
	ops := []Operator{{ID: 0}, {ID: 1}}
	tree := Build(0, ops)
	got := tree.Applicable(func(int) int { return 0 })
	sort.Ints(got)
	require.Equal(t, []int{0, 1}, got)
}
