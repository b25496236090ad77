package pattern

import (
	"testing"

	"github.com/aibasel/downward-sub002/mserr"
	"github.com/stretchr/testify/require"
)

func domains(sizes []int) func(int) int {
	return func(v int) int { return sizes[v] }
}

func TestRankUnrankIsBijective(t *testing.T) {
	sizes := []int{2, 3, 4}
	p := Pattern{0, 1, 2}
	h, err := New(p, domains(sizes))
	require.NoError(t, err)
	require.Equal(t, 24, h.Size())

	seen := make(map[int]bool)
	for a := 0; a < sizes[0]; a++ {
		for b := 0; b < sizes[1]; b++ {
			for c := 0; c < sizes[2]; c++ {
				assignment := map[int]int{0: a, 1: b, 2: c}
				rank := h.Rank(func(v int) int { return assignment[v] })
				require.False(t, seen[rank], "rank %d produced twice", rank)
				seen[rank] = true
				require.True(t, rank >= 0 && rank < h.Size())

				facts := h.Unrank(rank, domains(sizes))
				require.Equal(t, []int{a, b, c}, []int{facts[0].Value, facts[1].Value, facts[2].Value})
			}
		}
	}
	require.Len(t, seen, 24)
}

func TestPatternSubsetOfVariables(t *testing.T) {
	sizes := []int{2, 5, 3, 2}
	p := Pattern{1, 3}
	h, err := New(p, domains(sizes))
	require.NoError(t, err)
	require.Equal(t, 10, h.Size())
	require.Equal(t, 0, h.IndexOf(1))
	require.Equal(t, 1, h.IndexOf(3))
	require.Equal(t, -1, h.IndexOf(2))
}

func TestTooLargeIsRejected(t *testing.T) {
	sizes := make([]int, 20)
	pat := make(Pattern, 20)
	for i := range sizes {
		sizes[i] = 1000
		pat[i] = i
	}
	_, err := New(pat, domains(sizes))
	require.Error(t, err)
	require.True(t, mserr.IsSizeLimitExceeded(err))
}

func TestSortedDeduplicates(t *testing.T) {
	require.Equal(t, Pattern{1, 2, 5}, Sorted([]int{5, 2, 1, 2}))
}
