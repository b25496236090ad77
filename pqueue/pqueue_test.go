package pqueue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPopsInKeyOrder(t *testing.T) {
	q := New[string]()
	q.Push(5, "five")
	q.Push(1, "one")
	q.Push(3, "three")
	q.Push(1, "one-b")

	require.Equal(t, 4, q.Len())

	var keys []int
	for !q.Empty() {
		k, _ := q.Pop()
		keys = append(keys, k)
	}
	require.Equal(t, []int{1, 1, 3, 5}, keys)
}

func TestSwitchesToHeapUnderSparseKeys(t *testing.T) {
	q := New[int]()
	// Dense small keys: must not switch.
	for i := 0; i < 20; i++ {
		q.Push(i%3, i)
	}
	require.True(t, q.useBuckets)

	// One very large key makes the ratio sparse; this must trigger the
	// one-way switch to the heap representation.
	q.Push(10000, 999)
	require.False(t, q.useBuckets)

	// After switching, ordering is still correct.
	min, _ := q.Pop()
	require.Equal(t, 0, min)
}

func TestClearKeepsStorageReusable(t *testing.T) {
	q := New[int]()
	q.Push(2, 1)
	q.Push(4, 2)
	q.Clear()
	require.True(t, q.Empty())
	require.Equal(t, 0, q.Len())

	q.Push(1, 42)
	k, v := q.Pop()
	require.Equal(t, 1, k)
	require.Equal(t, 42, v)
}

func TestPopOnEmptyPanics(t *testing.T) {
	q := New[int]()
	require.Panics(t, func() { q.Pop() })
}
