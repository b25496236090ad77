package mserr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindsClassifyTheirOwnErrors(t *testing.T) {
	require.True(t, IsUnsolvable(Unsolvable.New("factor 3 has no path to a goal state")))
	require.False(t, IsTimedOut(Unsolvable.New("factor 3 has no path to a goal state")))
}

func TestKindsAreDistinct(t *testing.T) {
	require.False(t, IsSizeLimitExceeded(TimedOut.New("main loop")))
	require.True(t, IsSizeLimitExceeded(SizeLimitExceeded.New("product of size 4e9")))
	require.False(t, IsUnsolvable(SizeLimitExceeded.New("product of size 4e9")))
}

func TestMessageFormatting(t *testing.T) {
	err := UnsupportedTask.New(fmt.Sprintf("operator %q has a negative cost", "drive"))
	require.Contains(t, err.Error(), "drive")
	require.Contains(t, err.Error(), "unsupported task")
}
