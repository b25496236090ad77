package shrink

import (
	"github.com/aibasel/downward-sub002/mscore"
	"github.com/aibasel/downward-sub002/transition"
)

// bucketMerge implements the Bucketed base class's algorithm (spec.md
// §4.7): buckets is an ordered list of state-id groups, highest priority
// first. Repeatedly merges two random states inside the lowest-priority
// bucket holding at least two distinct classes; if no such bucket exists,
// merges the two lowest-priority buckets instead. Stops once exactly
// target classes remain.
func bucketMerge(buckets [][]int, numStates, target int, rng mscore.RNG) ([]int, int) {
	classOf := make([]int, numStates)
	for i := range classOf {
		classOf[i] = i
	}
	bucketStates := make([][]int, len(buckets))
	for i, b := range buckets {
		bucketStates[i] = append([]int(nil), b...)
	}
	alive := make([]int, len(buckets))
	for i := range alive {
		alive[i] = i
	}

	classCount := numStates
	for classCount > target {
		merged := false
		for i := len(alive) - 1; i >= 0; i-- {
			b := alive[i]
			roots := distinctRoots(bucketStates[b], classOf)
			if len(roots) >= 2 {
				i1 := rng.NextUint(len(roots))
				i2 := rng.NextUint(len(roots) - 1)
				if i2 >= i1 {
					i2++
				}
				union(classOf, roots[i1], roots[i2])
				classCount--
				merged = true
				break
			}
		}
		if merged {
			continue
		}
		if len(alive) < 2 {
			break // cannot shrink further: every bucket is already a single class
		}
		last := alive[len(alive)-1]
		secondLast := alive[len(alive)-2]
		bucketStates[secondLast] = append(bucketStates[secondLast], bucketStates[last]...)
		alive = alive[:len(alive)-1]
	}
	return renumberClasses(classOf, numStates)
}

func distinctRoots(states []int, classOf []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, s := range states {
		r := find(classOf, s)
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func find(classOf []int, x int) int {
	for classOf[x] != x {
		classOf[x] = classOf[classOf[x]]
		x = classOf[x]
	}
	return x
}

func union(classOf []int, a, b int) {
	ra, rb := find(classOf, a), find(classOf, b)
	if ra != rb {
		classOf[rb] = ra
	}
}

func renumberClasses(classOf []int, n int) ([]int, int) {
	idToClass := make(map[int]int)
	out := make([]int, n)
	next := 0
	for s := 0; s < n; s++ {
		r := find(classOf, s)
		c, ok := idToClass[r]
		if !ok {
			c = next
			idToClass[r] = c
			next++
		}
		out[s] = c
	}
	return out, next
}

// randomStrategy puts every state in a single bucket (spec.md §4.7
// "random").
type randomStrategy struct{}

func (randomStrategy) ComputePartition(ts *transition.TransitionSystem, target, threshold int, rng mscore.RNG) ([]int, int, bool) {
	n := ts.NumStates()
	if !needsShrink(n, target, threshold) {
		return nil, 0, false
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	class, numClasses := bucketMerge([][]int{all}, n, target, rng)
	return class, numClasses, true
}

// fKey is the (f, h) bucket key used by the f-preserving strategy.
type fKey struct{ f, h int }

// fPreservingStrategy buckets live (non-dead) states by (f, h) = (g+h, h),
// ordered by the configured high/low preference on f then h; dead states
// form one additional, lowest-priority bucket (spec.md §4.7
// "f-preserving").
type fPreservingStrategy struct {
	preferF mscore.FPreference
	preferH mscore.HPreference
}

func (s fPreservingStrategy) ComputePartition(ts *transition.TransitionSystem, target, threshold int, rng mscore.RNG) ([]int, int, bool) {
	n := ts.NumStates()
	if !needsShrink(n, target, threshold) {
		return nil, 0, false
	}
	dist := ts.Distances()
	dead := dist.ToBePruned()

	byKey := make(map[fKey][]int)
	var deadStates []int
	for state := 0; state < n; state++ {
		if dead[state] {
			deadStates = append(deadStates, state)
			continue
		}
		g, h := dist.InitD(state), dist.GoalD(state)
		byKey[fKey{f: g + h, h: h}] = append(byKey[fKey{f: g + h, h: h}], state)
	}

	less := func(a, b fKey) bool {
		if a.f != b.f {
			if s.preferF == mscore.PreferHighF {
				return a.f > b.f
			}
			return a.f < b.f
		}
		if s.preferH == mscore.PreferHighH {
			return a.h > b.h
		}
		return a.h < b.h
	}
	keys := sortKeys(byKey, less)

	buckets := make([][]int, 0, len(keys)+1)
	for _, k := range keys {
		buckets = append(buckets, byKey[k])
	}
	if len(deadStates) > 0 {
		buckets = append(buckets, deadStates)
	}

	class, numClasses := bucketMerge(buckets, n, target, rng)
	return class, numClasses, true
}
