// Package mstest provides deterministic fakes for the external collaborator
// interfaces in package mscore, in the enginetest-Harness style of an
// in-memory stand-in for a real engine dependency in tests.
package mstest

import (
	"math/rand"
	"time"

	"github.com/aibasel/downward-sub002/mscore"
)

// Task is an in-memory, hand-buildable mscore.TaskView for tests.
type Task struct {
	Domains   []int
	Init      []int
	Goal      []mscore.Fact
	Operators []mscore.Operator
}

func (t *Task) NumVariables() int           { return len(t.Domains) }
func (t *Task) Domain(v int) int            { return t.Domains[v] }
func (t *Task) InitialValue(v int) int      { return t.Init[v] }
func (t *Task) Goals() []mscore.Fact        { return t.Goal }
func (t *Task) NumOperators() int           { return len(t.Operators) }
func (t *Task) Operator(i int) mscore.Operator { return t.Operators[i] }

var _ mscore.TaskView = (*Task)(nil)

// FixedClock advances only when Advance is called, giving tests exact
// control over cooperative timer checks (spec.md §5, §8 "Timer honesty").
type FixedClock struct {
	d time.Duration
}

func NewFixedClock() *FixedClock { return &FixedClock{} }

func (c *FixedClock) Now() time.Duration { return c.d }

func (c *FixedClock) Advance(d time.Duration) { c.d += d }

// SeededRNG wraps math/rand behind mscore.RNG so a fixed seed reproduces a
// bit-identical sequence of draws, satisfying spec.md §5's determinism
// guarantee in tests.
type SeededRNG struct {
	r *rand.Rand
}

func NewSeededRNG(seed int64) *SeededRNG {
	return &SeededRNG{r: rand.New(rand.NewSource(seed))}
}

func (s *SeededRNG) NextUint(bound int) int {
	if bound <= 0 {
		panic("mstest: NextUint bound must be positive")
	}
	return s.r.Intn(bound)
}

func (s *SeededRNG) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}

var _ mscore.RNG = (*SeededRNG)(nil)
