package mscore

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ShrinkStrategyKind tags which ShrinkStrategy variant a Config selects
// (spec.md §6, §4.7). Modeled as a tagged enum rather than a dynamic-dispatch
// plugin, per spec.md §9 "Dynamic dispatch over strategies".
type ShrinkStrategyKind int

const (
	ShrinkFPreserving ShrinkStrategyKind = iota
	ShrinkRandom
	ShrinkBisimulation
)

// FPreference and HPreference order the f-preserving shrink strategy's
// buckets (spec.md §4.7 "f-preserving").
type FPreference int

const (
	PreferHighF FPreference = iota
	PreferLowF
)

type HPreference int

const (
	PreferHighH HPreference = iota
	PreferLowH
)

// AtLimitPolicy governs bisimulation shrinking once the target size bound
// would otherwise be exceeded (spec.md §4.7 "exact").
type AtLimitPolicy int

const (
	AtLimitReturn AtLimitPolicy = iota
	AtLimitUseUp
)

// ShrinkConfig configures ShrinkStrategy construction (spec.md §6).
type ShrinkConfig struct {
	Kind ShrinkStrategyKind

	// FPreserving fields.
	PreferF FPreference
	PreferH HPreference

	// Bisimulation fields.
	Greedy  bool
	AtLimit AtLimitPolicy
}

// MergeStrategyKind tags which MergeStrategy variant a Config selects
// (spec.md §4.8).
type MergeStrategyKind int

const (
	MergePrecomputedTree MergeStrategyKind = iota
	MergeStateless
)

// LinearVariableOrder selects how a precomputed merge tree orders leaves
// (spec.md §4.8 "linear order variants").
type LinearVariableOrder int

const (
	OrderRegular LinearVariableOrder = iota
	OrderReverseLevel
	OrderLevel
	OrderRandom
)

// ScorerKind tags one scoring function in a stateless MergeStrategy's
// ordered scorer list (spec.md §4.8).
type ScorerKind int

const (
	ScoreGoalRelevance ScorerKind = iota
	ScoreDFP
	ScoreMIASM
	ScoreTotalOrder
	ScoreSingleRandom
	ScoreTiebreakingRandom
)

// MergeConfig configures MergeStrategy construction.
type MergeConfig struct {
	Kind MergeStrategyKind

	// PrecomputedTree fields.
	LinearOrder LinearVariableOrder

	// Stateless fields: scorers are applied in order; ties after the last
	// scorer must be broken uniquely (spec.md §4.8).
	Scorers []ScorerKind
}

// LabelReductionMethod selects how label reduction is orchestrated across
// factors (spec.md §4.6).
type LabelReductionMethod int

const (
	ReduceTwoFactor LabelReductionMethod = iota
	ReduceAllFactors
	ReduceAllFactorsFixpoint
)

// FactorOrder selects the order all-factors label reduction visits factors.
type FactorOrder int

const (
	FactorOrderRegular FactorOrder = iota
	FactorOrderReverse
	FactorOrderRandom
)

// LabelReductionConfig configures label reduction (spec.md §6).
// Enabled == false means "none".
type LabelReductionConfig struct {
	Enabled         bool
	BeforeShrinking bool
	BeforeMerging   bool
	Method          LabelReductionMethod
	Order           FactorOrder
}

// Config is populated by an external option parser (out of scope per
// spec.md §1) and read by MSAlgorithm. Mirrors sqle.Config's role in the
// teacher codebase: a single plain struct, validated once at construction,
// never mutated afterwards.
type Config struct {
	MaxStatesAfterMerge  uint64
	MaxStatesBeforeMerge uint64
	ShrinkThreshold      uint64

	PruneUnreachable bool
	PruneIrrelevant  bool

	Shrink ShrinkConfig
	Merge  MergeConfig

	LabelReduction LabelReductionConfig

	// MainLoopMaxTime is the wall-clock budget for the MSAlgorithm main
	// loop (spec.md §4.9, §5). Zero means unbounded.
	MainLoopMaxTime time.Duration

	CEGAR CEGARConfig
}

// CEGARConfig configures the CEGAR pattern-collection generator (spec.md
// §4.11, §4.12).
type CEGARConfig struct {
	MaxPDBSize        int
	MaxCollectionSize int
	MaxTime           time.Duration
	UseWildcardPlans  bool
	RandomSeed        int64
	BlacklistVariable map[int]bool

	// Multiple-CEGAR (spec.md §4.12).
	StagnationLimit time.Duration
}

// Validate checks the constraints named in spec.md §6
// ("threshold <= max_states_after_merge", each bound >= 1).
func (c Config) Validate() error {
	if c.MaxStatesAfterMerge < 1 {
		return errors.New("config: max_states_after_merge must be >= 1")
	}
	if c.MaxStatesBeforeMerge < 1 {
		return errors.New("config: max_states_before_merge must be >= 1")
	}
	if c.ShrinkThreshold < 1 {
		return errors.New("config: shrink_threshold must be >= 1")
	}
	if c.ShrinkThreshold > c.MaxStatesAfterMerge {
		return errors.New("config: shrink_threshold must be <= max_states_after_merge")
	}
	return nil
}

// RunID correlates the log lines of a single MSAlgorithm or CEGAR run, the
// same way a server layer tags a session or query with a correlation id.
type RunID string

// NewRunID mints a fresh correlation id.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}
