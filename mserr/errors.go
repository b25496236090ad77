// Package mserr defines the typed error taxonomy shared by every package in
// this module. Each kind is a gopkg.in/src-d/go-errors.v1 Kind, the idiom
// this lineage's auth package uses for its own error kinds
// (ErrParseUserFile, ErrUnknownPermission, ...): a package-level Kind wraps
// a format string, and call sites produce concrete errors with
// .New(...)/.Is(...).
package mserr

import (
	goerrors "gopkg.in/src-d/go-errors.v1"
)

var (
	// UnsupportedTask is raised once, at task ingestion, when the task
	// carries axioms, conditional effects with a non-empty condition set,
	// or a negative operator cost. Fatal: callers must not proceed.
	UnsupportedTask = goerrors.NewKind("unsupported task: %s")

	// SizeLimitExceeded is raised when a requested product, PDB, or
	// pattern collection would exceed a configured size bound. Recovered
	// locally by shrinking further or abandoning the current merge/growth.
	SizeLimitExceeded = goerrors.NewKind("size limit exceeded: %s")

	// Unsolvable indicates a factor's initial state has infinite distance
	// to any goal. Propagated to the caller; the M&S loop stops early.
	Unsolvable = goerrors.NewKind("unsolvable: %s")

	// TimedOut indicates a cooperative timer tripped. Callers that see this
	// use the best partial result already computed, not an exception path.
	TimedOut = goerrors.NewKind("timed out: %s")

	// InvariantViolation is defensive: reachable only from a programming
	// error (a broken invariant documented in spec.md §3). Never expected
	// in a correct run.
	InvariantViolation = goerrors.NewKind("invariant violation: %s")
)

// IsUnsolvable reports whether err (or any error it wraps) is an Unsolvable.
func IsUnsolvable(err error) bool {
	return Unsolvable.Is(err)
}

// IsTimedOut reports whether err (or any error it wraps) is a TimedOut.
func IsTimedOut(err error) bool {
	return TimedOut.Is(err)
}

// IsSizeLimitExceeded reports whether err is a SizeLimitExceeded.
func IsSizeLimitExceeded(err error) bool {
	return SizeLimitExceeded.Is(err)
}

// IsUnsupportedTask reports whether err is an UnsupportedTask.
func IsUnsupportedTask(err error) bool {
	return UnsupportedTask.Is(err)
}

// IsInvariantViolation reports whether err is an InvariantViolation.
func IsInvariantViolation(err error) bool {
	return InvariantViolation.Is(err)
}
