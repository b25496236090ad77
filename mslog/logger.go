// Package mslog adapts the four verbosity levels named in spec.md §6
// (silent, normal, verbose, debug) onto github.com/sirupsen/logrus, the
// structured logger wired through this lineage's server and audit layers.
// Logger never carries semantic data: callers branch on Kind values from
// package mserr and sizes/timers from their own state, never on a log
// line's content.
package mslog

import (
	"fmt"

	"github.com/sanity-io/litter"
	"github.com/sirupsen/logrus"
)

// Level is one of the four verbosities named in spec.md §6.
type Level int

const (
	Silent Level = iota
	Normal
	Verbose
	Debug
)

func (l Level) String() string {
	switch l {
	case Silent:
		return "silent"
	case Normal:
		return "normal"
	case Verbose:
		return "verbose"
	case Debug:
		return "debug"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// logrusLevel maps a Level onto the logrus level it is reported at.
func (l Level) logrusLevel() logrus.Level {
	switch l {
	case Silent:
		return logrus.PanicLevel // never emitted; see Logger.enabled
	case Normal:
		return logrus.InfoLevel
	case Verbose:
		return logrus.DebugLevel
	case Debug:
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger is the human-readable progress sink named in spec.md §6. It is a
// thin façade over logrus.FieldLogger so construction-time code never
// depends on the concrete logrus.Logger type.
type Logger struct {
	level   Level
	entry   logrus.FieldLogger
	litterC *litter.Options
}

// New builds a Logger at the given verbosity, logging through entry. Pass
// logrus.StandardLogger() for process-wide defaults, or a *logrus.Entry
// pre-populated with fields (e.g. a run correlation id) to scope them.
func New(level Level, entry logrus.FieldLogger) *Logger {
	return &Logger{
		level: level,
		entry: entry,
		litterC: &litter.Options{
			Compact:           true,
			StripPackageNames: true,
		},
	}
}

// WithField returns a Logger scoped to an additional structured field,
// the same way a request-scoped logger is derived from a parent logger.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{level: l.level, entry: l.entry.WithField(key, value), litterC: l.litterC}
}

func (l *Logger) enabled(at Level) bool {
	return l.level >= at
}

// Normalf logs a progress message at Normal verbosity.
func (l *Logger) Normalf(format string, args ...interface{}) {
	if l.enabled(Normal) {
		l.entry.Infof(format, args...)
	}
}

// Verbosef logs a progress message at Verbose verbosity.
func (l *Logger) Verbosef(format string, args ...interface{}) {
	if l.enabled(Verbose) {
		l.entry.Debugf(format, args...)
	}
}

// Debugf logs a progress message at Debug verbosity.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.enabled(Debug) {
		l.entry.Tracef(format, args...)
	}
}

// DebugDump pretty-prints v (via sanity-io/litter) at Debug verbosity only.
// Used for one-shot dumps of internal state — a TransitionSystem, a PDB's
// distance vector — that would be unreadable through logrus' normal
// key/value formatting.
func (l *Logger) DebugDump(label string, v interface{}) {
	if !l.enabled(Debug) {
		return
	}
	l.entry.Tracef("%s:\n%s", label, l.litterC.Sdump(v))
}

// Nop returns a Logger that discards everything, for callers (and most
// tests) that do not want progress output.
func Nop() *Logger {
	base := logrus.New()
	base.SetOutput(discard{})
	return New(Silent, base)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
