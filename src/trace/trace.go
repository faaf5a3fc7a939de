/*
 * corevm - a Java virtual machine execution core
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package trace is the core's single logging choke point. Every subsystem
// logs through Trace/Warning/Error rather than reaching for zerolog
// directly, so the destination and format can change (e.g. to a JSON sink
// under a supervisor) without touching callers.
package trace

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	initOnce sync.Once
	logger   zerolog.Logger
)

// Init wires the process-wide logger. Safe to call more than once; only the
// first call has effect. Called lazily by the first log call if a caller
// never invokes it explicitly (mirrors the teacher's log.Init()/log.SetLogLevel
// pattern, minus the global mutable level enum).
func Init() {
	initOnce.Do(func() {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
		logger = zerolog.New(writer).With().Timestamp().Logger()
	})
}

func ensure() {
	initOnce.Do(func() {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
		logger = zerolog.New(writer).With().Timestamp().Logger()
	})
}

// Trace logs a fine-grained diagnostic message. Callers are expected to
// gate expensive Trace calls behind a globals.Trace* flag, as the teacher
// does (e.g. `if globals.TraceClass { trace.Trace(...) }`).
func Trace(msg string) {
	ensure()
	logger.Debug().Msg(msg)
}

// Warning logs a recoverable anomaly.
func Warning(msg string) {
	ensure()
	logger.Warn().Msg(msg)
}

// Error logs a failure that will be surfaced to Java as an exception or
// that aborts the operation in progress.
func Error(msg string) {
	ensure()
	logger.Error().Msg(msg)
}

// Fatal logs an invariant violation the core cannot recover from. It does
// not itself exit the process — callers decide whether to call
// shutdown.Exit, keeping trace free of control-flow side effects. (zerolog's
// own Fatal level calls os.Exit internally, which is why this uses Error
// level with an explicit marker field instead.)
func Fatal(msg string) {
	ensure()
	logger.Error().Bool("fatal", true).Msg(msg)
}

// SetLevel adjusts the minimum level emitted; it exists mainly so tests can
// silence Debug-level chatter.
func SetLevel(level zerolog.Level) {
	ensure()
	logger = logger.Level(level)
}
