// Package logging provides the project's zerolog-backed logger: a console stream for
// human-readable output plus any number of structured writers, with per-package
// sub-loggers carrying a key-value context.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and enabled when the CLI
// boots. Each package should derive its own sub-logger from it so log lines can be
// filtered by origin.
var GlobalLogger = NewLogger(zerolog.Disabled)

// LogFormat describes what format a writer receives.
type LogFormat string

const (
	// STRUCTURED describes structured JSON output.
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes human-readable console-style output.
	UNSTRUCTURED LogFormat = "unstructured"
)

// Logger describes a logging object that writes human-readable output to console and
// structured output to any number of additional writers.
type Logger struct {
	// level describes the log level applied to every output.
	level zerolog.Level

	// structuredLogger describes the logger feeding the structured writers.
	structuredLogger zerolog.Logger

	// consoleLogger describes the logger feeding human-readable console output.
	consoleLogger zerolog.Logger

	// structuredWriters describes the writers receiving structured output.
	structuredWriters []io.Writer
}

// NewLogger returns a Logger with the provided level and no outputs. Outputs are added
// with AddWriter and EnableConsole.
func NewLogger(level zerolog.Level) *Logger {
	// Both base loggers start disabled; they are swapped out as outputs are attached.
	disabled := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	return &Logger{
		level:            level,
		structuredLogger: disabled,
		consoleLogger:    disabled,
	}
}

// NewSubLogger returns a Logger carrying an additional key-value context on every line,
// sharing this logger's outputs.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	return &Logger{
		level:             l.level,
		structuredLogger:  l.structuredLogger.With().Str(key, value).Logger(),
		consoleLogger:     l.consoleLogger.With().Str(key, value).Logger(),
		structuredWriters: l.structuredWriters,
	}
}

// EnableConsole attaches a console-formatted output stream to stdout.
func (l *Logger) EnableConsole() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, PartsExclude: []string{"time"}}
	l.consoleLogger = zerolog.New(consoleWriter).Level(l.level)
}

// AddWriter attaches a writer receiving output in the provided format. Adding a writer
// twice is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat) {
	if format == UNSTRUCTURED {
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: true}
	}
	for _, existing := range l.structuredWriters {
		if existing == writer {
			return
		}
	}
	l.structuredWriters = append(l.structuredWriters, writer)
	l.structuredLogger = zerolog.New(zerolog.MultiLevelWriter(l.structuredWriters...)).Level(l.level).With().Timestamp().Logger()
}

// Level returns the log level of the Logger.
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel updates the log level of the Logger and all of its outputs.
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.structuredLogger = l.structuredLogger.Level(level)
	l.consoleLogger = l.consoleLogger.Level(level)
}

// Trace logs a trace event.
func (l *Logger) Trace(args ...any) {
	l.log(l.consoleLogger.Trace(), l.structuredLogger.Trace(), args...)
}

// Debug logs a debug event.
func (l *Logger) Debug(args ...any) {
	l.log(l.consoleLogger.Debug(), l.structuredLogger.Debug(), args...)
}

// Info logs an info event.
func (l *Logger) Info(args ...any) {
	l.log(l.consoleLogger.Info(), l.structuredLogger.Info(), args...)
}

// Warn logs a warning event.
func (l *Logger) Warn(args ...any) {
	l.log(l.consoleLogger.Warn(), l.structuredLogger.Warn(), args...)
}

// Error logs an error event.
func (l *Logger) Error(args ...any) {
	l.log(l.consoleLogger.Error(), l.structuredLogger.Error(), args...)
}

// Panic logs a panic event and panics.
func (l *Logger) Panic(args ...any) {
	message, err := buildMessage(args...)
	if err != nil {
		l.structuredLogger.Panic().Err(err).Msg(message)
	}
	l.consoleLogger.Panic().Msg(message)
}

// log assembles one message from the provided arguments and sends it to both outputs.
// An error argument is attached as structured context rather than flattened into the
// message text.
func (l *Logger) log(consoleEvent *zerolog.Event, structuredEvent *zerolog.Event, args ...any) {
	message, err := buildMessage(args...)
	if err != nil {
		consoleEvent = consoleEvent.Err(err)
		structuredEvent = structuredEvent.Err(err)
	}
	consoleEvent.Msg(message)
	structuredEvent.Msg(message)
}

// buildMessage flattens the provided arguments into one message string, pulling out the
// last error argument, if any, for structured attachment.
func buildMessage(args ...any) (string, error) {
	var parts []string
	var lastError error
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			lastError = err
			continue
		}
		parts = append(parts, fmt.Sprintf("%v", arg))
	}
	return strings.Join(parts, ""), lastError
}
