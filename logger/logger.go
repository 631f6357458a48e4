package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog *zerolog.Logger
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

// New creates a new ZeroLogger writing to stdout at the given level.
// If pretty is true, output is formatted for human readability.
// An unparsable level falls back to info.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithOutput(level, pretty, os.Stdout)
}

// NewWithOutput creates a new ZeroLogger writing to the given writer.
func NewWithOutput(level string, pretty bool, out io.Writer) *ZeroLogger {
	var l zerolog.Logger

	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(out).With().Timestamp().Logger()
	}

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l}
}

// Disabled returns a logger that discards everything. Useful in tests and
// as the default when no logger is configured.
func Disabled() *ZeroLogger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l}
}

// WithFields returns a logger with additional fields attached to all entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log}
}

// Info creates an info-level log event
func (l *ZeroLogger) Info() LogEvent {
	return &logEventAdapter{event: l.zlog.Info()}
}

// Error creates an error-level log event
func (l *ZeroLogger) Error() LogEvent {
	return &logEventAdapter{event: l.zlog.Error()}
}

// Debug creates a debug-level log event
func (l *ZeroLogger) Debug() LogEvent {
	return &logEventAdapter{event: l.zlog.Debug()}
}

// Warn creates a warning-level log event
func (l *ZeroLogger) Warn() LogEvent {
	return &logEventAdapter{event: l.zlog.Warn()}
}

// logEventAdapter adapts zerolog events to the LogEvent interface
type logEventAdapter struct {
	event *zerolog.Event
}

func (a *logEventAdapter) Msg(msg string) {
	a.event.Msg(msg)
}

func (a *logEventAdapter) Msgf(format string, args ...any) {
	a.event.Msgf(format, args...)
}

func (a *logEventAdapter) Err(err error) LogEvent {
	return &logEventAdapter{event: a.event.Err(err)}
}

func (a *logEventAdapter) Str(key, value string) LogEvent {
	return &logEventAdapter{event: a.event.Str(key, value)}
}

func (a *logEventAdapter) Int(key string, value int) LogEvent {
	return &logEventAdapter{event: a.event.Int(key, value)}
}

func (a *logEventAdapter) Bool(key string, value bool) LogEvent {
	return &logEventAdapter{event: a.event.Bool(key, value)}
}

func (a *logEventAdapter) Int64(key string, value int64) LogEvent {
	return &logEventAdapter{event: a.event.Int64(key, value)}
}

func (a *logEventAdapter) Dur(key string, d time.Duration) LogEvent {
	return &logEventAdapter{event: a.event.Dur(key, d)}
}

func (a *logEventAdapter) Interface(key string, i any) LogEvent {
	return &logEventAdapter{event: a.event.Interface(key, i)}
}

func (a *logEventAdapter) Bytes(key string, val []byte) LogEvent {
	return &logEventAdapter{event: a.event.Bytes(key, val)}
}
