// Package logger defines the structured logging contract used across the SDK
// and provides a zerolog-backed implementation of it.
package logger

import "time"

// Logger is the contract for structured logging throughout the SDK.
// Service clients and the transport layer receive a Logger at
// construction time and never log through a global.
type Logger interface {
	Info() LogEvent
	Error() LogEvent
	Debug() LogEvent
	Warn() LogEvent
	WithFields(fields map[string]any) Logger
}

// LogEvent represents a structured log event that is built up with fields
// and then sent with Msg or Msgf.
type LogEvent interface {
	Msg(msg string)
	Msgf(format string, args ...any)
	Err(err error) LogEvent
	Str(key, value string) LogEvent
	Int(key string, value int) LogEvent
	Bool(key string, value bool) LogEvent
	Int64(key string, value int64) LogEvent
	Dur(key string, d time.Duration) LogEvent
	Interface(key string, i any) LogEvent
	Bytes(key string, val []byte) LogEvent
}
