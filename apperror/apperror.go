// Package apperror defines the typed error taxonomy shared by all SDK
// services. Every failure surfaced to a caller is an *Error carrying a
// namespace prefix (such as "app", "auth" or "messaging") and a bare
// error code; the public code is "<prefix>/<code>".
//
// Service packages translate raw server error tokens into *Error values
// through the FromXxxServerCode factories. Unrecognized tokens always map
// to the namespace's internal/unknown fallback entry, never to a panic or
// a dropped error.
package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Namespace prefixes for the error taxonomy.
const (
	PrefixApp               = "app"
	PrefixAuth              = "auth"
	PrefixDatabase          = "database"
	PrefixFirestore         = "firestore"
	PrefixInstanceID        = "instance-id"
	PrefixMessaging         = "messaging"
	PrefixProjectManagement = "project-management"
	PrefixSecurityRules     = "security-rules"
)

// Bare codes for the generic "app" namespace.
const (
	CodeInternalError     = "internal-error"
	CodeInvalidArgument   = "invalid-argument"
	CodeInvalidCredential = "invalid-credential"
	CodeNetworkError      = "network-error"
	CodeNetworkTimeout    = "network-timeout"
	CodeParseError        = "parse-error"
)

// ErrorInfo pairs a bare error code with its human-readable default message.
type ErrorInfo struct {
	Code    string
	Message string
}

// Error is the uniform SDK error value. The zero value is not useful;
// construct errors with New, Newf or a service factory.
type Error struct {
	prefix  string
	code    string
	message string
	cause   error
}

// New creates an error in the given namespace with a bare code and message.
func New(prefix, code, message string) *Error {
	return &Error{prefix: prefix, code: code, message: message}
}

// Newf creates an error with a formatted message.
func Newf(prefix, code, format string, args ...any) *Error {
	return &Error{prefix: prefix, code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error that records an underlying cause, reachable
// through errors.Unwrap / errors.Is.
func Wrap(prefix, code, message string, cause error) *Error {
	return &Error{prefix: prefix, code: code, message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.CodeString(), e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.CodeString(), e.message)
}

// Prefix returns the namespace prefix, such as "auth".
func (e *Error) Prefix() string { return e.prefix }

// Code returns the bare, namespace-free code, such as "user-not-found".
func (e *Error) Code() string { return e.code }

// CodeString returns the public, namespaced code: "<prefix>/<code>".
func (e *Error) CodeString() string { return e.prefix + "/" + e.code }

// Message returns the human-readable message without the code prefix.
func (e *Error) Message() string { return e.message }

// HasCode reports whether the error's full code equals "<prefix>/<bare>"
// for the error's own prefix. It lets callers test the bare code without
// knowing which service namespace produced the error.
func (e *Error) HasCode(bare string) bool {
	return e.CodeString() == e.prefix+"/"+bare
}

func (e *Error) Unwrap() error { return e.cause }

// HasCode reports whether err is (or wraps) an *Error with the given bare
// code, irrespective of namespace.
func HasCode(err error, bare string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.HasCode(bare)
	}
	return false
}

// CodeOf returns the full namespaced code of err if it is (or wraps) an
// *Error, and "" otherwise.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.CodeString()
	}
	return ""
}

// codeTable is the per-namespace translation table from raw server error
// tokens to ErrorInfo entries. Tables are pure static data.
type codeTable struct {
	prefix   string
	entries  map[string]ErrorInfo
	fallback ErrorInfo
}

// translate maps a raw server error token to a typed error.
//
// Tokens of the form "CODE: detail" are split on the first colon; the left
// side drives the table lookup and the right side replaces the table's
// generic default message. An explicit override message wins over both.
// Unrecognized tokens fall back to the namespace's internal/unknown entry,
// and only in that case the raw server response is appended to the message
// (serialization failures are ignored).
func (t codeTable) translate(serverCode, override string, raw any) *Error {
	code := strings.TrimSpace(serverCode)
	detail := ""
	if i := strings.Index(code, ":"); i >= 0 {
		detail = strings.TrimSpace(code[i+1:])
		code = strings.TrimSpace(code[:i])
	}

	info, known := t.entries[code]
	if !known {
		info = t.fallback
	}

	message := info.Message
	if detail != "" {
		message = detail
	}
	if override != "" {
		message = override
	}
	if !known && raw != nil {
		if b, err := json.Marshal(raw); err == nil {
			message = fmt.Sprintf("%s Raw server response: %s", message, string(b))
		}
	}
	return New(t.prefix, info.Code, message)
}
