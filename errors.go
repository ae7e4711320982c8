package httpagent

import (
	"fmt"
	"runtime"
)

// ErrorCode wraps a backend-native error plus the source location
// where it was produced. The zero value denotes "no error".
type ErrorCode struct {
	message string
	file    string
	line    int
}

// newErrorCode captures its immediate caller — i.e. the frame that
// detected the failure — as the error's source location.
func newErrorCode(message string) ErrorCode {
	_, file, line, _ := runtime.Caller(1)
	return ErrorCode{message: message, file: file, line: line}
}

// errorCodeFromErr wraps a Go error as an ErrorCode, preserving err's
// message and capturing the caller's location.
func errorCodeFromErr(err error) ErrorCode {
	if err == nil {
		return ErrorCode{}
	}
	_, file, line, _ := runtime.Caller(1)
	return ErrorCode{message: err.Error(), file: file, line: line}
}

// IsNone reports whether this ErrorCode denotes "no error".
func (e ErrorCode) IsNone() bool { return e.message == "" }

// String stringifies the error, including its source location when
// known.
func (e ErrorCode) String() string {
	if e.IsNone() {
		return "<no error>"
	}
	if e.file == "" {
		return e.message
	}
	return fmt.Sprintf("%s (%s:%d)", e.message, e.file, e.line)
}

// ErrURLMalformed is the canonical code surfaced when a request is
// attempted against a UrlInfo that failed to parse.
var ErrURLMalformed = ErrorCode{message: "url malformed"}
