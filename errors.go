// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package mpart

// ParseError is the type used for all error codes returned by the parser.
// Zero value (ErrOK) means "no error".
type ParseError uint8

// error codes
const (
	ErrOK ParseError = iota
	ErrPaused
	ErrInterrupted
	ErrUnknown
	ErrBoundaryExceeded
	ErrBoundaryTooLong
	ErrInvalidState
	ErrInvalidHeaderField
	ErrInvalidHeaderValue
	ErrInvalidBoundary
	ErrMemoryLimitExceeded
	ErrCallbackError
	errMax // must be last
)

// pretty messages for debugging and error reporting
var parseErrStr = [...]string{
	ErrOK:                  "ok",
	ErrPaused:              "paused",
	ErrInterrupted:         "interrupted",
	ErrUnknown:             "unknown error",
	ErrBoundaryExceeded:    "boundary exceeded",
	ErrBoundaryTooLong:     "boundary too long",
	ErrInvalidState:        "invalid state",
	ErrInvalidHeaderField:  "invalid header field",
	ErrInvalidHeaderValue:  "invalid header value",
	ErrInvalidBoundary:     "invalid boundary",
	ErrMemoryLimitExceeded: "memory limit exceeded",
	ErrCallbackError:       "callback error",
}

// String implements the Stringer interface.
func (e ParseError) String() string {
	if int(e) >= len(parseErrStr) {
		return "unknown error"
	}
	return parseErrStr[e]
}

// Error implements the error interface, so a ParseError can be used
// anywhere a plain Go error is expected (e.g. returned from the cmd/
// tools).
func (e ParseError) Error() string {
	return e.String()
}

// OK returns true if the error code represents success.
func (e ParseError) OK() bool {
	return e == ErrOK
}

// Fatal returns true if the error halts the parser until Reset.
// Paused and Interrupted are recoverable without a Reset (a pause can be
// cleared with Resume(); Interrupted only ever occurs in Collect(), which
// owns no persistent state to begin with).
func (e ParseError) Fatal() bool {
	switch e {
	case ErrOK, ErrPaused, ErrInterrupted:
		return false
	default:
		return true
	}
}
