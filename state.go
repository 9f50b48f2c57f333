// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package mpart

// parserState is the type used to hold the parser's current state. Every
// transition is driven by exactly one input byte (see Execute in
// parser.go).
type parserState uint8

// Parsing states.
//
// sPreamble and sFirstBoundary together implement the grammar's
// preamble/first-boundary phase: bytes are scanned for the opening
// "--boundary" from the very first byte (the first delimiter has no
// required leading CRLF); sPreamble is the sub-phase where no byte of
// "--boundary" has matched yet (these are the discarded preamble bytes),
// sFirstBoundary is the sub-phase where some prefix of "--boundary" has
// already matched. The zero value is sPreamble; resetState also seeds the
// match index to firstBoundaryStart so that the opening "--boundary"
// matches without a leading CRLF.
const (
	sPreamble parserState = iota
	sFirstBoundary
	sAfterBoundary
	sHdrFieldStart
	sHdrField
	sHdrValueStart
	sHdrValue
	sHdrValueAlmostDone
	sHdrsAlmostDone
	sPartData
	sPartDataAlmostBoundary
	sPartDataBoundary
	sPartDataAlmostEnd
	sPartDataEnd
	sBodyEnd
	sErrored
)

var parserStateStr = [...]string{
	sPreamble:               "preamble",
	sFirstBoundary:          "first-boundary",
	sAfterBoundary:          "after-boundary",
	sHdrFieldStart:          "header-field-start",
	sHdrField:               "header-field",
	sHdrValueStart:          "header-value-start",
	sHdrValue:               "header-value",
	sHdrValueAlmostDone:     "header-value-almost-done",
	sHdrsAlmostDone:         "headers-almost-done",
	sPartData:               "part-data",
	sPartDataAlmostBoundary: "part-data-almost-boundary",
	sPartDataBoundary:       "part-data-boundary",
	sPartDataAlmostEnd:      "part-data-almost-end",
	sPartDataEnd:            "part-data-end",
	sBodyEnd:                "body-end",
	sErrored:                "errored",
}

// String implements the Stringer interface.
func (s parserState) String() string {
	if int(s) >= len(parserStateStr) {
		return "invalid"
	}
	return parserStateStr[s]
}

// header name charset: 1+ of A-Z a-z 0-9 - _ (narrower than RFC 7230's
// token grammar, chosen for interop with existing multipart producers).
func isHeaderNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	default:
		return false
	}
}
