// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

// Package mpart implements a streaming, binary-safe multipart/form-data
// parser (RFC 7578, RFC 2046 section 5.1).
package mpart

import "fmt"

// Callbacks holds the optional hooks invoked as a Parser makes progress.
// Every field may be left nil; a nil hook is simply skipped. A non-zero
// return value from any hook pauses the parser (see Execute).
type Callbacks struct {
	OnPartDataBegin   func(userData any) int
	OnHeaderField     func(userData any, b []byte) int
	OnHeaderValue     func(userData any, b []byte) int
	OnHeadersComplete func(userData any) int
	OnPartData        func(userData any, b []byte) int
	OnPartDataEnd     func(userData any) int
	OnBodyEnd         func(userData any) int
}

// Settings configures a Parser's callbacks and optional output coalescing.
type Settings struct {
	Callbacks
	// BufferSize, when > 0, enables the callback buffer: runs of bytes
	// destined for the same callback are coalesced into chunks of up to
	// BufferSize bytes instead of being delivered one Execute-call-worth
	// at a time.
	BufferSize int
}

// Options configures resource limits independent of callback wiring.
type Options struct {
	// MaxMemory caps the cumulative bytes delivered to the accumulating
	// callbacks (OnHeaderField, OnHeaderValue, OnPartData) since the last
	// Reset. 0 means unlimited.
	MaxMemory int64
}

// parserIState holds everything a Parser needs to resume mid-byte-stream
// across independent Execute calls: the current state, the KMP match
// index, the small look-back window, and which accumulating span (if any)
// is still open. Keeps all resumable bits in one small embeddable struct,
// the same way a resumable parser's internal-state type usually does.
type parserIState struct {
	state parserState

	matchIdx int    // KMP match index into the active pattern
	look     []byte // look-back window, len == boundary.Len(), reused in place
	scratch  []byte // same size as look, holds bytes about to be discarded

	pendingCR   bool // sPartDataBoundary: saw CR, expect LF
	pendingDash bool // sPartDataBoundary: saw one '-', expect a second

	curPartSize int64 // bytes of on_part_data delivered for the part in progress

	paused bool
}

// Parser implements a streaming, binary-safe multipart/form-data parser.
// A zero-value Parser is not usable; construct one with New.
type Parser struct {
	boundary *Boundary
	cb       Callbacks
	buf      *callbackBuffer // nil when Settings.BufferSize == 0
	opts     Options

	userData any
	stats    Stats
	lastErr  ParseError
	hostErr  string

	st parserIState
}

// New constructs a Parser bound to boundary (the multipart boundary
// parameter value, without the leading "--"), with the given callbacks,
// optional buffering and resource limits. userData is passed verbatim to
// every callback.
func New(boundary []byte, settings Settings, opts Options, userData any) (*Parser, ParseError) {
	bd, err := NewBoundary(boundary)
	if !err.OK() {
		return nil, err
	}
	p := &Parser{
		boundary: bd,
		cb:       settings.Callbacks,
		opts:     opts,
		userData: userData,
	}
	if settings.BufferSize > 0 {
		p.buf = newCallbackBuffer(settings.BufferSize)
	}
	p.st.look = make([]byte, bd.Len())
	p.st.scratch = make([]byte, bd.Len())
	p.resetState()
	return p, ErrOK
}

func (p *Parser) resetState() {
	n := p.boundary.Len()
	look := p.st.look[:cap(p.st.look)]
	scratch := p.st.scratch[:cap(p.st.scratch)]
	if n <= cap(look) {
		look = look[:n]
	}
	if n <= cap(scratch) {
		scratch = scratch[:n]
	}
	p.st = parserIState{look: look, scratch: scratch}
	p.st.state = sPreamble
	p.st.matchIdx = firstBoundaryStart
	p.lastErr = ErrOK
	p.hostErr = ""
	p.stats = Stats{MaxMemory: p.opts.MaxMemory}
	if p.buf != nil {
		p.buf.reset()
	}
}

// firstBoundaryStart is the virtual KMP prefix length the match index
// starts at while hunting for the very first boundary: the opening
// delimiter has no required leading CRLF, so matching
// begins as though "\r\n" (delim[0:2]) were already satisfied, reusing
// the same failure table built over the full delimiter.
const firstBoundaryStart = 2

// Reset rewinds the Parser to its initial state, ready to parse a new
// message. If newBoundary is given, it also replaces the boundary value
// (failing with ErrBoundaryTooLong if longer than the original).
func (p *Parser) Reset(newBoundary ...[]byte) ParseError {
	if len(newBoundary) > 0 {
		if err := p.boundary.Reset(newBoundary[0]); !err.OK() {
			return err
		}
	}
	p.resetState()
	return ErrOK
}

// Resume clears a pause (ErrPaused) condition, allowing Execute to be
// called again starting from the byte immediately after the one that
// triggered the pause. It is a no-op (returns ErrInvalidState) for any
// other error condition.
func (p *Parser) Resume() ParseError {
	if p.lastErr != ErrPaused {
		return ErrInvalidState
	}
	p.lastErr = ErrOK
	p.st.paused = false
	return ErrOK
}

// LastError returns the error the parser has recorded: ErrPaused until
// Resume or Reset, a fatal error until Reset, otherwise ErrOK.
func (p *Parser) LastError() ParseError { return p.lastErr }

// LastHostError returns the text of a panic recovered from a callback,
// valid only when LastError() == ErrCallbackError.
func (p *Parser) LastHostError() string { return p.hostErr }

// State reports the parser's current internal state, mostly useful for
// tests and diagnostics.
func (p *Parser) State() string { return p.st.state.String() }

// Statistics returns a copy of the parser's running counters.
func (p *Parser) Statistics() Stats { return p.stats }

// Feed is an alias for Execute.
func (p *Parser) Feed(data []byte) (int, ParseError) { return p.Execute(data) }

// Execute feeds data into the parser, invoking callbacks as boundaries,
// headers and part bodies are recognized. It returns the number of bytes
// consumed and a ParseError: ErrOK means all of data was consumed with
// no error; any other error means the parser stopped (paused, or hit a
// grammar/resource error) after consuming the returned count. On a parser
// already halted by a fatal error, Execute consumes nothing and returns
// ErrInvalidState; LastError() keeps reporting the error that halted it.
//
// Execute never allocates or copies input beyond its small look-back
// window (Boundary.Len() bytes), and never retains data past the call
// that delivered it other than inside that window.
func (p *Parser) Execute(data []byte) (n int, err ParseError) {
	if p.lastErr.Fatal() {
		return 0, ErrInvalidState
	}
	if p.lastErr == ErrPaused {
		return 0, ErrPaused
	}

	defer func() {
		if r := recover(); r != nil {
			p.hostErr = fmt.Sprint(r)
			p.lastErr = ErrCallbackError
			p.st.state = sErrored
			err = ErrCallbackError
		}
	}()

	hf, hv, pd := -1, -1, -1
	switch p.st.state {
	case sHdrField:
		hf = 0
	case sHdrValue:
		hv = 0
	case sPartData:
		pd = 0
	}

	i := 0
	for i < len(data) {
		c := data[i]

		switch p.st.state {

		case sPreamble, sFirstBoundary:
			k := p.boundary.step(p.st.matchIdx, c)
			if k == p.boundary.Len() {
				p.st.matchIdx = 0
				p.st.state = sPartDataBoundary
				p.st.pendingCR, p.st.pendingDash = false, false
				i++
				continue
			}
			p.st.matchIdx = k
			if k <= firstBoundaryStart {
				p.st.state = sPreamble
			} else {
				p.st.state = sFirstBoundary
			}
			i++

		case sPartData, sPartDataAlmostBoundary:
			rc := p.stepPartData(data, i, &pd)
			if rc != 0 {
				return p.stop(i, rc)
			}
			i++

		case sPartDataBoundary:
			if rc := p.stepPartDataBoundary(c); rc != 0 {
				return p.stop(i, rc)
			}
			i++

		case sPartDataAlmostEnd, sPartDataEnd, sBodyEnd:
			p.stepDrain(c)
			i++

		case sHdrFieldStart:
			if c == '\r' {
				p.st.state = sHdrsAlmostDone
				i++
				continue
			}
			if !isHeaderNameChar(c) {
				return p.fail(i, ErrInvalidHeaderField)
			}
			p.st.state = sHdrField
			hf = i

		case sHdrField:
			if c == ':' {
				// State advances before the callback fires so a pause (or a
				// resume after one) finds the parser already past this byte.
				p.st.state = sHdrValueStart
				if rc := p.flushSpan(cbHeaderField, data, &hf, i, true); rc != 0 {
					return p.stop(i, rc)
				}
				i++
				continue
			}
			if !isHeaderNameChar(c) {
				return p.fail(i, ErrInvalidHeaderField)
			}
			i++

		case sHdrValueStart:
			if c == ' ' || c == '\t' {
				i++
				continue
			}
			p.st.state = sHdrValue
			hv = i
			// reprocess this same byte as the first byte of the value

		case sHdrValue:
			if c == '\r' {
				// State advances before the callback fires so a pause (or a
				// resume after one) finds the parser already past this byte.
				p.st.state = sHdrValueAlmostDone
				if rc := p.flushSpan(cbHeaderValue, data, &hv, i, true); rc != 0 {
					return p.stop(i, rc)
				}
				i++
				continue
			}
			i++

		case sHdrValueAlmostDone:
			if c != '\n' {
				return p.fail(i, ErrInvalidHeaderValue)
			}
			p.st.state = sHdrFieldStart
			i++

		case sHdrsAlmostDone:
			if c != '\n' {
				return p.fail(i, ErrInvalidHeaderField)
			}
			// State advances before the callback fires so a pause (or a
			// resume after one) finds the parser already past this byte.
			p.st.state = sPartData
			p.st.matchIdx = 0
			if rc := p.invoke(p.cb.OnHeadersComplete); rc != 0 {
				return p.stop(i, rc)
			}
			pd = i + 1
			i++

		case sErrored:
			p.stats.TotalBytes += int64(i)
			return i, p.lastErr

		default:
			return p.fail(i, ErrInvalidState)
		}
	}

	// End of this call's data: flush whatever span is still open and
	// remember (via the state field alone) whether to resume it next call.
	switch p.st.state {
	case sHdrField:
		if rc := p.flushSpan(cbHeaderField, data, &hf, len(data), false); rc != 0 {
			return p.stopEnd(len(data), rc)
		}
	case sHdrValue:
		if rc := p.flushSpan(cbHeaderValue, data, &hv, len(data), false); rc != 0 {
			return p.stopEnd(len(data), rc)
		}
	case sPartData:
		if rc := p.flushSpan(cbPartData, data, &pd, len(data), false); rc != 0 {
			return p.stopEnd(len(data), rc)
		}
	}
	p.stats.TotalBytes += int64(len(data))
	return len(data), ErrOK
}

// fail halts the parser on a grammar/misuse error at byte i. The bytes
// actually consumed so far this call (i of them) still count towards
// Statistics().TotalBytes even though Execute is returning early.
func (p *Parser) fail(i int, e ParseError) (int, ParseError) {
	p.lastErr = e
	p.st.state = sErrored
	p.stats.TotalBytes += int64(i)
	return i, e
}

func (p *Parser) pauseAt(i int, rc int) (int, ParseError) {
	if p.lastErr == ErrOK {
		p.lastErr = ErrPaused
	}
	p.st.paused = true
	_ = rc
	n := i + 1
	p.stats.TotalBytes += int64(n)
	return n, p.lastErr
}

// stop is the general landing point for a non-zero callback return code: rc
// may mean "pause" (a cooperative, resumable cancellation) or it may mean a
// fatal resource error (ErrMemoryLimitExceeded) already recorded by dispatch
// with the state already forced to sErrored. The two have different
// consumption-count semantics: pause reports bytes
// consumed "up to and including" the triggering byte, a fatal error reports
// bytes consumed strictly "before" it. stop tells them apart via p.st.state
// so every call site gets the right count without duplicating the check.
func (p *Parser) stop(i int, rc int) (int, ParseError) {
	if p.st.state == sErrored {
		p.stats.TotalBytes += int64(i)
		return i, p.lastErr
	}
	return p.pauseAt(i, rc)
}

// stopEnd is stop's counterpart for the end-of-call flush paths in Execute,
// where the "current byte" is one past the end of the fed slice rather than
// an in-range index.
func (p *Parser) stopEnd(dataLen int, rc int) (int, ParseError) {
	if p.st.state == sErrored {
		p.stats.TotalBytes += int64(dataLen)
		return dataLen, p.lastErr
	}
	return p.pauseAt(dataLen-1, rc)
}

// invoke calls a 0-arg callback if set. A panic inside fn propagates up
// to Execute's deferred recover; invoke itself does no recovery.
func (p *Parser) invoke(fn func(any) int) int {
	if fn == nil {
		return 0
	}
	return fn(p.userData)
}

// flushSpan emits data[*mark:end] (if non-empty) through the callback
// buffer under kind, clearing *mark. final marks the logical end of the
// span (forces a buffer flush even if capacity isn't reached).
func (p *Parser) flushSpan(kind cbKind, data []byte, mark *int, end int, final bool) int {
	if *mark < 0 {
		return 0
	}
	b := data[*mark:end]
	*mark = -1
	if len(b) == 0 && !final {
		return 0
	}
	return p.emit(kind, b, final)
}

// stepPartData advances the boundary-search state machine by one byte of
// part data, using the small look-back window to defer emission of bytes
// that might turn out to be part of the delimiter.
//
// All resumable state (matchIdx, the look-back window, the part-data
// state) is committed before any callback is invoked, so a pause (a
// callback returning non-zero) always leaves the parser ready to continue
// from the very next byte on resume, never mid-transition.
func (p *Parser) stepPartData(data []byte, i int, pd *int) int {
	c := data[i]
	oldK := p.st.matchIdx
	newK, retained := p.boundary.advance(oldK, c)

	if newK == p.boundary.Len() {
		p.st.matchIdx = 0
		p.st.state = sPartDataBoundary
		p.st.pendingCR, p.st.pendingDash = false, false
		p.stats.PartsCount++
		if rc := p.flushSpan(cbPartData, data, pd, i, true); rc != 0 {
			return rc
		}
		// With no open span left in this call, flushSpan did not flush;
		// deliver any buffered part data before the part ends.
		if p.buf != nil {
			if rc := p.flushBuffer(); rc != 0 {
				return rc
			}
		}
		if p.st.curPartSize > p.stats.MaxPartSize {
			p.stats.MaxPartSize = p.st.curPartSize
		}
		if rc := p.invoke(p.cb.OnPartDataEnd); rc != 0 {
			return rc
		}
		return 0
	}

	discard := oldK - retained
	if discard > 0 {
		copy(p.st.scratch[:discard], p.st.look[:discard])
	}
	if retained > 0 {
		copy(p.st.look[:retained], p.st.look[discard:discard+retained])
	}
	consumed := newK > retained
	if consumed {
		p.st.look[retained] = c
	}
	p.st.matchIdx = newK
	if newK == 0 {
		p.st.state = sPartData
	} else {
		p.st.state = sPartDataAlmostBoundary
	}

	flushMark := -1
	if consumed {
		if *pd >= 0 {
			flushMark = *pd
			*pd = -1
		}
	} else if *pd < 0 {
		*pd = i
	}

	if discard > 0 {
		if rc := p.emit(cbPartData, p.st.scratch[:discard], false); rc != 0 {
			return rc
		}
	}
	if flushMark >= 0 && i > flushMark {
		if rc := p.emit(cbPartData, data[flushMark:i], false); rc != 0 {
			return rc
		}
	}
	return 0
}

// stepPartDataBoundary reads the one or two bytes immediately following a
// matched delimiter to decide whether a new part follows (CRLF) or the
// body has ended ("--").
func (p *Parser) stepPartDataBoundary(c byte) int {
	if !p.st.pendingCR && !p.st.pendingDash {
		switch c {
		case '\r':
			p.st.pendingCR = true
			return 0
		case '-':
			p.st.pendingDash = true
			return 0
		default:
			p.lastErr = ErrInvalidBoundary
			p.st.state = sErrored
			return -1
		}
	}
	if p.st.pendingCR {
		p.st.pendingCR = false
		if c != '\n' {
			p.lastErr = ErrInvalidBoundary
			p.st.state = sErrored
			return -1
		}
		p.st.state = sHdrFieldStart
		p.st.curPartSize = 0
		return p.invoke(p.cb.OnPartDataBegin)
	}
	// pendingDash
	p.st.pendingDash = false
	if c != '-' {
		p.lastErr = ErrInvalidBoundary
		p.st.state = sErrored
		return -1
	}
	p.st.state = sPartDataAlmostEnd
	return p.invoke(p.cb.OnBodyEnd)
}

// stepDrain implements the tail end of the message: an optional trailing
// CRLF after the final boundary, then a silently-discarded epilogue.
// on_body_end has already fired by the time this is reached (see
// stepPartDataBoundary), so nothing here is observable beyond state
// bookkeeping.
func (p *Parser) stepDrain(c byte) {
	switch p.st.state {
	case sPartDataAlmostEnd:
		if c == '\r' {
			p.st.state = sPartDataEnd
			return
		}
		p.st.state = sBodyEnd
	case sPartDataEnd:
		p.st.state = sBodyEnd
	case sBodyEnd:
		// epilogue, discarded
	}
}
