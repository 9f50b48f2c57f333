// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package mpart

// maxBoundaryLen is the RFC 2046 section 5.1.1 boundary length limit (70
// characters). NewBoundary does not enforce it.
const maxBoundaryLen = 70

// Boundary holds the delimiter a Parser matches against ("\r\n--" +
// boundary) together with a KMP-style failure table, enabling linear-time,
// single-pass matching with bounded look-back (see parser.go's Execute,
// state sPartDataAlmostBoundary).
//
// A Boundary owns its storage exclusively; Reset reuses it in place and
// never grows past the capacity reserved at construction.
type Boundary struct {
	delim []byte // "\r\n--" + boundary; cap == len(original boundary)+5
	fail  []int  // KMP failure function over delim, same length as delim
}

// NewBoundary builds a Boundary table for b. b must be non-empty; RFC 2046
// allows up to 70 bytes but (like the rest of this package) we accept any
// non-zero-length byte string, only warning via the caller's own judgement
// if it exceeds the RFC limit.
func NewBoundary(b []byte) (*Boundary, ParseError) {
	if len(b) == 0 {
		return nil, ErrInvalidBoundary
	}
	n := len(b) + 4
	bd := &Boundary{
		delim: make([]byte, n, n+1), // +1 mirrors the reserved terminator slot
		fail:  make([]int, n, n+1),
	}
	bd.install(b)
	return bd, ErrOK
}

func (bd *Boundary) install(b []byte) {
	n := len(b) + 4
	bd.delim = bd.delim[:n]
	bd.delim[0], bd.delim[1], bd.delim[2], bd.delim[3] = '\r', '\n', '-', '-'
	copy(bd.delim[4:], b)
	bd.fail = bd.fail[:n]
	computeFailureFn(bd.delim, bd.fail)
}

// computeFailureFn fills fail with the standard KMP prefix-function of d:
// fail[i] is the length of the longest proper prefix of d[:i+1] that is
// also a suffix of d[:i+1].
func computeFailureFn(d []byte, fail []int) {
	fail[0] = 0
	k := 0
	for i := 1; i < len(d); i++ {
		for k > 0 && d[k] != d[i] {
			k = fail[k-1]
		}
		if d[k] == d[i] {
			k++
		}
		fail[i] = k
	}
}

// Reset installs a new boundary, reusing the allocated storage. It fails
// with ErrBoundaryTooLong if the replacement is longer than the boundary
// this Boundary was originally constructed with; same-length (or shorter)
// replacement is always allowed.
func (bd *Boundary) Reset(b []byte) ParseError {
	if len(b) == 0 {
		return ErrInvalidBoundary
	}
	if len(b)+5 > cap(bd.delim) {
		return ErrBoundaryTooLong
	}
	bd.install(b)
	return ErrOK
}

// Delim returns the full delimiter ("\r\n--" + boundary) this table
// matches. Callers must not retain or mutate the returned slice.
func (bd *Boundary) Delim() []byte {
	return bd.delim
}

// Len returns len(Delim()).
func (bd *Boundary) Len() int {
	return len(bd.delim)
}

// Raw returns the boundary string itself, without the "\r\n--" prefix.
func (bd *Boundary) Raw() []byte {
	return bd.delim[4:]
}

// step advances the KMP match index k by one input byte c, returning the
// new match index. When the returned value equals bd.Len() the full
// delimiter has just been matched; callers should treat that as a match
// and reset k to 0 for the next independent search, matching the standard
// "search for possibly overlapping occurrences" KMP idiom.
func (bd *Boundary) step(k int, c byte) int {
	d := bd.delim
	for k > 0 && d[k] != c {
		k = bd.fail[k-1]
	}
	if d[k] == c {
		k++
	}
	return k
}

// advance is step, but also reports how many bytes of the previous match
// (length oldK) survive as a suffix of the new match (length newK, minus
// the just-consumed byte c if it extended the match). A caller keeping a
// look-back window of the last oldK matched bytes uses retained to know
// how much of that window to keep (as its new prefix) versus flush as
// confirmed non-delimiter data.
func (bd *Boundary) advance(oldK int, c byte) (newK, retained int) {
	d := bd.delim
	k := oldK
	for k > 0 && d[k] != c {
		k = bd.fail[k-1]
	}
	if d[k] == c {
		return k + 1, k
	}
	return k, 0
}
