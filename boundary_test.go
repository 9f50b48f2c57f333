// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package mpart

import "testing"

func TestNewBoundary(t *testing.T) {
	bd, err := NewBoundary([]byte("B"))
	if !err.OK() {
		t.Fatalf("NewBoundary failed: %s", err)
	}
	if string(bd.Delim()) != "\r\n--B" {
		t.Fatalf("unexpected delim: %q", bd.Delim())
	}
	if bd.Len() != len("\r\n--B") {
		t.Fatalf("unexpected len: %d", bd.Len())
	}
	if string(bd.Raw()) != "B" {
		t.Fatalf("unexpected raw: %q", bd.Raw())
	}
}

func TestNewBoundaryEmpty(t *testing.T) {
	if _, err := NewBoundary(nil); err != ErrInvalidBoundary {
		t.Fatalf("expected ErrInvalidBoundary, got %s", err)
	}
}

func TestBoundaryResetTooLong(t *testing.T) {
	bd, err := NewBoundary([]byte("B"))
	if !err.OK() {
		t.Fatalf("NewBoundary failed: %s", err)
	}
	if err := bd.Reset([]byte("MUCHLONGERBOUNDARY")); err != ErrBoundaryTooLong {
		t.Fatalf("expected ErrBoundaryTooLong, got %s", err)
	}
}

func TestBoundaryResetShorter(t *testing.T) {
	bd, err := NewBoundary([]byte("BOUNDARY"))
	if !err.OK() {
		t.Fatalf("NewBoundary failed: %s", err)
	}
	if err := bd.Reset([]byte("B")); !err.OK() {
		t.Fatalf("Reset failed: %s", err)
	}
	if string(bd.Raw()) != "B" {
		t.Fatalf("unexpected raw after reset: %q", bd.Raw())
	}
}

// matchAll runs the full delimiter ("\r\n--" + boundary) through advance
// byte-by-byte and reports whether it matches at the end of in.
func matchAll(bd *Boundary, in []byte) bool {
	k := 0
	for _, c := range in {
		nk, _ := bd.advance(k, c)
		k = nk
	}
	return k == bd.Len()
}

func TestBoundaryAdvanceMatches(t *testing.T) {
	bd, _ := NewBoundary([]byte("abcabcX"))
	in := []byte("\r\n--abcabcX")
	if !matchAll(bd, in) {
		t.Fatalf("expected match for %q", in)
	}
}

func TestBoundaryAdvanceOverlap(t *testing.T) {
	// a mismatch after a long partial match exercises the KMP fallback
	// path (the classic "aaab" style pattern).
	bd, _ := NewBoundary([]byte("aaab"))
	in := []byte("\r\n--aaa\r\n--aaab")
	// contains a spurious partial match ("\r\n--aaa") before the real
	// delimiter "\r\n--aaab"
	if !matchAll(bd, in) {
		t.Fatalf("expected eventual match for %q", in)
	}
}

func TestBoundaryAdvanceRetainsSuffix(t *testing.T) {
	bd, _ := NewBoundary([]byte("X"))
	// delim is "\r\n--X"; feed "\r\r\n--X" -- the first \r starts a false
	// match, then a second \r should restart the match from position 1
	// (retaining itself), not drop all the way to 0 incorrectly.
	in := []byte("\r\r\n--X")
	if !matchAll(bd, in) {
		t.Fatalf("expected match for %q", in)
	}
}
