// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

// Test utils

package mpart

import (
	"math/rand"

	"github.com/intuitivelabs/bytescase"
)

// randCase randomizes the letter case of s, used to check that
// Content-Disposition/Content-Type matching in collect.go is genuinely
// case-insensitive rather than happening to match the fixture's casing.
func randCase(s string) string {
	r := make([]byte, len(s))
	for i, b := range []byte(s) {
		switch rand.Intn(3) {
		case 0:
			r[i] = bytescase.ByteToLower(b)
		case 1:
			r[i] = bytescase.ByteToUpper(b)
		default:
			r[i] = b
		}
	}
	return string(r)
}
