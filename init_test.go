// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package mpart

// Init functions for testing

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"
)

var seed int64 // rand() seed

func TestMain(m *testing.M) {
	seed = time.Now().UnixNano()
	flag.Int64Var(&seed, "seed", seed, "random seed")
	flag.Parse()
	rand.Seed(seed)
	fmt.Printf("using random seed %d (0x%x) ( \"-seed\" to change)\n",
		seed, seed)
	res := m.Run()
	os.Exit(res)
}

// randSplits breaks data into a random sequence of non-empty chunks whose
// lengths sum to len(data), used to exercise Execute's chunk-invariance
// (the same logical input fed across an arbitrary number of calls must
// produce the same callback trace as a single call).
func randSplits(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}
	var out [][]byte
	i := 0
	for i < len(data) {
		max := len(data) - i
		n := 1 + rand.Intn(max)
		out = append(out, data[i:i+n])
		i += n
	}
	return out
}
