// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package mpart

// Stats holds running counters for a Parser, reset by Reset.
type Stats struct {
	TotalBytes    int64 // bytes consumed by Execute so far
	PartsCount    int64 // parts whose on_part_data_end has fired
	MaxPartSize   int64 // largest single part body seen so far
	CurrentMemory int64 // bytes delivered to accumulating callbacks since Reset
	MaxMemory     int64 // configured Options.MaxMemory cap (0 = unlimited)
}
