// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package main

import (
	"github.com/spf13/cobra"

	"github.com/streamwire/mpart/cmd/mpartdump/cmd"
)

func main() {
	err := cmd.Execute()
	cobra.CheckErr(err)
}
