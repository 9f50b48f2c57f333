// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "mpartdump",
	Short: "Tools for inspecting multipart/form-data messages",
}

func Execute() error {
	return rootCmd.Execute()
}
