// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/streamwire/mpart"
)

var (
	boundary string
	maxDepth int
)

var dumpCmd = &cobra.Command{
	Use:   "dump message",
	Short: "Shows the field/part tree of a multipart/form-data message",
	Args:  cobra.ExactArgs(1),
	Run:   RunDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&boundary, "boundary", "b", "", "multipart boundary value (required)")
	dumpCmd.Flags().IntVarP(&maxDepth, "max-depth", "d", -1, "max recursion depth into nested multipart/mixed parts (-1 = unlimited)")
	_ = dumpCmd.MarkFlagRequired("boundary")
	rootCmd.AddCommand(dumpCmd)
}

func RunDump(cmd *cobra.Command, args []string) {
	path := args[0]
	body, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	res, perr := mpart.Collect(body, []byte(boundary), mpart.CollectOptions{
		MaxNestedDepth: maxDepth,
	})
	if !perr.OK() {
		fmt.Fprintf(os.Stderr, "parse error: %s\n", perr)
		os.Exit(1)
	}

	printResult(res, 0)
}

func printResult(res mpart.Result, depth int) {
	for name, v := range res {
		printValue(name, v, depth)
	}
}

func printValue(name string, v mpart.Value, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	switch val := v.(type) {
	case string:
		fmt.Printf("%s%s = %q\n", indent, name, val)
	case *mpart.FilePart:
		fmt.Printf("%s%s = file %q (%s, %d bytes)\n", indent, name, val.Filename, val.ContentType, len(val.Bytes))
	case mpart.Result:
		fmt.Printf("%s%s = {\n", indent, name)
		printResult(val, depth+1)
		fmt.Printf("%s}\n", indent)
	case []mpart.Value:
		fmt.Printf("%s%s = [\n", indent, name)
		for _, item := range val {
			printValue("-", item, depth+1)
		}
		fmt.Printf("%s]\n", indent)
	default:
		fmt.Printf("%s%s = %v\n", indent, name, val)
	}
}
