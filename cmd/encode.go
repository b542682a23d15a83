// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/hexlink/pkg/batchfile"
	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/Thermoquad/hexlink/pkg/hexlink"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode the input file into the payload side file",
	Long: `Validate and encode the input file exactly as send would, write the frame
to the payload side file, and print it. No link is opened.

Example:
  hexlink encode --digits 5 --input input.txt --payload payload.bin`,
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	addBatchFlags(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	if err := settings.ValidateBatch(); err != nil {
		return invalid(err)
	}

	lines, err := batchfile.LoadLines(settings.Input)
	if err != nil {
		return invalid(fmt.Errorf("load input: %w", err))
	}

	cfg := hexlink.Config{DigitsPerLine: settings.Digits, FramePath: settings.Payload}
	f, err := hexlink.Prepare(cfg, lines)
	if err != nil {
		return classify(err)
	}

	fmt.Printf("Loaded %d lines from %s\n", len(lines), settings.Input)
	fmt.Print(hexframe.FormatFrame(f))
	fmt.Printf("Wrote %d bytes to %s\n", f.Len(), settings.Payload)
	return nil
}
