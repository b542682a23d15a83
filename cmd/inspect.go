// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/hexlink/pkg/batchfile"
	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [payload.bin]",
	Short: "Decode and print a stored frame",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settings.Payload
		if len(args) == 1 {
			path = args[0]
		}

		f, err := batchfile.ReadFrame(path)
		if err != nil {
			return invalid(fmt.Errorf("%s: %w", path, err))
		}

		hdr := f.Header()
		fmt.Printf("File: %s\n", path)
		fmt.Print(hexframe.FormatFrame(f))
		fmt.Printf("Payload size: %d bytes (%d lines x %d bytes)\n", hdr.PayloadSize(), hdr.LineCount, hdr.ByteLength)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&settings.Payload, "payload", settings.Payload, "Stored frame to decode")
}
