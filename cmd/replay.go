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

var replayCmd = &cobra.Command{
	Use:   "replay [payload.bin]",
	Short: "Send a stored frame verbatim",
	Long: `Send a frame previously written by encode or send. The stored header is
checked against the payload length first; a malformed file is rejected
before the link is opened.

Example:
  hexlink replay --port /dev/ttyUSB0 payload.bin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	addTimingFlags(replayCmd)
	replayCmd.Flags().StringVar(&settings.Payload, "payload", settings.Payload, "Stored frame to send")
	replayCmd.Flags().StringVar(&settings.Journal, "journal", "", "Append the transaction to this CBOR journal")
}

func runReplay(cmd *cobra.Command, args []string) error {
	path := settings.Payload
	if len(args) == 1 {
		path = args[0]
	}

	if err := settings.ValidateLink(); err != nil {
		return invalid(err)
	}

	f, err := batchfile.ReadFrame(path)
	if err != nil {
		if hexframe.KindOf(err) == 0 {
			return invalid(fmt.Errorf("read frame: %w", err))
		}
		return classify(err)
	}

	opts, connInfo, err := linkOptions(settings)
	if err != nil {
		return &ExitError{Code: ExitTransport, Err: err}
	}

	// Digits come from the stored header
	cfg := hexlink.Config{Link: settings.LinkConfig(), DigitsPerLine: f.Header().DigitsPerLine}

	fmt.Printf("Hexlink - Replay\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Frame: %s\n\n", path)
	fmt.Print(hexframe.FormatFrame(f))
	fmt.Println()

	res, err := hexlink.Send(cfg, f, opts...)
	recordJournal(settings.Journal, cfg, f, res, err)
	if err != nil {
		return classify(err)
	}

	printResult(res)
	if !res.Complete() {
		return &ExitError{Code: ExitIncomplete}
	}
	return nil
}
