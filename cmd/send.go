// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/hexlink/pkg/batchfile"
	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/Thermoquad/hexlink/pkg/hexlink"
	"github.com/Thermoquad/hexlink/pkg/journal"
	"github.com/Thermoquad/hexlink/pkg/uartlink"
	"github.com/spf13/cobra"
)

var sendTUI bool

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Encode the input file and send it as one frame",
	Long: `Read hex lines from the input file, pack them into a frame, store the
frame in the payload side file and send it over the link. The response is
printed as hex and as a decimal value.

Every line must have the same length (at most 100 characters). Odd-length
lines are padded with a leading 0. The digits-per-line value is a 4-bit
header field and must be given explicitly.

Examples:
  hexlink send --port /dev/ttyUSB0 --digits 5
  hexlink send --url wss://bridge.local/uart --username admin --digits 5 --tui

Exit codes:
  0 - Complete 8-byte response received
  1 - Incomplete response (short read or timeout)
  2 - Connection or transport error
  3 - Validation or encoding error`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	addBatchFlags(sendCmd)
	addTimingFlags(sendCmd)
	sendCmd.Flags().StringVar(&settings.Journal, "journal", "", "Append each transaction to this CBOR journal")
	sendCmd.Flags().BoolVar(&sendTUI, "tui", false, "Show progress and the result in a terminal UI")
}

// addBatchFlags registers the flags used to build a frame from lines
func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&settings.Input, "input", settings.Input, "Input file with one hex line per row")
	cmd.Flags().StringVar(&settings.Payload, "payload", settings.Payload, "Side file for the encoded frame")
	cmd.Flags().IntVar(&settings.Digits, "digits", 0, "Digits per line header field (1-15, required)")
}

// addTimingFlags registers the link timing flags
func addTimingFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&settings.ReadTimeout, "read-timeout", settings.ReadTimeout, "Total time to wait for the response")
	cmd.Flags().DurationVar(&settings.WriteTimeout, "write-timeout", settings.WriteTimeout, "Time allowed to write the frame")
	cmd.Flags().DurationVar(&settings.InterByteTimeout, "inter-byte-timeout", settings.InterByteTimeout, "Maximum gap between response bytes")
}

func runSend(cmd *cobra.Command, args []string) error {
	if err := settings.Validate(); err != nil {
		return invalid(err)
	}

	lines, err := batchfile.LoadLines(settings.Input)
	if err != nil {
		return invalid(fmt.Errorf("load input: %w", err))
	}

	opts, connInfo, err := linkOptions(settings)
	if err != nil {
		return &ExitError{Code: ExitTransport, Err: err}
	}

	if sendTUI {
		return runSendTUI(settings, lines, opts, connInfo)
	}

	cfg := settings.RunConfig()

	fmt.Printf("Hexlink - Send\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Loaded %d lines from %s\n\n", len(lines), settings.Input)

	f, err := hexlink.Prepare(cfg, lines)
	if err != nil {
		recordJournal(settings.Journal, cfg, nil, nil, err)
		return classify(err)
	}
	fmt.Print(hexframe.FormatFrame(f))
	fmt.Printf("Total payload size: %d bytes\n\n", len(f.Payload()))

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

func printResult(res *uartlink.Result) {
	fmt.Print(hexframe.FormatResponse(res.Response))
	if res.Cause != nil {
		fmt.Printf("Link failed mid-response: %v\n", res.Cause)
	}
	fmt.Printf("Total runtime: %.4f seconds (%.2f ms)\n",
		res.Elapsed.Seconds(), float64(res.Elapsed.Microseconds())/1000)
}

// recordJournal appends the outcome to the journal when one is configured.
// Journal failures are logged and never change the exit code.
func recordJournal(path string, cfg hexlink.Config, f *hexframe.Frame, res *uartlink.Result, err error) {
	if path == "" {
		return
	}
	entry := hexlink.JournalEntry(cfg, f, res, err)
	if jerr := journal.Append(path, entry); jerr != nil {
		logger.Warn().Err(jerr).Str("journal", path).Msg("journal append failed")
		return
	}
	logger.Debug().Str("journal", path).Str("outcome", string(entry.Outcome)).Msg("journal entry written")
}
