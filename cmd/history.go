// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Thermoquad/hexlink/pkg/journal"
	"github.com/spf13/cobra"
)

var historyLast int

var historyCmd = &cobra.Command{
	Use:   "history [journal.cbor]",
	Short: "Print the transaction journal",
	Long: `Print the transactions recorded with --journal, oldest first.

Example:
  hexlink history --last 10 hexlink.cbor`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&settings.Journal, "journal", "", "Journal file to read")
	historyCmd.Flags().IntVar(&historyLast, "last", 0, "Only show the last N entries (0 shows all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := settings.Journal
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return invalid(fmt.Errorf("a journal file is required (argument or --journal)"))
	}

	entries, err := journal.ReadAll(path)
	if err != nil {
		// Keep what decoded cleanly before the damaged entry
		logger.Warn().Err(err).Str("journal", path).Msg("journal truncated")
	}
	if historyLast > 0 && len(entries) > historyLast {
		entries = entries[len(entries)-historyLast:]
	}

	printHistory(os.Stdout, entries)
	return nil
}

func printHistory(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No transactions recorded")
		return
	}

	var complete, incomplete, failed int
	for _, e := range entries {
		fmt.Fprintf(w, "[%s] %-10s %s digits=%d frame=%dB",
			e.Time.Local().Format("2006-01-02 15:04:05.000"), e.Outcome, e.Target, e.DigitsPerLine, len(e.Frame))

		switch e.Outcome {
		case journal.OutcomeComplete:
			complete++
			fmt.Fprintf(w, " value=%d elapsed=%s\n", e.Value, e.Elapsed)
		case journal.OutcomeIncomplete:
			incomplete++
			fmt.Fprintf(w, " received=%dB hex=%x elapsed=%s\n", len(e.Response), e.Response, e.Elapsed)
		default:
			failed++
			fmt.Fprintf(w, " error=%q\n", e.Error)
		}
	}

	fmt.Fprintf(w, "\n%d entries: %d complete, %d incomplete, %d failed\n", len(entries), complete, incomplete, failed)
}
