// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/Thermoquad/hexlink/pkg/batchfile"
	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/Thermoquad/hexlink/pkg/hexlink"
	"github.com/Thermoquad/hexlink/pkg/uartlink"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const watchDebounce = 100 * time.Millisecond

var watchStatsInterval int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Send the input file every time it changes",
	Long: `Watch the input file and run one full transaction each time it is written.
Bursts of file events are collapsed into one run. Runs never overlap: each
one closes its link before the next opens.

Statistics are printed periodically and on exit (Ctrl+C).

Example:
  hexlink watch --port /dev/ttyUSB0 --digits 5 --input input.txt`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addBatchFlags(watchCmd)
	addTimingFlags(watchCmd)
	watchCmd.Flags().StringVar(&settings.Journal, "journal", "", "Append each transaction to this CBOR journal")
	watchCmd.Flags().IntVar(&watchStatsInterval, "stats-interval", 60, "Statistics display interval in seconds (0 disables)")
}

// fileWatcher turns write and create events for one file into debounced
// triggers. At most one trigger is pending at a time.
type fileWatcher struct {
	path    string
	trigger chan struct{}

	mu       sync.Mutex
	debounce *time.Timer
}

func newFileWatcher(path string) *fileWatcher {
	return &fileWatcher{
		path:    filepath.Clean(path),
		trigger: make(chan struct{}, 1),
	}
}

// Run watches the file's directory until ctx is done
func (w *fileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceTrigger(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *fileWatcher) debounceTrigger(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}

	w.debounce = time.AfterFunc(delay, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}

func (w *fileWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := settings.Validate(); err != nil {
		return invalid(err)
	}

	opts, connInfo, err := linkOptions(settings)
	if err != nil {
		return &ExitError{Code: ExitTransport, Err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Hexlink - Watch\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Watching: %s\n", settings.Input)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	w := newFileWatcher(settings.Input)
	watchErr := make(chan error, 1)
	go func() { watchErr <- w.Run(ctx) }()

	stats := hexlink.NewStatistics()
	var ticker <-chan time.Time
	if watchStatsInterval > 0 {
		t := time.NewTicker(time.Duration(watchStatsInterval) * time.Second)
		defer t.Stop()
		ticker = t.C
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			fmt.Print(stats.String())
			return nil

		case err := <-watchErr:
			if err != nil {
				return &ExitError{Code: ExitInvalid, Err: err}
			}
			return nil

		case <-w.trigger:
			res, err := watchRun(settings, opts)
			stats.Update(res, err)

		case <-ticker:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}

// watchRun performs one transaction for the current file contents and
// reports it. Errors are printed and returned for the statistics.
func watchRun(s Settings, opts []uartlink.Option) (*uartlink.Result, error) {
	cfg := s.RunConfig()

	lines, err := batchfile.LoadLines(s.Input)
	if err != nil {
		fmt.Printf("[%s] ERROR: load input: %v\n", time.Now().Format("15:04:05.000"), err)
		return nil, err
	}

	f, err := hexlink.Prepare(cfg, lines)
	if err != nil {
		recordJournal(s.Journal, cfg, nil, nil, err)
		fmt.Printf("[%s] ERROR: %v\n", time.Now().Format("15:04:05.000"), err)
		return nil, err
	}
	fmt.Print(hexframe.FormatFrame(f))

	res, err := hexlink.Send(cfg, f, opts...)
	recordJournal(s.Journal, cfg, f, res, err)
	if err != nil {
		fmt.Printf("[%s] ERROR: %v\n\n", time.Now().Format("15:04:05.000"), err)
		return nil, err
	}

	printResult(res)
	fmt.Println()
	return res, nil
}
