// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/Thermoquad/hexlink/pkg/journal"
	"github.com/Thermoquad/hexlink/pkg/uartlink"
	"github.com/rs/zerolog"
)

// ============================================================
// Exit codes
// ============================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitComplete},
		{"incomplete", &ExitError{Code: ExitIncomplete}, ExitIncomplete},
		{"empty input", classify(hexframe.EmptyInput), ExitInvalid},
		{"invalid hex", classify(hexframe.NewError(hexframe.InvalidHexDigit, nil, "bad")), ExitInvalid},
		{"field out of range", classify(hexframe.FieldOutOfRange), ExitInvalid},
		{"link unavailable", classify(hexframe.NewError(hexframe.LinkUnavailable, errors.New("busy"), "open")), ExitTransport},
		{"write timeout", classify(hexframe.WriteTimeout), ExitTransport},
		{"device error", classify(fmt.Errorf("read response: %w", uartlink.ErrClosed)), ExitTransport},
		{"incomplete kind", classify(hexframe.IncompleteResponse), ExitIncomplete},
		{"settings", invalid(errors.New("either --port or --url must be specified")), ExitInvalid},
		{"unclassified", errors.New("unknown flag: --bogus"), ExitInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	err := classify(hexframe.NewError(hexframe.WriteTimeout, nil, "slow"))
	if !errors.Is(err, hexframe.WriteTimeout) {
		t.Errorf("wrapped kind lost: %v", err)
	}
	silent := &ExitError{Code: ExitIncomplete}
	if silent.Error() != "exit status 1" {
		t.Errorf("Error() = %q", silent.Error())
	}
}

// ============================================================
// Logging
// ============================================================

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{" trace ", zerolog.TraceLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"loud", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		got, err := parseLevel(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

// ============================================================
// History
// ============================================================

func TestPrintHistory(t *testing.T) {
	entries := []journal.Entry{
		{Time: time.Now(), Target: "/dev/ttyUSB0", DigitsPerLine: 5, Frame: make([]byte, 8), Outcome: journal.OutcomeComplete, Value: 4096, Elapsed: 12 * time.Millisecond},
		{Time: time.Now(), Target: "/dev/ttyUSB0", DigitsPerLine: 5, Frame: make([]byte, 8), Response: []byte{0xAA, 0xBB}, Outcome: journal.OutcomeIncomplete},
		{Time: time.Now(), Target: "ws://host/uart", DigitsPerLine: 5, Outcome: journal.OutcomeFailed, Error: "hexframe: LinkUnavailable"},
	}

	var buf bytes.Buffer
	printHistory(&buf, entries)
	out := buf.String()

	for _, want := range []string{"value=4096", "hex=aabb", `error="hexframe: LinkUnavailable"`, "3 entries: 1 complete, 1 incomplete, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No transactions") {
		t.Errorf("empty history = %q", buf.String())
	}
}

// ============================================================
// Watcher
// ============================================================

func TestFileWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(path, []byte("12\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newFileWatcher(path)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)

	// A burst of writes collapses into one trigger
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(fmt.Sprintf("%02X\n", i)), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-w.trigger:
	case <-time.After(2 * time.Second):
		t.Fatal("no trigger after writes")
	}

	select {
	case <-w.trigger:
		t.Error("burst produced more than one trigger")
	case <-time.After(3 * watchDebounce):
	}

	// Other files in the directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.trigger:
		t.Error("unrelated file produced a trigger")
	case <-time.After(3 * watchDebounce):
	}
}
