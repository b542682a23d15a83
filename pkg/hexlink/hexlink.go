// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hexlink ties frame encoding, the side file and the UART
// transaction together. Everything is passed in explicitly; the package
// holds no global state.
package hexlink

import (
	"fmt"
	"time"

	"github.com/Thermoquad/hexlink/pkg/batchfile"
	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/Thermoquad/hexlink/pkg/journal"
	"github.com/Thermoquad/hexlink/pkg/uartlink"
)

// Config describes one batch transmission
type Config struct {
	Link          uartlink.Config
	DigitsPerLine int
	FramePath     string // side file for the encoded frame; empty skips it
}

// Validate checks the digits field and the link settings
func (c Config) Validate() error {
	if c.DigitsPerLine < hexframe.MinDigitsPerLine || c.DigitsPerLine > hexframe.MaxDigitsPerLine {
		return fmt.Errorf("%w: digits per line must be %d-%d (got %d)",
			uartlink.ErrInvalidConfig, hexframe.MinDigitsPerLine, hexframe.MaxDigitsPerLine, c.DigitsPerLine)
	}
	return c.Link.Validate()
}

// Prepare validates and encodes lines, then stores the frame in the side
// file when one is configured.
func Prepare(cfg Config, lines []string) (*hexframe.Frame, error) {
	f, err := hexframe.BuildFrame(lines, cfg.DigitsPerLine)
	if err != nil {
		return nil, err
	}
	if cfg.FramePath != "" {
		if err := batchfile.WriteFrame(cfg.FramePath, f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Send transmits an already encoded frame and waits for the response
func Send(cfg Config, f *hexframe.Frame, opts ...uartlink.Option) (*uartlink.Result, error) {
	if err := cfg.Link.Validate(); err != nil {
		return nil, err
	}
	return uartlink.Transact(cfg.Link, f, opts...)
}

// Run encodes lines, writes the side file, and runs one transaction.
// Validation and encoding errors are returned before any link is opened.
func Run(cfg Config, lines []string, opts ...uartlink.Option) (*uartlink.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := Prepare(cfg, lines)
	if err != nil {
		return nil, err
	}
	return Send(cfg, f, opts...)
}

// Outcome classifies a transaction result
func Outcome(res *uartlink.Result, err error) journal.Outcome {
	switch {
	case err != nil || res == nil:
		return journal.OutcomeFailed
	case res.Complete():
		return journal.OutcomeComplete
	default:
		return journal.OutcomeIncomplete
	}
}

// JournalEntry records a transaction for the journal. f may be nil when
// encoding failed.
func JournalEntry(cfg Config, f *hexframe.Frame, res *uartlink.Result, err error) journal.Entry {
	e := journal.Entry{
		Time:          time.Now(),
		Target:        cfg.Link.PortName,
		DigitsPerLine: cfg.DigitsPerLine,
		Outcome:       Outcome(res, err),
	}
	if f != nil {
		e.Frame = f.Bytes()
	}
	if res != nil {
		e.Response = res.Response.Raw()
		e.Elapsed = res.Elapsed
		if v, verr := res.Value(); verr == nil {
			e.Value = v
		} else {
			e.Error = verr.Error()
		}
		if res.Cause != nil {
			e.Error += ": " + res.Cause.Error()
		}
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
