// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uartlink

import (
	"time"

	"github.com/Thermoquad/hexlink/pkg/hexframe"
)

// Result is the outcome of one transaction
type Result struct {
	Frame    *hexframe.Frame
	Response hexframe.Response
	State    State // StateComplete or StateIncomplete
	Elapsed  time.Duration
	Cause    error // link failure that cut a partial response short, if any
}

// Complete reports whether the full response arrived
func (r *Result) Complete() bool {
	return r.Response.Complete()
}

// Value decodes the response value. It fails with IncompleteResponse after
// a short read.
func (r *Result) Value() (uint64, error) {
	return r.Response.Value()
}

// Err returns the IncompleteResponse condition, or nil for a complete result
func (r *Result) Err() error {
	return r.Response.Err()
}

// Transact runs one request/response exchange: open, flush, send, receive.
// The link is closed on every exit path. Fatal errors return a nil Result;
// a short response returns a Result with State StateIncomplete and no error.
// A read failure after some bytes arrived also ends INCOMPLETE, keeping the
// bytes and recording the failure in Cause.
func Transact(cfg Config, f *hexframe.Frame, opts ...Option) (*Result, error) {
	o := applyOptions(opts)
	start := time.Now()

	link, err := Open(cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := link.Close(); cerr != nil {
			o.logger.Warn().Err(cerr).Str("port", cfg.PortName).Msg("close failed")
		}
	}()

	if err := link.Flush(); err != nil {
		return nil, err
	}
	if err := link.Send(f); err != nil {
		return nil, err
	}

	resp, cause := link.Receive()
	if cause != nil {
		if resp.Len() == 0 {
			return nil, cause
		}
		o.logger.Warn().Err(cause).Str("port", cfg.PortName).
			Int("received", resp.Len()).Msg("link failed after partial response")
	}

	state := link.State()
	if err := link.Close(); err != nil {
		o.logger.Warn().Err(err).Str("port", cfg.PortName).Msg("close failed")
	}

	return &Result{
		Frame:    f,
		Response: resp,
		State:    state,
		Elapsed:  time.Since(start),
		Cause:    cause,
	}, nil
}
