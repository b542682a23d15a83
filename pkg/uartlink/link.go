// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uartlink

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Thermoquad/hexlink/pkg/hexframe"
	"github.com/rs/zerolog"
)

// State is the link's position in a transaction
type State int

const (
	StateClosed State = iota
	StateOpen
	StateFlushed
	StateSent
	StateAwaitingResponse
	StateComplete
	StateIncomplete
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateFlushed:
		return "FLUSHED"
	case StateSent:
		return "SENT"
	case StateAwaitingResponse:
		return "AWAITING_RESPONSE"
	case StateComplete:
		return "COMPLETE"
	case StateIncomplete:
		return "INCOMPLETE"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrInvalidState is returned when an operation is called out of order
	ErrInvalidState = errors.New("uartlink: invalid state")

	// ErrClosed is returned when a closed link is used
	ErrClosed = errors.New("uartlink: link closed")
)

// Link owns one open device for the duration of a single transaction.
// A closed link cannot be reopened; call Open again.
type Link struct {
	mu     sync.Mutex
	port   Port
	cfg    Config
	state  State
	logger zerolog.Logger
}

// Open acquires the device described by cfg.
// Failure to open is reported as LinkUnavailable.
func Open(cfg Config, opts ...Option) (*Link, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	port, err := o.dialer(cfg)
	if err != nil {
		e := hexframe.NewError(hexframe.LinkUnavailable, err, "open %s", cfg.PortName)
		e.Value = cfg.PortName
		e.Details = map[string]interface{}{"port": cfg.PortName, "reason": portErrorReason(err)}
		return nil, e
	}

	l := &Link{
		port:   port,
		cfg:    cfg,
		state:  StateOpen,
		logger: o.logger.With().Str("port", cfg.PortName).Logger(),
	}
	l.logger.Debug().
		Int("baud", cfg.BaudRate).
		Dur("read_timeout", cfg.ReadTimeout).
		Dur("write_timeout", cfg.WriteTimeout).
		Dur("inter_byte_timeout", cfg.InterByteTimeout).
		Msg("link opened")
	return l, nil
}

// State returns the current state
func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Flush discards stale bytes queued in both directions, then waits for
// the configured settle delay.
func (l *Link) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.expect(StateOpen); err != nil {
		return err
	}
	if err := l.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset input buffer: %w", err)
	}
	if err := l.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("reset output buffer: %w", err)
	}
	if l.cfg.SettleDelay > 0 {
		time.Sleep(l.cfg.SettleDelay)
	}

	l.state = StateFlushed
	l.logger.Debug().Msg("buffers flushed")
	return nil
}

// Send writes the whole frame and drains the output buffer.
// If the write timeout elapses first the link is closed and WriteTimeout
// is returned.
func (l *Link) Send(f *hexframe.Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.expect(StateOpen, StateFlushed); err != nil {
		return err
	}

	raw := f.Bytes()
	done := make(chan error, 1)
	go func() {
		n, err := l.port.Write(raw)
		if err == nil && n != len(raw) {
			err = io.ErrShortWrite
		}
		if err == nil {
			err = l.port.Drain()
		}
		done <- err
	}()

	timer := time.NewTimer(l.cfg.WriteTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			l.closeLocked()
			return hexframe.NewError(hexframe.LinkUnavailable, err, "write %d-byte frame to %s", len(raw), l.cfg.PortName)
		}
	case <-timer.C:
		// Closing the port unblocks the pending write
		l.closeLocked()
		e := hexframe.NewError(hexframe.WriteTimeout, nil, "%d-byte frame not accepted within %s", len(raw), l.cfg.WriteTimeout)
		e.Value = l.cfg.WriteTimeout
		return e
	}

	l.state = StateSent
	l.logger.Debug().Int("bytes", len(raw)).Msg("frame sent")
	return nil
}

// Receive waits for the fixed-size response.
// It returns when ResponseSize bytes have arrived, when the read timeout
// elapses, or when the line goes quiet for longer than the inter-byte
// timeout after the first byte. A short read is not an error: the returned
// Response holds whatever arrived.
func (l *Link) Receive() (hexframe.Response, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.expect(StateSent); err != nil {
		return hexframe.Response{}, err
	}
	l.state = StateAwaitingResponse

	deadline := time.Now().Add(l.cfg.ReadTimeout)
	buf := make([]byte, 0, hexframe.ResponseSize)
	chunk := make([]byte, hexframe.ResponseSize)

	for len(buf) < hexframe.ResponseSize {
		wait := time.Until(deadline)
		if wait <= 0 {
			break
		}
		interByte := false
		if len(buf) > 0 && l.cfg.InterByteTimeout > 0 && l.cfg.InterByteTimeout < wait {
			wait = l.cfg.InterByteTimeout
			interByte = true
		}

		if err := l.port.SetReadTimeout(wait); err != nil {
			l.state = StateIncomplete
			return hexframe.NewResponse(buf), fmt.Errorf("set read timeout: %w", err)
		}

		n, err := l.port.Read(chunk[:hexframe.ResponseSize-len(buf)])
		buf = append(buf, chunk[:n]...)
		if err != nil {
			l.state = StateIncomplete
			return hexframe.NewResponse(buf), fmt.Errorf("read response: %w", err)
		}
		if n == 0 && interByte {
			l.logger.Debug().Int("received", len(buf)).Msg("inter-byte timeout")
			break
		}
	}

	resp := hexframe.NewResponse(buf)
	if resp.Complete() {
		l.state = StateComplete
		l.logger.Debug().Str("hex", resp.Hex()).Msg("response received")
	} else {
		l.state = StateIncomplete
		l.logger.Warn().Int("received", resp.Len()).Str("hex", resp.Hex()).Msg("short response")
	}
	return resp, nil
}

// Close releases the device. It is safe to call more than once.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *Link) closeLocked() error {
	if l.state == StateClosed {
		return nil
	}
	prev := l.state
	l.state = StateClosed
	err := l.port.Close()
	l.logger.Debug().Str("from", prev.String()).Msg("link closed")
	return err
}

// expect checks the link is in one of the allowed states
func (l *Link) expect(allowed ...State) error {
	if l.state == StateClosed {
		return ErrClosed
	}
	for _, s := range allowed {
		if l.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidState, l.state)
}
