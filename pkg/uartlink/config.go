// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uartlink

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Link defaults, taken from the reference board setup
const (
	DefaultBaudRate         = 38400
	DefaultReadTimeout      = 2 * time.Second
	DefaultWriteTimeout     = 2 * time.Second
	DefaultInterByteTimeout = 100 * time.Millisecond
	DefaultSettleDelay      = 10 * time.Millisecond
)

// ErrInvalidConfig is returned when a link configuration is rejected
var ErrInvalidConfig = errors.New("uartlink: invalid configuration")

// Config describes how to open and time a link.
// Data bits, parity and stop bits are fixed by the protocol (8E1).
type Config struct {
	PortName         string
	BaudRate         int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	InterByteTimeout time.Duration // 0 disables the inter-byte limit
	SettleDelay      time.Duration // pause after flushing, before sending
}

// DefaultConfig returns a configuration for portName with default timings
func DefaultConfig(portName string) Config {
	return Config{
		PortName:         portName,
		BaudRate:         DefaultBaudRate,
		ReadTimeout:      DefaultReadTimeout,
		WriteTimeout:     DefaultWriteTimeout,
		InterByteTimeout: DefaultInterByteTimeout,
		SettleDelay:      DefaultSettleDelay,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	switch {
	case c.PortName == "":
		return fmt.Errorf("%w: port name is required", ErrInvalidConfig)
	case c.BaudRate <= 0:
		return fmt.Errorf("%w: baud rate must be positive (got %d)", ErrInvalidConfig, c.BaudRate)
	case c.ReadTimeout <= 0:
		return fmt.Errorf("%w: read timeout must be positive (got %s)", ErrInvalidConfig, c.ReadTimeout)
	case c.WriteTimeout <= 0:
		return fmt.Errorf("%w: write timeout must be positive (got %s)", ErrInvalidConfig, c.WriteTimeout)
	case c.InterByteTimeout < 0:
		return fmt.Errorf("%w: inter-byte timeout must not be negative (got %s)", ErrInvalidConfig, c.InterByteTimeout)
	case c.SettleDelay < 0:
		return fmt.Errorf("%w: settle delay must not be negative (got %s)", ErrInvalidConfig, c.SettleDelay)
	}
	return nil
}

type options struct {
	dialer Dialer
	logger zerolog.Logger
}

// Option configures Open and Transact
type Option func(*options)

// WithDialer replaces the serial dialer, e.g. with a WebSocket bridge
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithLogger sets the logger used for link events
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func applyOptions(opts []Option) options {
	o := options{
		dialer: OpenSerial,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
