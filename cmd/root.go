// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// settings holds the merged flag, env and file configuration
	settings = DefaultSettings()

	// Config file path (--config)
	configPath string

	// logger is built in PersistentPreRunE once the level is known
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "hexlink",
	Short: "Hex batch frame transmitter",
	Long: `Hexlink - A CLI tool for sending batches of hex lines to a UART peripheral.

Each batch is validated, packed into a single frame with a 4-byte header
and sent over a serial link (8 data bits, even parity, 1 stop bit). The
peripheral answers with one 8-byte big-endian value.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 38400]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the HEXLINK_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

Settings are read from ~/.hexlink/config.toml (or --config), then from
HEXLINK_* environment variables. Flags given on the command line always win.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadSettings(cmd, &settings); err != nil {
			return err
		}
		l, err := NewLogger(settings.LogLevel)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()

	// Serial connection flags
	flags.StringVarP(&settings.Port, "port", "p", "", "Serial port device")
	flags.IntVarP(&settings.Baud, "baud", "b", settings.Baud, "Baud rate (serial only)")

	// WebSocket connection flags
	flags.StringVarP(&settings.URL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	flags.StringVar(&settings.Username, "username", "", "Username for HTTP Basic auth")
	flags.BoolVar(&settings.NoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	flags.StringVar(&configPath, "config", "", "Config file (default ~/.hexlink/config.toml)")
	flags.StringVar(&settings.LogLevel, "log-level", settings.LogLevel, "Log level (trace, debug, info, warn, error, disabled)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
