// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Hexlink - Hex batch frame transmitter
//
// Packs fixed-width hex lines into a single framed message, sends it over
// a UART link and decodes the 8-byte reply.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Thermoquad/hexlink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var ee *cmd.ExitError
		if !errors.As(err, &ee) || ee.Err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cmd.ExitCode(err))
	}
}
