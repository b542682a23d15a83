// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/Thermoquad/hexlink/pkg/uartlink"
	"golang.org/x/term"
)

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv("HEXLINK_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// linkOptions returns the dialer and logger options for the configured
// connection, along with a description for the banner. The password is
// requested once, here, so repeated transactions do not prompt again.
func linkOptions(s Settings) ([]uartlink.Option, string, error) {
	opts := []uartlink.Option{uartlink.WithLogger(logger)}

	if s.URL != "" {
		password := ""
		if s.Username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		dial := uartlink.DialWebSocket(uartlink.BridgeConfig{
			URL:           s.URL,
			Username:      s.Username,
			Password:      password,
			SkipSSLVerify: s.NoSSLVerify,
		})
		return append(opts, uartlink.WithDialer(dial)), fmt.Sprintf("WebSocket: %s", s.URL), nil
	}

	return opts, fmt.Sprintf("Serial: %s @ %d baud (8E1)", s.Port, s.Baud), nil
}
