// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/hexlink/pkg/uartlink"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Long:  `List the serial ports on this machine, with USB vendor and product IDs where available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := uartlink.ListPorts()
		if err != nil {
			return &ExitError{Code: ExitTransport, Err: fmt.Errorf("list ports: %w", err)}
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return nil
		}

		for _, p := range ports {
			if !p.IsUSB {
				fmt.Printf("%s\n", p.Name)
				continue
			}
			fmt.Printf("%s  USB %s:%s", p.Name, p.VID, p.PID)
			if p.SerialNumber != "" {
				fmt.Printf("  serial=%s", p.SerialNumber)
			}
			if p.Product != "" {
				fmt.Printf("  %s", p.Product)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
