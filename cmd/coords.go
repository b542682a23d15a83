// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/hexlink/pkg/coords"
	"github.com/spf13/cobra"
)

var (
	coordsInput string
	coordsXOut  string
	coordsYOut  string
)

var coordsCmd = &cobra.Command{
	Use:   "coords",
	Short: "Convert x,y coordinates to 20-bit binary columns",
	Long: `Read one "x,y" integer pair per line and write each axis as 20-bit
two's-complement binary strings, one per line. The first point is repeated
at the end of each file so the path closes.

Example:
  hexlink coords --input points.txt --x output_x.bin --y output_y.bin`,
	RunE: runCoords,
}

func init() {
	rootCmd.AddCommand(coordsCmd)
	coordsCmd.Flags().StringVar(&coordsInput, "input", "input.txt", "Coordinate file (x,y per line)")
	coordsCmd.Flags().StringVar(&coordsXOut, "x", "output_x.bin", "Output file for x values")
	coordsCmd.Flags().StringVar(&coordsYOut, "y", "output_y.bin", "Output file for y values")
}

func runCoords(cmd *cobra.Command, args []string) error {
	f, err := os.Open(coordsInput)
	if err != nil {
		return invalid(err)
	}
	defer f.Close()

	xs, ys, err := coords.Convert(f)
	if err != nil {
		return invalid(fmt.Errorf("%s: %w", coordsInput, err))
	}
	fmt.Printf("Loaded %d lines from %s\n", len(xs), coordsInput)

	if err := coords.WriteColumns(coordsXOut, xs); err != nil {
		return invalid(err)
	}
	if err := coords.WriteColumns(coordsYOut, ys); err != nil {
		return invalid(err)
	}

	fmt.Printf("Input written to %s and %s\n", coordsXOut, coordsYOut)
	return nil
}
