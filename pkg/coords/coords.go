// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package coords converts "x,y" integer coordinate lists into 20-bit
// two's-complement binary columns, one file per axis.
package coords

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Width is the number of bits emitted per coordinate
const Width = 20

const mask = 1<<Width - 1

// ErrNoPoints is returned when there is nothing to write
var ErrNoPoints = errors.New("coords: no points")

// ToBinary20 returns the low 20 bits of n as a zero-padded binary string.
// Negative values wrap as two's complement.
func ToBinary20(n int64) string {
	return fmt.Sprintf("%020b", n&mask)
}

// Convert parses one "x,y" pair per line and returns the binary columns.
// Blank lines are skipped.
func Convert(r io.Reader) (xs, ys []string, err error) {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("line %d: expected x,y, got %q", lineNum, line)
		}
		x, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: x: %w", lineNum, err)
		}
		y, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: y: %w", lineNum, err)
		}

		xs = append(xs, ToBinary20(x))
		ys = append(ys, ToBinary20(y))
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return xs, ys, nil
}

// WriteColumns writes one value per line and closes the path by repeating
// the first point at the end.
func WriteColumns(path string, lines []string) error {
	if len(lines) == 0 {
		return ErrNoPoints
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	w.WriteString(lines[0])
	w.WriteByte('\n')

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
