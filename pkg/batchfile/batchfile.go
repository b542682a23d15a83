// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package batchfile loads hex line batches from text files and stores
// encoded frames as side files for inspection and replay.
package batchfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Thermoquad/hexlink/pkg/hexframe"
)

// ReadLines reads one line per record, trimming surrounding whitespace and
// dropping blank lines. Line content is not validated here.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// LoadLines reads a batch from the file at path
func LoadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// WriteFrame stores the frame verbatim at path
func WriteFrame(path string, f *hexframe.Frame) error {
	if err := os.WriteFile(path, f.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame loads and parses a stored frame
func ReadFrame(path string) (*hexframe.Frame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return hexframe.ParseFrame(raw)
}
