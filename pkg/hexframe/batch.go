// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hexframe

// Batch is a validated, normalized set of equal-length hex lines.
// Line length is always even once a Batch exists.
type Batch struct {
	lines  []string
	padded bool
}

// ValidateLines checks a candidate batch and returns its normalized form.
// Odd-length batches are left-padded with a single '0' on every line.
// The input slice is not modified.
func ValidateLines(lines []string) (*Batch, error) {
	if len(lines) == 0 {
		return nil, newError(EmptyInput, 0, nil, "batch contains no lines")
	}

	width := len(lines[0])
	for i, line := range lines {
		if len(line) != width {
			return nil, newError(InconsistentLineLength, len(line),
				map[string]interface{}{"line": i, "length": len(line), "expected": width},
				"line %d has length %d (expected %d)", i, len(line), width)
		}
	}

	if width > MaxLineChars {
		return nil, newError(LineTooLong, width,
			map[string]interface{}{"length": width, "max": MaxLineChars},
			"line length %d exceeds %d characters", width, MaxLineChars)
	}

	if len(lines) > MaxLineCount {
		return nil, newError(TooManyLines, len(lines),
			map[string]interface{}{"count": len(lines), "max": MaxLineCount},
			"batch has %d lines (max %d)", len(lines), MaxLineCount)
	}

	normalized := make([]string, len(lines))
	padded := width%2 != 0
	for i, line := range lines {
		if padded {
			normalized[i] = "0" + line
		} else {
			normalized[i] = line
		}
	}

	return &Batch{lines: normalized, padded: padded}, nil
}

// Lines returns a copy of the normalized lines
func (b *Batch) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Line returns the normalized line at index i
func (b *Batch) Line(i int) string {
	return b.lines[i]
}

// LineCount returns the number of lines in the batch
func (b *Batch) LineCount() int {
	return len(b.lines)
}

// LineChars returns the normalized line length in hex characters
func (b *Batch) LineChars() int {
	return len(b.lines[0])
}

// ByteLength returns the encoded size of one line in bytes
func (b *Batch) ByteLength() int {
	return len(b.lines[0]) / 2
}

// Padded reports whether lines were left-padded to reach an even length
func (b *Batch) Padded() bool {
	return b.padded
}
